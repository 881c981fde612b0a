package schema

// StoryDraft is the raw JSON shape the story writer returns before it is
// turned into a Storybook. Field descriptions double as the structured-output
// schema sent to the model.
type StoryDraft struct {
	Title       string            `json:"title" jsonschema_description:"Book title in the requested language"`
	Pages       []DraftPage       `json:"pages" jsonschema_description:"Ordered pages of the story"`
	Characters  []DraftCharacter  `json:"characters" jsonschema_description:"Every character appearing in the story, groups allowed (e.g. 'Dwarf x 7')"`
	KeyObjects  []DraftKeyObject  `json:"key_objects,omitempty" jsonschema_description:"Vocabulary objects central to the story"`
	Educational *EducationalNotes `json:"educational,omitempty" jsonschema_description:"Theme, values and discussion questions for parents"`
}

type DraftPage struct {
	Text   string       `json:"text" jsonschema_description:"Narrative text of the page, two to four short sentences"`
	Scene  string       `json:"scene" jsonschema_description:"One-paragraph visual description of the scene"`
	Detail *SceneDetail `json:"detail,omitempty" jsonschema_description:"Structured scene breakdown when the scene is busy"`
}

type DraftCharacter struct {
	Name        string `json:"name" jsonschema_description:"Display name; append a group marker like 'x 3' for groups"`
	Description string `json:"description" jsonschema_description:"Visual description used verbatim for every later appearance"`
	Role        string `json:"role,omitempty" jsonschema_description:"Narrative role (protagonist, friend, villain...)"`
	HeightCM    int    `json:"height_cm,omitempty" jsonschema_description:"Height in centimeters, between 50 and 250"`
}

type DraftKeyObject struct {
	Name        string `json:"name" jsonschema_description:"English object name"`
	Label       string `json:"label,omitempty" jsonschema_description:"Localized label in the story language"`
	Description string `json:"description,omitempty" jsonschema_description:"Simple visual description of the object"`
	SizeClass   string `json:"size_class,omitempty" jsonschema:"enum=small,enum=medium,enum=large" jsonschema_description:"Rough size class"`
	SizeCM      int    `json:"size_cm,omitempty" jsonschema_description:"Typical size in centimeters"`
	Example     string `json:"example,omitempty" jsonschema_description:"Example sentence using the word"`
}

// QuizDraft is the JSON shape of a generated quiz set.
type QuizDraft struct {
	Quizzes []Quiz `json:"quizzes" jsonschema_description:"Three to five multiple-choice questions about the story"`
}
