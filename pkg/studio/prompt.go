package studio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"fable/pkg/schema"
)

// Prompt construction is kept here as pure functions so wording changes never
// touch orchestration code.

const storySystemPrompt = `You are a children's picture-book author. Respond with a single JSON object matching the requested shape. No commentary, no markdown fences.
The JSON object has keys: 'title', 'pages', 'characters', 'key_objects', 'educational'.
Each page has 'text' (two to four short sentences in the requested language) and 'scene' (a visual description of the illustration), optionally 'detail' with 'characters', 'background', 'atmosphere', 'objects', 'layout'.
Each character has 'name', 'description' (complete visual description reused for every later appearance), 'role' and 'height_cm' (between 50 and 250). For identical groups use one entry with a count marker in the name, e.g. "Dwarf x 7".
'key_objects' lists three to six concrete objects from the story with 'name', 'label' (story language), 'description', 'size_class' (small/medium/large), 'size_cm' and 'example'.
'educational' carries 'theme', 'values' and 'discussion' questions for parents.`

func storyUserPrompt(req schema.StoryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an illustrated children's story about: %s\n", req.Topic)
	if req.AgeBand != "" {
		fmt.Fprintf(&b, "Target age: %s\n", req.AgeBand)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, "Story language: %s\n", req.Language)
	}
	if req.ArtStyle != "" {
		fmt.Fprintf(&b, "Illustration style: %s\n", req.ArtStyle)
	}
	if req.TotalPages > 0 {
		fmt.Fprintf(&b, "Exactly %d pages.\n", req.TotalPages)
	} else {
		b.WriteString("Choose a natural page count for the story.\n")
	}
	return b.String()
}

const quizSystemPrompt = `You write comprehension quizzes for children's stories. Respond with a single JSON object: {"quizzes": [{"question", "choices", "answer", "explanation"}]} where 'answer' is the zero-based index of the correct choice. Three to five questions, age-appropriate, no markdown.`

func quizUserPrompt(book *schema.Storybook) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Story: %s\n\n", book.Title)
	for _, p := range book.Pages {
		fmt.Fprintf(&b, "Page %d: %s\n", p.Number, p.Text)
	}
	return b.String()
}

// characterPrompt biases regeneration toward the existing look when a prior
// reference exists; the control flow is identical either way.
func characterPrompt(c schema.Character, artStyle string, regen bool) string {
	var b strings.Builder
	if regen {
		b.WriteString("Redraw this character, keeping them recognizably the same as the attached reference image.\n")
	} else {
		b.WriteString("Draw a full-body character reference sheet on a plain background.\n")
	}
	fmt.Fprintf(&b, "Character: %s. %s\n", c.Name, c.Description)
	if c.HeightCM != 0 {
		fmt.Fprintf(&b, "Height: about %d cm.\n", c.HeightCM)
	}
	if artStyle != "" {
		fmt.Fprintf(&b, "Art style: %s.\n", artStyle)
	}
	return b.String()
}

// contextTokenBudget bounds how much accumulated story text rides along with
// an illustration prompt.
const contextTokenBudget = 1200

var (
	encOnce sync.Once
	encoder *tiktoken.Tiktoken
)

func tokenLen(s string) int {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})
	if encoder == nil {
		// Rough fallback: a token is ~4 bytes of prose.
		return len(s) / 4
	}
	return len(encoder.Encode(s, nil, nil))
}

// storyContext joins the texts of pages before n, dropping the oldest pages
// first until the result fits the token budget.
func storyContext(book *schema.Storybook, n int) string {
	var prior []string
	for _, p := range book.Pages {
		if p.Number < n && p.Text != "" {
			prior = append(prior, fmt.Sprintf("Page %d: %s", p.Number, p.Text))
		}
	}
	for len(prior) > 0 && tokenLen(strings.Join(prior, "\n")) > contextTokenBudget {
		prior = prior[1:]
	}
	return strings.Join(prior, "\n")
}

// illustrationPrompt assembles, in order: story context, the scene
// description, any structured breakdown fields, a consistency directive for
// the attached character references, and the user's edit note.
func illustrationPrompt(book *schema.Storybook, page *schema.Page, attached []schema.Character, aspectRatio string) string {
	var b strings.Builder
	if ctxText := storyContext(book, page.Number); ctxText != "" {
		fmt.Fprintf(&b, "Story so far:\n%s\n\n", ctxText)
	}
	fmt.Fprintf(&b, "Illustrate this scene: %s\n", page.Scene)
	if d := page.Detail; d != nil {
		if d.Characters != "" {
			fmt.Fprintf(&b, "Characters in scene: %s\n", d.Characters)
		}
		if d.Background != "" {
			fmt.Fprintf(&b, "Background: %s\n", d.Background)
		}
		if d.Atmosphere != "" {
			fmt.Fprintf(&b, "Atmosphere: %s\n", d.Atmosphere)
		}
		if d.Objects != "" {
			fmt.Fprintf(&b, "Key objects: %s\n", d.Objects)
		}
		if d.Layout != "" {
			fmt.Fprintf(&b, "Layout: %s\n", d.Layout)
		}
	}
	if len(attached) > 0 {
		names := make([]string, len(attached))
		for i, c := range attached {
			names[i] = c.Name
		}
		fmt.Fprintf(&b, "Keep these characters visually identical to the attached reference images: %s.\n", strings.Join(names, ", "))
	}
	if book.ArtStyle != "" {
		fmt.Fprintf(&b, "Art style: %s.\n", book.ArtStyle)
	}
	if aspectRatio != "" {
		fmt.Fprintf(&b, "Aspect ratio %s.\n", aspectRatio)
	}
	b.WriteString("No text, letters or speech bubbles in the image.\n")
	if page.EditNote != "" {
		fmt.Fprintf(&b, "Revision request from the author: %s\n", page.EditNote)
	}
	return b.String()
}

// vocabPrompt prefers the key object's own description and falls back to a
// plain object card.
func vocabPrompt(obj *schema.KeyObject, word, artStyle string) string {
	var b strings.Builder
	if obj != nil && obj.Description != "" {
		fmt.Fprintf(&b, "Draw a single %s: %s\n", word, obj.Description)
	} else {
		fmt.Fprintf(&b, "Draw a simple, friendly illustration of a single object: %s\n", word)
	}
	b.WriteString("Centered on a plain light background, no text.\n")
	if artStyle != "" {
		fmt.Fprintf(&b, "Art style: %s.\n", artStyle)
	}
	return b.String()
}
