package schema

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// Storybook is one illustrated book project. Artifact fields (images, audio)
// hold opaque references: data URLs for generated media or absolute remote
// URLs. The persisted snapshot strips them; the in-memory model keeps them.
type Storybook struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	AgeBand     string            `json:"age_band,omitempty"`
	ArtStyle    string            `json:"art_style,omitempty"`
	Pages       []Page            `json:"pages"`
	Characters  []Character       `json:"characters"`
	KeyObjects  []KeyObject       `json:"key_objects,omitempty"`
	Educational *EducationalNotes `json:"educational,omitempty"`
	CoverImage  string            `json:"cover_image,omitempty"`
	Quizzes     []Quiz            `json:"quizzes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Page is one spread of the book. Number is 1-based and contiguous.
type Page struct {
	Number     int          `json:"number"`
	Text       string       `json:"text"`
	Scene      string       `json:"scene,omitempty"`
	Detail     *SceneDetail `json:"detail,omitempty"`
	Image      string       `json:"image,omitempty"`
	EditNote   string       `json:"edit_note,omitempty"`
	Audio      string       `json:"audio,omitempty"`
	Voice      string       `json:"voice,omitempty"`
	VoiceModel string       `json:"voice_model,omitempty"`
}

// SceneDetail is a free-text structured breakdown of a scene. No field is
// required; whatever the story writer filled in is carried along as prompt
// material.
type SceneDetail struct {
	Characters string `json:"characters,omitempty"`
	Background string `json:"background,omitempty"`
	Atmosphere string `json:"atmosphere,omitempty"`
	Objects    string `json:"objects,omitempty"`
	Layout     string `json:"layout,omitempty"`
}

// Character is one recurring figure. Name is the unique display label within
// a book; group entries ("Dwarf x 7") are expanded into numbered instances
// before a Character ever reaches the book.
type Character struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Role           string `json:"role,omitempty"`
	HeightCM       int    `json:"height_cm,omitempty"`
	ReferenceImage string `json:"reference_image,omitempty"`
}

const (
	MinHeightCM = 50
	MaxHeightCM = 250
)

// Validate checks the height band. Zero means "not stated" and is allowed.
func (c Character) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("character has no name")
	}
	if c.HeightCM != 0 && (c.HeightCM < MinHeightCM || c.HeightCM > MaxHeightCM) {
		return fmt.Errorf("character %q: height %d cm outside %d-%d", c.Name, c.HeightCM, MinHeightCM, MaxHeightCM)
	}
	return nil
}

// KeyObject is a vocabulary item with an optional illustration card.
type KeyObject struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	SizeClass   string `json:"size_class,omitempty"`
	SizeCM      int    `json:"size_cm,omitempty"`
	Example     string `json:"example,omitempty"`
	Image       string `json:"image,omitempty"`
	Reused      bool   `json:"reused,omitempty"`
}

// EducationalNotes is the learning block attached to a book.
type EducationalNotes struct {
	Theme      string   `json:"theme,omitempty"`
	Values     []string `json:"values,omitempty"`
	Discussion []string `json:"discussion,omitempty"`
}

// Quiz is one multiple-choice comprehension question.
type Quiz struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Settings are the user's generation preferences, persisted separately from
// the book collection.
type Settings struct {
	AspectRatio    string `json:"aspect_ratio,omitempty"`
	StoryModel     string `json:"story_model,omitempty"`
	ImageModel     string `json:"image_model,omitempty"`
	AudioModel     string `json:"audio_model,omitempty"`
	Voice          string `json:"voice,omitempty"`
	SequentialMode bool   `json:"sequential_mode,omitempty"`
}

// DefaultSettings returns the preferences used until the user saves their own.
func DefaultSettings() Settings {
	return Settings{
		AspectRatio: "1:1",
		StoryModel:  "gemini-2.5-flash",
		ImageModel:  "gemini-2.5-flash-image",
		AudioModel:  "gemini-2.5-flash-preview-tts",
		Voice:       "Kore",
	}
}

// MaxPages bounds a story request; 0 lets the model decide.
const MaxPages = 30

// StoryRequest is the input to story generation.
type StoryRequest struct {
	Topic      string `json:"topic"`
	AgeBand    string `json:"age_band,omitempty"`
	ArtStyle   string `json:"art_style,omitempty"`
	Language   string `json:"language,omitempty"`
	TotalPages int    `json:"total_pages,omitempty"`
}

// Validate rejects malformed requests before any network call is made.
// TotalPages 0 means "auto" and is valid.
func (r StoryRequest) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if r.TotalPages < 0 || r.TotalPages > MaxPages {
		return fmt.Errorf("total_pages must be between 0 and %d, got %d", MaxPages, r.TotalPages)
	}
	return nil
}

// NewStorybook builds a book from a draft returned by the story writer,
// expanding any group characters into numbered instances.
func NewStorybook(req StoryRequest, draft StoryDraft) Storybook {
	now := time.Now().UTC()
	book := Storybook{
		ID:        ksuid.New().String(),
		Title:     draft.Title,
		AgeBand:   req.AgeBand,
		ArtStyle:  req.ArtStyle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, p := range draft.Pages {
		page := Page{
			Number: i + 1,
			Text:   p.Text,
			Scene:  p.Scene,
		}
		if p.Detail != nil {
			d := *p.Detail
			page.Detail = &d
		}
		book.Pages = append(book.Pages, page)
	}
	for _, c := range draft.Characters {
		book.Characters = append(book.Characters, ExpandGroup(Character{
			Name:        c.Name,
			Description: c.Description,
			Role:        c.Role,
			HeightCM:    c.HeightCM,
		})...)
	}
	for _, o := range draft.KeyObjects {
		book.KeyObjects = append(book.KeyObjects, KeyObject{
			Name:        o.Name,
			Label:       o.Label,
			Description: o.Description,
			SizeClass:   o.SizeClass,
			SizeCM:      o.SizeCM,
			Example:     o.Example,
		})
	}
	if draft.Educational != nil {
		e := *draft.Educational
		book.Educational = &e
	}
	return book
}

// Touch bumps the modification timestamp.
func (b *Storybook) Touch() { b.UpdatedAt = time.Now().UTC() }

// PageByNumber returns a pointer into Pages, or nil.
func (b *Storybook) PageByNumber(n int) *Page {
	for i := range b.Pages {
		if b.Pages[i].Number == n {
			return &b.Pages[i]
		}
	}
	return nil
}
