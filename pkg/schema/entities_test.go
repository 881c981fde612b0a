package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, StoryRequest{Topic: "space whales", TotalPages: 8}.Validate())
	})
	t.Run("zero pages means auto", func(t *testing.T) {
		assert.NoError(t, StoryRequest{Topic: "space whales"}.Validate())
	})
	t.Run("missing topic", func(t *testing.T) {
		assert.Error(t, StoryRequest{TotalPages: 8}.Validate())
	})
	t.Run("too many pages", func(t *testing.T) {
		assert.Error(t, StoryRequest{Topic: "x", TotalPages: MaxPages + 1}.Validate())
	})
	t.Run("negative pages", func(t *testing.T) {
		assert.Error(t, StoryRequest{Topic: "x", TotalPages: -1}.Validate())
	})
}

func TestCharacterValidate(t *testing.T) {
	t.Run("height in band", func(t *testing.T) {
		assert.NoError(t, Character{Name: "Alice", HeightCM: 120}.Validate())
	})
	t.Run("zero height allowed", func(t *testing.T) {
		assert.NoError(t, Character{Name: "Alice"}.Validate())
	})
	t.Run("too short", func(t *testing.T) {
		assert.Error(t, Character{Name: "Alice", HeightCM: MinHeightCM - 1}.Validate())
	})
	t.Run("too tall", func(t *testing.T) {
		assert.Error(t, Character{Name: "Giant", HeightCM: MaxHeightCM + 1}.Validate())
	})
	t.Run("no name", func(t *testing.T) {
		assert.Error(t, Character{HeightCM: 120}.Validate())
	})
}

func TestNewStorybook(t *testing.T) {
	req := StoryRequest{Topic: "seven dwarfs", AgeBand: "5-7", ArtStyle: "watercolor"}
	draft := StoryDraft{
		Title: "The Seven Dwarfs",
		Pages: []DraftPage{
			{Text: "Once upon a time...", Scene: "a forest clearing", Detail: &SceneDetail{Background: "pines"}},
			{Text: "They marched home.", Scene: "a cottage"},
		},
		Characters: []DraftCharacter{
			{Name: "Snow White", Description: "a kind girl", HeightCM: 150},
			{Name: "Dwarf x 3", Description: "a bearded dwarf"},
		},
		KeyObjects: []DraftKeyObject{
			{Name: "pickaxe", Label: "곡괭이", Description: "a mining tool"},
		},
		Educational: &EducationalNotes{Theme: "friendship"},
	}

	book := NewStorybook(req, draft)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "The Seven Dwarfs", book.Title)
	assert.Equal(t, "5-7", book.AgeBand)
	assert.Equal(t, "watercolor", book.ArtStyle)
	assert.False(t, book.CreatedAt.IsZero())

	require.Len(t, book.Pages, 2)
	assert.Equal(t, 1, book.Pages[0].Number)
	assert.Equal(t, 2, book.Pages[1].Number)
	require.NotNil(t, book.Pages[0].Detail)
	assert.Equal(t, "pines", book.Pages[0].Detail.Background)

	// the group entry expands into numbered instances
	require.Len(t, book.Characters, 4)
	assert.Equal(t, "Snow White", book.Characters[0].Name)
	assert.Equal(t, "Dwarf1", book.Characters[1].Name)
	assert.Equal(t, "Dwarf3", book.Characters[3].Name)
	assert.Equal(t, "a bearded dwarf (1 of 3)", book.Characters[1].Description)

	require.Len(t, book.KeyObjects, 1)
	assert.Equal(t, "곡괭이", book.KeyObjects[0].Label)
	require.NotNil(t, book.Educational)
	assert.Equal(t, "friendship", book.Educational.Theme)
}

func TestPageByNumber(t *testing.T) {
	book := Storybook{Pages: []Page{{Number: 1}, {Number: 2}}}
	require.NotNil(t, book.PageByNumber(2))
	assert.Equal(t, 2, book.PageByNumber(2).Number)
	assert.Nil(t, book.PageByNumber(5))

	// returned pointer aliases the slice element
	book.PageByNumber(1).Image = "data:image/png;base64,AAAA"
	assert.Equal(t, "data:image/png;base64,AAAA", book.Pages[0].Image)
}
