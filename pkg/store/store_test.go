package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fable/pkg/schema"
)

func sampleBook(id, title string, created time.Time) schema.Storybook {
	return schema.Storybook{
		ID:         id,
		Title:      title,
		CoverImage: "data:image/png;base64,Y292ZXI=",
		Pages: []schema.Page{
			{Number: 1, Text: "Once upon a time.", Image: "data:image/png;base64,cDE=", Audio: "data:audio/wav;base64,YQ=="},
		},
		Characters: []schema.Character{
			{Name: "Alice", Description: "a girl", ReferenceImage: "data:image/png;base64,cmVm"},
		},
		KeyObjects: []schema.KeyObject{
			{Name: "balloon", Image: "data:image/png;base64,b2Jq"},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestStrip(t *testing.T) {
	books := []schema.Storybook{sampleBook("b1", "A Book", time.Now())}
	stripped := Strip(books)

	require.Len(t, stripped, 1)
	assert.Empty(t, stripped[0].CoverImage)
	assert.Empty(t, stripped[0].Pages[0].Image)
	assert.Empty(t, stripped[0].Pages[0].Audio)
	assert.Empty(t, stripped[0].Characters[0].ReferenceImage)
	assert.Empty(t, stripped[0].KeyObjects[0].Image)
	// text survives
	assert.Equal(t, "Once upon a time.", stripped[0].Pages[0].Text)

	// the live collection keeps its media
	assert.NotEmpty(t, books[0].CoverImage)
	assert.NotEmpty(t, books[0].Pages[0].Image)
	assert.NotEmpty(t, books[0].Characters[0].ReferenceImage)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	books := []schema.Storybook{sampleBook("b1", "A Book", time.Now().UTC())}
	require.NoError(t, s.Save(books))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "b1", loaded[0].ID)
	assert.Equal(t, "A Book", loaded[0].Title)
	// artifacts were stripped on the way down
	assert.Empty(t, loaded[0].Pages[0].Image)
	assert.Empty(t, loaded[0].CoverImage)
}

func TestLoadMissingSnapshot(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	books, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSaveQuota(t *testing.T) {
	t.Run("evicts the oldest book and retries", func(t *testing.T) {
		s, err := New(t.TempDir(), 800)
		require.NoError(t, err)

		old := sampleBook("old", strings.Repeat("x", 1200), time.Now().Add(-time.Hour))
		fresh := sampleBook("fresh", "Small", time.Now())

		require.NoError(t, s.Save([]schema.Storybook{old, fresh}))

		loaded, err := s.Load()
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "fresh", loaded[0].ID)
	})

	t.Run("single oversized book cannot be saved", func(t *testing.T) {
		s, err := New(t.TempDir(), 800)
		require.NoError(t, err)

		err = s.Save([]schema.Storybook{sampleBook("big", strings.Repeat("x", 1200), time.Now())})
		require.ErrorIs(t, err, ErrPersistence)
	})

	t.Run("eviction that does not help fails", func(t *testing.T) {
		s, err := New(t.TempDir(), 800)
		require.NoError(t, err)

		err = s.Save([]schema.Storybook{
			sampleBook("big1", strings.Repeat("x", 1200), time.Now().Add(-time.Hour)),
			sampleBook("big2", strings.Repeat("y", 1200), time.Now()),
		})
		require.ErrorIs(t, err, ErrPersistence)
	})

	t.Run("input collection is never modified", func(t *testing.T) {
		s, err := New(t.TempDir(), 800)
		require.NoError(t, err)

		old := sampleBook("old", strings.Repeat("x", 1200), time.Now().Add(-time.Hour))
		fresh := sampleBook("fresh", "Small", time.Now())
		books := []schema.Storybook{old, fresh}

		require.NoError(t, s.Save(books))
		require.Len(t, books, 2)
		assert.Equal(t, "old", books[0].ID)
		assert.NotEmpty(t, books[0].CoverImage)
	})
}

func TestSettings(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	t.Run("defaults when nothing saved", func(t *testing.T) {
		settings, err := s.LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, schema.DefaultSettings(), settings)
	})

	t.Run("round trip", func(t *testing.T) {
		want := schema.Settings{AspectRatio: "16:9", Voice: "Puck", SequentialMode: true}
		require.NoError(t, s.SaveSettings(want))

		got, err := s.LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}
