package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	t.Run("fenced with language tag", func(t *testing.T) {
		assert.Equal(t, `{"a": 1}`, CleanJSON("```json\n{\"a\": 1}\n```"))
	})
	t.Run("fenced without tag", func(t *testing.T) {
		assert.Equal(t, `{"a": 1}`, CleanJSON("```\n{\"a\": 1}\n```"))
	})
	t.Run("bare JSON untouched", func(t *testing.T) {
		assert.Equal(t, `{"a": 1}`, CleanJSON(`  {"a": 1}  `))
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeFilename("a/b:c"))
	assert.Equal(t, "The Lost Balloon", SanitizeFilename("  The Lost Balloon  "))
}

func TestStringContains(t *testing.T) {
	assert.True(t, StringContains("Alice met the BULLDOG", false, "bulldog"))
	assert.False(t, StringContains("Alice met the BULLDOG", true, "bulldog"))
	assert.True(t, StringContains("abc", false, "zzz", "b"))
	assert.False(t, StringContains("abc", false, "zzz"))
}

func TestLimitStr(t *testing.T) {
	assert.Equal(t, "abc", LimitStr("abc", 5))
	assert.Equal(t, "ab...", LimitStr("abcdef", 2))
}

func TestLoadSave(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "payload.json")
		want := payload{Name: "kite", Count: 3}
		require.NoError(t, Save(path, want))

		got, err := Load[payload](path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load[payload](filepath.Join(t.TempDir(), "nope.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
