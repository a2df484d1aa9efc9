package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furiview/furiview/internal/logging"
)

func TestLoadAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glosses.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"日本語": "Japanese language", "勉強": "study"}`), 0o644))

	d := Load(path, logging.NewLogger("DictionaryTest"))
	assert.Equal(t, 2, d.Size())
	assert.Equal(t, "Japanese language", d.Lookup("日本語"))
	assert.Equal(t, "", d.Lookup("不明"))
}

func TestLoadMissingFileDegrades(t *testing.T) {
	d := Load(filepath.Join(t.TempDir(), "nope.json"), logging.NewLogger("DictionaryTest"))
	assert.Equal(t, 0, d.Size())
	assert.Equal(t, "", d.Lookup("日本語"))
}

func TestLoadInvalidJSONDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	d := Load(path, logging.NewLogger("DictionaryTest"))
	assert.Equal(t, 0, d.Size())
}

func TestLoadEmptyPathDisablesGlosses(t *testing.T) {
	d := Load("", logging.NewLogger("DictionaryTest"))
	assert.Equal(t, 0, d.Size())
}
