package dictionary

import (
	"encoding/json"
	"os"

	"github.com/furiview/furiview/internal/logging"
)

// Dictionary maps Japanese surface forms to English glosses. It is an
// optional collaborator: a missing or unreadable gloss file yields an
// empty dictionary, never an error.
type Dictionary struct {
	entries map[string]string
	logger  *logging.Logger
}

// Load reads a JSON object of surface→gloss pairs from path. Any failure
// is logged and degrades to an empty dictionary.
func Load(path string, logger *logging.Logger) *Dictionary {
	d := &Dictionary{entries: map[string]string{}, logger: logger}
	if path == "" {
		logger.Info("No dictionary configured, glosses disabled")
		return d
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read dictionary file, glosses disabled", "path", path, "error", err)
		return d
	}
	if err := json.Unmarshal(data, &d.entries); err != nil {
		logger.Warn("Failed to parse dictionary file, glosses disabled", "path", path, "error", err)
		d.entries = map[string]string{}
		return d
	}

	logger.Info("Dictionary loaded", "path", path, "entries", len(d.entries))
	return d
}

// Lookup returns the gloss for word, or "" when there is no entry.
func (d *Dictionary) Lookup(word string) string {
	return d.entries[word]
}

// Size reports the number of loaded entries.
func (d *Dictionary) Size() int {
	return len(d.entries)
}
