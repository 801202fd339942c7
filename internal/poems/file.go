package poems

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/keybeat/internal/model"
)

type poemsFile struct {
	Poems map[string]poemEntry `toml:"poems"`
}

type poemEntry struct {
	Title string `toml:"title"`
	Text  string `toml:"text"`
}

// LoadFile returns the builtin catalogue extended with poems from a TOML file.
// Missing file is not an error. Entries with a builtin key replace the builtin poem.
func LoadFile(path string) (*Catalogue, error) {
	base := Builtin()
	if path == "" {
		return base, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, fmt.Errorf("failed to stat poems file: %w", err)
	}
	var file poemsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode poems file: %w", err)
	}
	extra := make(map[string]model.Poem, len(file.Poems))
	for key, entry := range file.Poems {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("poem key must not be empty")
		}
		if len(Tokenize(entry.Text)) == 0 {
			return nil, fmt.Errorf("poem %q has no words", key)
		}
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = key
		}
		extra[key] = model.Poem{Key: key, Title: title, Text: entry.Text}
	}
	return base.merge(extra), nil
}
