package poems

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBuiltinCatalogue(t *testing.T) {
	c := Builtin()
	want := []string{"dreams", "hope", "invictus", "road"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
	road, ok := c.Get(DefaultKey)
	if !ok {
		t.Fatalf("expected default poem")
	}
	if road.Title != "The Road Not Taken" {
		t.Fatalf("unexpected title %q", road.Title)
	}
	words := Tokenize(road.Text)
	if words[0] != "Two" || words[len(words)-1] != "difference." {
		t.Fatalf("unexpected tokens at edges: %q .. %q", words[0], words[len(words)-1])
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Builtin().Lookup("raven")
	if err == nil || !strings.Contains(err.Error(), "available: dreams, hope, invictus, road") {
		t.Fatalf("expected lookup error listing keys, got %v", err)
	}
}

func TestNextWraps(t *testing.T) {
	c := Builtin()
	if got := c.Next("road", 1); got != "dreams" {
		t.Fatalf("expected wrap to dreams, got %q", got)
	}
	if got := c.Next("dreams", -1); got != "road" {
		t.Fatalf("expected wrap to road, got %q", got)
	}
	if got := c.Next("missing", 1); got != "dreams" {
		t.Fatalf("expected first key for unknown, got %q", got)
	}
}

func TestLoadFileMergesPoems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poems.toml")
	content := `
[poems.haiku]
title = "Old Pond"
text = """
An old silent pond
A frog jumps into the pond
Splash! Silence again.
"""

[poems.hope]
text = "short hope"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write poems: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load poems: %v", err)
	}
	haiku, ok := c.Get("haiku")
	if !ok || haiku.Title != "Old Pond" {
		t.Fatalf("expected haiku poem, got %+v", haiku)
	}
	hope, _ := c.Get("hope")
	if hope.Title != "hope" || hope.Text != "short hope" {
		t.Fatalf("expected overridden hope poem, got %+v", hope)
	}
	if _, ok := Builtin().Get("haiku"); ok {
		t.Fatalf("builtin catalogue must not change")
	}
}

func TestLoadFileMissingIsBuiltin(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("load poems: %v", err)
	}
	if len(c.Keys()) != 4 {
		t.Fatalf("expected builtin poems, got %v", c.Keys())
	}
}

func TestLoadFileRejectsEmptyPoem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poems.toml")
	if err := os.WriteFile(path, []byte("[poems.blank]\ntext = \"  \"\n"), 0o644); err != nil {
		t.Fatalf("write poems: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for poem without words")
	}
}
