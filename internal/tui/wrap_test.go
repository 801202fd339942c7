package tui

import (
	"testing"

	"github.com/verte-zerg/keybeat/internal/session"
)

func plainWords(words ...string) []styledWord {
	out := make([]styledWord, 0, len(words))
	for _, word := range words {
		sw := styledWord{}
		for _, r := range word {
			sw.cells = append(sw.cells, string(r))
			sw.widths = append(sw.widths, 1)
			sw.width++
		}
		out = append(out, sw)
	}
	return out
}

func TestBuildStyledWordsStates(t *testing.T) {
	words := []string{"ab", "cd", "ef", "gh"}
	results := []session.WordResult{session.Correct, session.Incorrect, session.Unattempted, session.Unattempted}

	styled := buildStyledWords(words, results, 2, "e")
	if len(styled) != 4 {
		t.Fatalf("expected 4 words, got %d", len(styled))
	}
	if styled[0].cells[0] != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first word")
	}
	if styled[1].cells[0] != incorrectStyle.Render("c") {
		t.Fatalf("expected incorrect style for second word")
	}
	if styled[2].cells[1] != currentWordStyle.Render("f") {
		t.Fatalf("expected current word style for cursor word")
	}
	if styled[3].cells[0] != pendingStyle.Render("g") {
		t.Fatalf("expected pending style for later word")
	}
	if styled[3].width != 2 {
		t.Fatalf("expected width 2, got %d", styled[3].width)
	}
}

func TestBuildStyledWordsTypoOnCurrentWord(t *testing.T) {
	styled := buildStyledWords([]string{"one", "two"}, make([]session.WordResult, 2), 0, "ox")
	if styled[0].cells[0] != typoStyle.Render("o") {
		t.Fatalf("expected typo style when input diverges")
	}
	if styled[1].cells[0] != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledWordsWideRunes(t *testing.T) {
	styled := buildStyledWords([]string{"春暁"}, nil, 0, "")
	if styled[0].width != 4 {
		t.Fatalf("expected double-width runes, got width %d", styled[0].width)
	}
}

func TestWrapStyledWordsBreaksBetweenWords(t *testing.T) {
	got := wrapStyledWords(plainWords("alpha", "beta", "gamma"), 10)
	if got != "alpha beta\ngamma" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapStyledWordsHardBreaksLongWord(t *testing.T) {
	got := wrapStyledWords(plainWords("ab", "abcdef"), 4)
	if got != "ab\nabcd\nef" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapStyledWordsWithoutWidth(t *testing.T) {
	got := wrapStyledWords(plainWords("one", "two"), 0)
	if got != "one two" {
		t.Fatalf("unexpected output %q", got)
	}
}
