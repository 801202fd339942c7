package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keybeat/internal/session"
)

// styledWord is a poem word rendered one cell per rune so that words wider
// than the screen can still be broken.
type styledWord struct {
	cells  []string
	widths []int
	width  int
}

// buildStyledWords styles every word by its result. The word under the
// cursor is underlined and turns red once typed is no longer a prefix of it.
func buildStyledWords(words []string, results []session.WordResult, cursor int, typed string) []styledWord {
	out := make([]styledWord, 0, len(words))
	for i, word := range words {
		style := wordStyle(i, word, results, cursor, typed)
		sw := styledWord{}
		for _, r := range word {
			w := runewidth.RuneWidth(r)
			sw.cells = append(sw.cells, style.Render(string(r)))
			sw.widths = append(sw.widths, w)
			sw.width += w
		}
		out = append(out, sw)
	}
	return out
}

func wordStyle(i int, word string, results []session.WordResult, cursor int, typed string) lipgloss.Style {
	if i < len(results) {
		switch results[i] {
		case session.Correct:
			return correctStyle
		case session.Incorrect:
			return incorrectStyle
		}
	}
	if i != cursor {
		return pendingStyle
	}
	if !strings.HasPrefix(word, typed) {
		return typoStyle
	}
	return currentWordStyle
}

// wrapStyledWords greedily fills lines of at most width cells. A width of
// zero or less disables wrapping.
func wrapStyledWords(words []styledWord, width int) string {
	var out strings.Builder
	lineWidth := 0
	for _, word := range words {
		if lineWidth > 0 {
			if width > 0 && lineWidth+1+word.width > width {
				out.WriteByte('\n')
				lineWidth = 0
			} else {
				out.WriteByte(' ')
				lineWidth++
			}
		}
		for i, cell := range word.cells {
			if width > 0 && lineWidth > 0 && lineWidth+word.widths[i] > width {
				out.WriteByte('\n')
				lineWidth = 0
			}
			out.WriteString(cell)
			lineWidth += word.widths[i]
		}
	}
	return out.String()
}
