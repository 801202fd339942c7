package resultsui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keybeat/internal/model"
)

type fakeFetcher struct {
	totalPages int
	fail       bool
	calls      []int
}

func (f *fakeFetcher) ListSessions(_ context.Context, page, size int) (model.ResultsPage, error) {
	f.calls = append(f.calls, page)
	if f.fail {
		return model.ResultsPage{}, errors.New("connection refused")
	}
	items := make([]model.SessionResult, 0, size)
	for i := 0; i < size; i++ {
		items = append(items, model.SessionResult{Poem: fmt.Sprintf("p%d-%d", page, i), WPM: 30 + i, Accuracy: 90})
	}
	return model.ResultsPage{Items: items, Page: page, TotalPages: f.totalPages}, nil
}

func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected command")
	}
	m.Update(cmd())
}

func keyRight() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRight} }
func keyLeft() tea.KeyMsg  { return tea.KeyMsg{Type: tea.KeyLeft} }

func TestInitLoadsFirstPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 3}
	m := NewModel(f, 2)
	run(t, m, m.Init())
	if m.Pager().CurrentPage() != 1 || m.Pager().TotalPages() != 3 {
		t.Fatalf("unexpected pager state %d/%d", m.Pager().CurrentPage(), m.Pager().TotalPages())
	}
	if len(m.table.Rows()) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.table.Rows()))
	}
	if m.keys.Prev.Enabled() || !m.keys.Next.Enabled() {
		t.Fatalf("expected only next enabled on first page")
	}
	if !strings.Contains(m.View(), "page 1 of 3") {
		t.Fatalf("expected page title in view: %s", m.View())
	}
}

func TestNavigationRespectsBounds(t *testing.T) {
	f := &fakeFetcher{totalPages: 2}
	m := NewModel(f, 1)
	run(t, m, m.Init())

	if _, cmd := m.Update(keyLeft()); cmd != nil {
		t.Fatalf("expected no load when prev is disabled")
	}
	_, cmd := m.Update(keyRight())
	run(t, m, cmd)
	if m.Pager().CurrentPage() != 2 {
		t.Fatalf("expected page 2, got %d", m.Pager().CurrentPage())
	}
	if _, cmd := m.Update(keyRight()); cmd != nil {
		t.Fatalf("expected no load when next is disabled")
	}
	_, cmd = m.Update(keyLeft())
	run(t, m, cmd)
	if m.Pager().CurrentPage() != 1 {
		t.Fatalf("expected page 1, got %d", m.Pager().CurrentPage())
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	f := &fakeFetcher{totalPages: 3}
	m := NewModel(f, 1)
	run(t, m, m.Init())

	_, toPage2 := m.Update(keyRight())
	_, refresh := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m.Update(refresh())
	m.Update(toPage2())
	if m.Pager().CurrentPage() != 1 {
		t.Fatalf("expected newest request to win, got page %d", m.Pager().CurrentPage())
	}
	if m.loading {
		t.Fatalf("expected loading to finish")
	}
}

func TestLoadErrorKeepsPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 2}
	m := NewModel(f, 1)
	run(t, m, m.Init())
	f.fail = true
	_, cmd := m.Update(keyRight())
	run(t, m, cmd)
	if m.Pager().CurrentPage() != 1 || len(m.Pager().Items()) != 1 {
		t.Fatalf("expected previous page to stay displayed")
	}
	if !strings.Contains(m.View(), "Failed to load results") {
		t.Fatalf("expected error in view: %s", m.View())
	}
}

func TestEscBehaviour(t *testing.T) {
	f := &fakeFetcher{totalPages: 1}
	embedded := NewModel(f, 1, Embedded())
	_, cmd := embedded.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected close command")
	}
	if _, ok := cmd().(CloseMsg); !ok {
		t.Fatalf("expected CloseMsg")
	}

	standalone := NewModel(f, 1)
	_, cmd = standalone.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

type emptyFetcher struct{}

func (emptyFetcher) ListSessions(context.Context, int, int) (model.ResultsPage, error) {
	return model.ResultsPage{Items: []model.SessionResult{}, TotalPages: 1}, nil
}

func TestEmptyResults(t *testing.T) {
	m := NewModel(emptyFetcher{}, 0)
	if !strings.Contains(m.View(), "No sessions found.") {
		t.Fatalf("expected empty message before load, got %s", m.View())
	}
	cmd := m.Init()
	if !strings.Contains(m.View(), "Loading...") {
		t.Fatalf("expected loading message, got %s", m.View())
	}
	run(t, m, cmd)
	if !strings.Contains(m.View(), "No sessions found.") {
		t.Fatalf("expected empty message, got %s", m.View())
	}
	if m.Pager().PageSize() != 10 {
		t.Fatalf("expected default page size, got %d", m.Pager().PageSize())
	}
}

func TestStartPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 4}
	m := NewModel(f, 1, WithStartPage(3))
	run(t, m, m.Init())
	if m.Pager().CurrentPage() != 3 || !m.keys.Prev.Enabled() || !m.keys.Next.Enabled() {
		t.Fatalf("expected page 3 with both directions enabled")
	}
	if len(f.calls) != 1 || f.calls[0] != 3 {
		t.Fatalf("expected a single request for page 3, got %v", f.calls)
	}
}

func TestPlotToggle(t *testing.T) {
	m := NewModel(&fakeFetcher{totalPages: 1}, 3)
	run(t, m, m.Init())
	plotKey := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")}
	if strings.Contains(m.View(), "Legend:") {
		t.Fatalf("expected no plot before toggling")
	}
	m.Update(plotKey)
	if !strings.Contains(m.View(), "Legend: WPM (solid)  Accuracy (dashed)") {
		t.Fatalf("expected history plot in view: %s", m.View())
	}
	m.Update(plotKey)
	if strings.Contains(m.View(), "Legend:") {
		t.Fatalf("expected plot hidden after second toggle")
	}

	single := NewModel(&fakeFetcher{totalPages: 1}, 1)
	run(t, single, single.Init())
	single.Update(plotKey)
	if !strings.Contains(single.View(), "Not enough sessions to plot.") {
		t.Fatalf("expected notice for a single session: %s", single.View())
	}
}
