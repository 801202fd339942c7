// Package resultsui provides the Bubble Tea results table.
package resultsui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keybeat/internal/results"
	"github.com/verte-zerg/keybeat/internal/stats"
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// CloseMsg is emitted by an embedded results view when the user leaves it.
type CloseMsg struct{}

type pageLoadedMsg struct {
	loaded results.Loaded
}

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Refresh key.Binding
	Plot    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Plot:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "plot")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Refresh, k.Plot, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Option configures a Model.
type Option func(*Model)

// WithStartPage selects the page requested by Init.
func WithStartPage(page int) Option {
	return func(m *Model) {
		m.startPage = page
	}
}

// Embedded makes esc emit CloseMsg instead of quitting the program.
func Embedded() Option {
	return func(m *Model) {
		m.embedded = true
	}
}

// Model implements the Bubble Tea results UI.
type Model struct {
	pager     *results.Pager
	embedded  bool
	startPage int

	table table.Model
	keys  keyMap
	help  help.Model

	pending uint64
	loading bool
	errMsg  string
	plot    bool

	width  int
	height int
}

// NewModel constructs a results UI that pages through fetcher.
func NewModel(fetcher results.Fetcher, pageSize int, opts ...Option) *Model {
	m := &Model{
		pager:     results.NewPager(fetcher, pageSize),
		startPage: 1,
		keys:      newKeyMap(),
		help:      help.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.keys.Back.SetEnabled(m.embedded)
	m.table = table.New(
		table.WithColumns(columnsFor(80)),
		table.WithHeight(m.pager.PageSize()),
		table.WithFocused(true),
	)
	m.table.SetStyles(tableStyles())
	m.syncKeys()
	return m
}

// Init implements tea.Model. It requests the start page.
func (m *Model) Init() tea.Cmd {
	return m.load(m.startPage)
}

// Pager exposes the pagination state.
func (m *Model) Pager() *results.Pager {
	return m.pager
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case pageLoadedMsg:
		m.applyLoaded(msg.loaded)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Prev):
			if page, ok := m.pager.PrevPage(); ok {
				return m, m.load(page)
			}
			return m, nil
		case key.Matches(msg, m.keys.Next):
			if page, ok := m.pager.NextPage(); ok {
				return m, m.load(page)
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load(m.pager.CurrentPage())
		case key.Matches(msg, m.keys.Plot):
			m.plot = !m.plot
			return m, nil
		}
		if msg.Type == tea.KeyEsc && !m.embedded {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{titleStyle.Render(m.title())}
	switch {
	case len(m.pager.Items()) == 0 && m.loading:
		lines = append(lines, "Loading...")
	case len(m.pager.Items()) == 0:
		lines = append(lines, "No sessions found.")
	default:
		lines = append(lines, tableMutedStyle.Render(m.table.View()))
		if m.plot {
			lines = append(lines, m.plotView())
		}
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	lines = append(lines, m.help.View(m.keys))
	view := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return view
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
}

func (m *Model) plotView() string {
	var b strings.Builder
	if err := stats.PlotHistory(&b, m.pager.Items(), m.width, false); err != nil {
		return errorStyle.Render(err.Error())
	}
	if b.Len() == 0 {
		return headerStyle.Render("Not enough sessions to plot.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) title() string {
	title := fmt.Sprintf("Results · page %d of %d", m.pager.CurrentPage(), m.pager.TotalPages())
	if m.loading {
		title += headerStyle.Render("  loading")
	}
	return title
}

func (m *Model) load(page int) tea.Cmd {
	req := m.pager.Begin(page)
	m.pending = req.Seq
	m.loading = true
	pager := m.pager
	return func() tea.Msg {
		return pageLoadedMsg{loaded: pager.Fetch(context.Background(), req)}
	}
}

func (m *Model) applyLoaded(loaded results.Loaded) {
	if loaded.Seq != m.pending {
		return
	}
	m.loading = false
	if loaded.Err != nil {
		log.Printf("failed to load results page %d: %v", loaded.Page, loaded.Err)
		m.errMsg = fmt.Sprintf("Failed to load results: %v", loaded.Err)
		return
	}
	m.errMsg = ""
	m.pager.Apply(loaded)
	m.table.SetRows(tableRows(m.pager))
	m.table.GotoTop()
	m.syncKeys()
}

func (m *Model) syncKeys() {
	m.keys.Prev.SetEnabled(m.pager.HasPrev())
	m.keys.Next.SetEnabled(m.pager.HasNext())
}

func (m *Model) updateLayout() {
	width := m.width - 4
	if width < 30 {
		width = 30
	}
	m.table.SetColumns(columnsFor(width))
	m.table.SetWidth(width)
	m.help.Width = width
	height := m.height - 4
	if height > m.pager.PageSize()+1 {
		height = m.pager.PageSize() + 1
	}
	if height < 2 {
		height = 2
	}
	m.table.SetHeight(height)
}

func columnsFor(width int) []table.Column {
	fixed := []table.Column{
		{Title: stats.ResultHeaders[1], Width: 5},
		{Title: stats.ResultHeaders[2], Width: 9},
		{Title: stats.ResultHeaders[3], Width: 9},
		{Title: stats.ResultHeaders[4], Width: 7},
	}
	poemWidth := width
	for _, col := range fixed {
		poemWidth -= col.Width + 1
	}
	if poemWidth < 8 {
		poemWidth = 8
	}
	return append([]table.Column{{Title: stats.ResultHeaders[0], Width: poemWidth}}, fixed...)
}

func tableRows(p *results.Pager) []table.Row {
	cells := stats.ResultRows(p.Items())
	rows := make([]table.Row, 0, len(cells))
	for _, row := range cells {
		rows = append(rows, table.Row(row))
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
