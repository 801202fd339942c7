// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keybeat/internal/model"
	"github.com/verte-zerg/keybeat/internal/poems"
	"github.com/verte-zerg/keybeat/internal/results"
	"github.com/verte-zerg/keybeat/internal/resultsui"
	"github.com/verte-zerg/keybeat/internal/session"
	"github.com/verte-zerg/keybeat/internal/stats"
)

// tickInterval is how often elapsed time is refreshed while typing.
const tickInterval = 500 * time.Millisecond

// inputSlack is how many runes past the longest word the input accepts.
const inputSlack = 16

// Backend receives finished sessions and serves the results listing.
type Backend interface {
	results.Fetcher
	SubmitSession(ctx context.Context, result model.SessionResult) error
}

type tickMsg struct {
	gen uint64
	at  time.Time
}

type deliveredMsg struct {
	gen         uint64
	err         error
	openResults bool
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config    model.Config
	catalogue *poems.Catalogue
	backend   Backend
	clock     session.Clock

	poem    model.Poem
	session *session.Session
	input   textinput.Model

	// gen identifies the active session. Ticks and deliveries carry the
	// generation they were started for and are ignored once it changes.
	gen     uint64
	ticking bool
	now     time.Time
	final   *stats.Snapshot

	status    string
	statusErr bool

	results *resultsui.Model

	width  int
	height int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	typoStyle        = incorrectStyle.Underline(true)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Option configures a Model.
type Option func(*Model)

// WithClock replaces the wall clock used for timing sessions.
func WithClock(clock session.Clock) Option {
	return func(m *Model) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewModel constructs a typing TUI model for the poem named in cfg.
func NewModel(cfg model.Config, catalogue *poems.Catalogue, backend Backend, opts ...Option) (*Model, error) {
	poem, err := catalogue.Lookup(cfg.PoemKey)
	if err != nil {
		return nil, err
	}
	m := &Model{
		config:    cfg,
		catalogue: catalogue,
		backend:   backend,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.session = session.New(nil, m.clock)
	m.input = textinput.New()
	m.input.Prompt = "› "
	m.input.Placeholder = "type the highlighted word, then space"
	m.input.Focus()
	m.startPoem(poem)
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, m.handleTick(msg)
	case deliveredMsg:
		return m, m.handleDelivered(msg)
	case resultsui.CloseMsg:
		m.results = nil
		if m.session.Finished() {
			return m, nil
		}
		return m, m.input.Focus()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, m.contentWidth()-4)
		if m.results != nil {
			m.results.Update(msg)
		}
		return m, nil
	}

	if m.results != nil {
		_, cmd := m.results.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	switch keyMsg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeySpace, tea.KeyEnter:
		return m, m.submitWord()
	case tea.KeyCtrlS:
		return m, m.finishEarly()
	case tea.KeyCtrlR:
		m.startPoem(m.poem)
		return m, nil
	case tea.KeyTab:
		m.switchPoem(1)
		return m, nil
	case tea.KeyShiftTab:
		m.switchPoem(-1)
		return m, nil
	case tea.KeyCtrlO:
		return m, m.openResults()
	}
	if m.session.Finished() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.results != nil {
		return m.results.View()
	}
	title := titleStyle.Render(m.poem.Title) + footerStyle.Render(fmt.Sprintf("  (%s)", m.poem.Key))
	styled := buildStyledWords(m.session.Words(), m.session.Results(), m.session.Cursor(), strings.TrimSpace(m.input.Value()))
	width := m.contentWidth()
	poem := lipgloss.NewStyle().Width(width).Render(wrapStyledWords(styled, width))

	lines := []string{title, "", poem, "", m.input.View(), "", m.renderFooter()}
	if status := m.renderStatus(); status != "" {
		lines = append(lines, status)
	}
	lines = append(lines, footerStyle.Render(helpLine))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

const helpLine = "space/enter: submit word  ctrl+s: finish  ctrl+r: restart  tab: next poem  ctrl+o: results  ctrl+c: quit"

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	width := int(float64(m.width) * 0.70)
	if width < 1 {
		width = 1
	}
	return width
}

func (m *Model) snapshot() stats.Snapshot {
	if m.final != nil {
		return *m.final
	}
	return stats.Compute(m.session, m.now)
}

func (m *Model) renderFooter() string {
	snap := m.snapshot()
	segments := []string{
		fmt.Sprintf("WPM %d", snap.WPM),
		fmt.Sprintf("Accuracy %d%%", snap.Accuracy),
		fmt.Sprintf("Mistakes %d", snap.Mistakes),
		fmt.Sprintf("Time %ds", snap.ElapsedSeconds),
		fmt.Sprintf("Word %d/%d", m.session.Cursor(), m.session.Len()),
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// startPoem replaces the active session. Any running timer or pending
// delivery of the previous session becomes stale.
func (m *Model) startPoem(poem model.Poem) {
	m.gen++
	m.ticking = false
	m.final = nil
	m.now = m.clock()
	m.poem = poem
	words := poems.Tokenize(poem.Text)
	m.session.Start(words)
	m.input.CharLimit = inputLimit(words)
	m.input.Reset()
	m.input.Focus()
	if m.session.Len() == 0 {
		m.setStatus(fmt.Sprintf("Poem %q has no words.", poem.Key), true)
		return
	}
	m.setStatus("", false)
}

func inputLimit(words []string) int {
	longest := 0
	for _, w := range words {
		longest = max(longest, utf8.RuneCountInString(w))
	}
	return longest + inputSlack
}

func (m *Model) switchPoem(delta int) {
	key := m.catalogue.Next(m.poem.Key, delta)
	poem, ok := m.catalogue.Get(key)
	if !ok {
		return
	}
	m.startPoem(poem)
}

func (m *Model) submitWord() tea.Cmd {
	if m.session.Finished() {
		m.input.Reset()
		return nil
	}
	typed := m.input.Value()
	m.input.Reset()
	wasStarted := m.session.State() != session.NotStarted
	outcome := m.session.SubmitWord(typed)
	if !outcome.Accepted {
		return nil
	}
	m.now = m.clock()
	if m.statusErr {
		m.setStatus("", false)
	}
	if outcome.Completed {
		return m.complete(false)
	}
	if !wasStarted {
		m.ticking = true
		return m.tick()
	}
	return nil
}

func (m *Model) finishEarly() tea.Cmd {
	if m.session.Finished() {
		return m.openResults()
	}
	done, err := m.session.FinishEarly()
	if err != nil {
		if errors.Is(err, session.ErrNothingAttempted) {
			m.setStatus(capitalize(err.Error())+".", true)
			return nil
		}
		m.setStatus(err.Error(), true)
		return nil
	}
	if !done {
		return nil
	}
	return m.complete(true)
}

// complete runs once per session, right after it transitions to finished.
func (m *Model) complete(openResults bool) tea.Cmd {
	m.ticking = false
	m.now = m.clock()
	snap := stats.Compute(m.session, m.now)
	m.final = &snap
	m.input.Blur()
	if m.session.AttemptedCount() == 0 {
		if openResults {
			return m.openResults()
		}
		return nil
	}
	result := stats.BuildResult(m.poem.Title, m.session, m.now)
	m.setStatus(fmt.Sprintf("Finished: %d WPM, %d%% accuracy. Saving result...", result.WPM, result.Accuracy), false)
	return deliver(m.backend, result, m.gen, openResults)
}

func deliver(backend Backend, result model.SessionResult, gen uint64, openResults bool) tea.Cmd {
	return func() tea.Msg {
		err := backend.SubmitSession(context.Background(), result)
		return deliveredMsg{gen: gen, err: err, openResults: openResults}
	}
}

func (m *Model) handleDelivered(msg deliveredMsg) tea.Cmd {
	if msg.err != nil {
		warnf("failed to submit session: %v", msg.err)
	}
	if msg.gen != m.gen {
		return nil
	}
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Result not saved: %v", msg.err), true)
	} else {
		m.setStatus("Result saved. ctrl+r to go again, ctrl+o for results.", false)
	}
	if msg.openResults {
		return m.openResults()
	}
	return nil
}

func (m *Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.gen || !m.ticking {
		return nil
	}
	m.now = msg.at
	m.session.Tick(msg.at)
	return m.tick()
}

func (m *Model) openResults() tea.Cmd {
	m.input.Blur()
	m.results = resultsui.NewModel(m.backend, m.config.PageSize, resultsui.Embedded())
	if m.width > 0 && m.height > 0 {
		m.results.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	return m.results.Init()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func warnf(format string, args ...any) {
	log.Printf(format, args...)
}
