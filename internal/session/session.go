// Package session implements the typing session state machine.
package session

import (
	"errors"
	"strings"
	"time"
)

// ErrNothingAttempted rejects an early submission before any word was typed.
var ErrNothingAttempted = errors.New("type at least one word before submitting")

// State is the lifecycle position of a session.
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// WordResult is the outcome recorded for one target word.
type WordResult int

const (
	Unattempted WordResult = iota
	Correct
	Incorrect
)

// Clock returns the current time.
type Clock func() time.Time

// Outcome describes the effect of a single word submission.
type Outcome struct {
	Accepted  bool
	Correct   bool
	Completed bool
}

// Session tracks one attempt at typing a word sequence.
//
// results[i] is Unattempted exactly for i >= cursor, and mistakes always
// equals the number of Incorrect entries.
type Session struct {
	clock Clock

	words     []string
	results   []WordResult
	cursor    int
	mistakes  int
	startedAt time.Time
	started   bool
	elapsed   int
	finished  bool
}

// New returns a session over words. A nil clock means time.Now.
func New(words []string, clock Clock) *Session {
	if clock == nil {
		clock = time.Now
	}
	s := &Session{clock: clock}
	s.Start(words)
	return s
}

// Start discards all progress and begins again over words.
func (s *Session) Start(words []string) {
	s.words = append([]string(nil), words...)
	s.results = make([]WordResult, len(words))
	s.cursor = 0
	s.mistakes = 0
	s.startedAt = time.Time{}
	s.started = false
	s.elapsed = 0
	s.finished = false
}

// SubmitWord checks typed against the word under the cursor and advances.
func (s *Session) SubmitWord(typed string) Outcome {
	typed = strings.TrimSpace(typed)
	if s.finished || typed == "" || s.cursor >= len(s.words) {
		return Outcome{}
	}
	if !s.started {
		s.started = true
		s.startedAt = s.clock()
	}
	correct := typed == s.words[s.cursor]
	if correct {
		s.results[s.cursor] = Correct
	} else {
		s.results[s.cursor] = Incorrect
		s.mistakes++
	}
	s.cursor++
	out := Outcome{Accepted: true, Correct: correct}
	if s.cursor == len(s.words) {
		out.Completed = s.finish()
	}
	return out
}

// ForceFinish ends the session regardless of the cursor. It reports whether
// this call performed the transition.
func (s *Session) ForceFinish() bool {
	return s.finish()
}

// FinishEarly ends the session on explicit request. At least one word must
// have been attempted.
func (s *Session) FinishEarly() (bool, error) {
	if s.finished {
		return false, nil
	}
	if s.AttemptedCount() == 0 {
		return false, ErrNothingAttempted
	}
	return s.finish(), nil
}

func (s *Session) finish() bool {
	if s.finished {
		return false
	}
	s.finished = true
	if s.started {
		s.elapsed = elapsedSeconds(s.startedAt, s.clock())
	}
	return true
}

// Tick refreshes the elapsed time of an active session.
func (s *Session) Tick(now time.Time) {
	if s.State() != InProgress {
		return
	}
	s.elapsed = elapsedSeconds(s.startedAt, now)
}

func elapsedSeconds(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// State reports the lifecycle state.
func (s *Session) State() State {
	switch {
	case s.finished:
		return Finished
	case s.started:
		return InProgress
	default:
		return NotStarted
	}
}

// Words returns a copy of the target words.
func (s *Session) Words() []string {
	return append([]string(nil), s.words...)
}

// Results returns a copy of the per-word results.
func (s *Session) Results() []WordResult {
	return append([]WordResult(nil), s.results...)
}

// Len returns the number of target words.
func (s *Session) Len() int { return len(s.words) }

// Cursor returns the index of the next word to attempt.
func (s *Session) Cursor() int { return s.cursor }

// MistakeCount returns the number of incorrect submissions.
func (s *Session) MistakeCount() int { return s.mistakes }

// StartedAt returns the time of the first submission.
func (s *Session) StartedAt() (time.Time, bool) { return s.startedAt, s.started }

// ElapsedSeconds returns the last refreshed elapsed time.
func (s *Session) ElapsedSeconds() int { return s.elapsed }

// Finished reports whether the session has ended.
func (s *Session) Finished() bool { return s.finished }

// AttemptedCount counts words that are no longer unattempted.
func (s *Session) AttemptedCount() int {
	return s.cursor
}

// CorrectCount counts correctly typed words.
func (s *Session) CorrectCount() int {
	return s.cursor - s.mistakes
}
