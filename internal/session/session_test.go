package session

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func checkInvariants(t *testing.T, s *Session) {
	t.Helper()
	incorrect := 0
	for i, r := range s.Results() {
		if (r != Unattempted) != (i < s.Cursor()) {
			t.Fatalf("result %d is %v with cursor %d", i, r, s.Cursor())
		}
		if r == Incorrect {
			incorrect++
		}
	}
	if incorrect != s.MistakeCount() {
		t.Fatalf("mistakes %d, incorrect results %d", s.MistakeCount(), incorrect)
	}
}

func TestNewSessionInitialState(t *testing.T) {
	s := New([]string{"a", "b"}, nil)
	if s.State() != NotStarted {
		t.Fatalf("expected not started, got %v", s.State())
	}
	if s.Cursor() != 0 || s.MistakeCount() != 0 || s.Finished() {
		t.Fatalf("unexpected initial state")
	}
	if _, ok := s.StartedAt(); ok {
		t.Fatalf("expected no start time")
	}
	checkInvariants(t, s)
}

func TestSubmitCorrectWord(t *testing.T) {
	clock := newFakeClock()
	s := New([]string{"Two", "roads"}, clock.Now)
	out := s.SubmitWord("  Two ")
	if !out.Accepted || !out.Correct || out.Completed {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if s.Cursor() != 1 || s.MistakeCount() != 0 {
		t.Fatalf("expected cursor 1 and no mistakes, got %d/%d", s.Cursor(), s.MistakeCount())
	}
	started, ok := s.StartedAt()
	if !ok || !started.Equal(clock.now) {
		t.Fatalf("expected start time %v, got %v", clock.now, started)
	}
	if s.State() != InProgress {
		t.Fatalf("expected in progress, got %v", s.State())
	}
	checkInvariants(t, s)
}

func TestSubmitIncorrectWord(t *testing.T) {
	s := New([]string{"Two", "roads"}, nil)
	out := s.SubmitWord("two")
	if !out.Accepted || out.Correct {
		t.Fatalf("expected case-sensitive mismatch, got %+v", out)
	}
	if s.Cursor() != 1 || s.MistakeCount() != 1 {
		t.Fatalf("expected cursor 1 and one mistake, got %d/%d", s.Cursor(), s.MistakeCount())
	}
	if s.Results()[0] != Incorrect {
		t.Fatalf("expected incorrect result")
	}
	checkInvariants(t, s)
}

func TestSubmitPunctuationIsExact(t *testing.T) {
	s := New([]string{"wood,"}, nil)
	if out := s.SubmitWord("wood"); out.Correct {
		t.Fatalf("expected missing punctuation to be incorrect")
	}
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	s := New([]string{"a", "b"}, nil)
	for _, typed := range []string{"", "   ", "\t\n"} {
		if out := s.SubmitWord(typed); out.Accepted {
			t.Fatalf("expected %q to be ignored", typed)
		}
	}
	if s.Cursor() != 0 || s.MistakeCount() != 0 || s.State() != NotStarted {
		t.Fatalf("empty input must not change state")
	}
	checkInvariants(t, s)
}

func TestCompletesAfterLastWord(t *testing.T) {
	words := []string{"one", "two", "three", "four", "five"}
	s := New(words, nil)
	typed := []string{"one", "xx", "three", "yy", "five"}
	completions := 0
	for i, w := range typed {
		out := s.SubmitWord(w)
		if out.Completed {
			completions++
			if i != len(typed)-1 {
				t.Fatalf("completed early at %d", i)
			}
		}
		checkInvariants(t, s)
	}
	if completions != 1 {
		t.Fatalf("expected exactly one completion, got %d", completions)
	}
	if !s.Finished() || s.State() != Finished {
		t.Fatalf("expected finished session")
	}
	if s.MistakeCount() != 2 || s.CorrectCount() != 3 || s.AttemptedCount() != 5 {
		t.Fatalf("unexpected counts: mistakes=%d correct=%d attempted=%d", s.MistakeCount(), s.CorrectCount(), s.AttemptedCount())
	}
}

func TestSubmitAfterFinishIsNoop(t *testing.T) {
	s := New([]string{"a"}, nil)
	s.SubmitWord("a")
	if out := s.SubmitWord("a"); out.Accepted {
		t.Fatalf("expected no-op after finish")
	}
	if s.Cursor() != 1 {
		t.Fatalf("cursor moved after finish")
	}
}

func TestForceFinishIdempotent(t *testing.T) {
	s := New([]string{"a", "b", "c"}, nil)
	s.SubmitWord("a")
	if !s.ForceFinish() {
		t.Fatalf("expected first force finish to transition")
	}
	if s.ForceFinish() {
		t.Fatalf("expected second force finish to be a no-op")
	}
	if s.Cursor() != 1 || s.State() != Finished {
		t.Fatalf("unexpected state after force finish")
	}
	if out := s.SubmitWord("b"); out.Accepted {
		t.Fatalf("expected submission after finish to be ignored")
	}
	checkInvariants(t, s)
}

func TestFinishEarlyRequiresAttempt(t *testing.T) {
	s := New([]string{"a", "b"}, nil)
	ok, err := s.FinishEarly()
	if !errors.Is(err, ErrNothingAttempted) || ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Finished() {
		t.Fatalf("rejected submission must not finish")
	}
	s.SubmitWord("a")
	ok, err = s.FinishEarly()
	if err != nil || !ok {
		t.Fatalf("expected early finish, got %v/%v", ok, err)
	}
	ok, err = s.FinishEarly()
	if err != nil || ok {
		t.Fatalf("expected repeated finish to be a no-op, got %v/%v", ok, err)
	}
}

func TestTickUpdatesElapsedWhileActive(t *testing.T) {
	clock := newFakeClock()
	s := New([]string{"a", "b"}, clock.Now)
	s.Tick(clock.now.Add(5 * time.Second))
	if s.ElapsedSeconds() != 0 {
		t.Fatalf("tick before start must not count")
	}
	s.SubmitWord("a")
	s.Tick(clock.now.Add(2500 * time.Millisecond))
	if s.ElapsedSeconds() != 2 {
		t.Fatalf("expected 2s, got %d", s.ElapsedSeconds())
	}
	clock.Advance(4 * time.Second)
	s.SubmitWord("b")
	if s.ElapsedSeconds() != 4 {
		t.Fatalf("expected elapsed fixed at completion, got %d", s.ElapsedSeconds())
	}
	s.Tick(clock.now.Add(time.Minute))
	if s.ElapsedSeconds() != 4 {
		t.Fatalf("tick after finish must not change elapsed, got %d", s.ElapsedSeconds())
	}
}

func TestStartResets(t *testing.T) {
	s := New([]string{"a", "b"}, nil)
	s.SubmitWord("x")
	s.Start([]string{"c"})
	if s.Cursor() != 0 || s.MistakeCount() != 0 || s.State() != NotStarted || s.Len() != 1 {
		t.Fatalf("expected fresh session after start")
	}
	checkInvariants(t, s)
}

func TestZeroWordSession(t *testing.T) {
	s := New([]string{}, nil)
	if out := s.SubmitWord("anything"); out.Accepted {
		t.Fatalf("expected no-op on empty poem")
	}
	if _, err := s.FinishEarly(); !errors.Is(err, ErrNothingAttempted) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Finished() {
		t.Fatalf("empty session must not finish on its own")
	}
}

func TestWordsAreCopied(t *testing.T) {
	words := []string{"a"}
	s := New(words, nil)
	words[0] = "b"
	if s.Words()[0] != "a" {
		t.Fatalf("session must own its words")
	}
}
