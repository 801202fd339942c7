package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/keybeat/internal/model"
	"github.com/verte-zerg/keybeat/internal/session"
)

// minElapsedMinutes keeps WPM finite when stats are read right at the start.
const minElapsedMinutes = 1.0 / 60000.0

// Snapshot holds the live metrics of a session.
type Snapshot struct {
	WPM            int
	Accuracy       int
	Mistakes       int
	ElapsedSeconds int
}

// Compute derives metrics from the session as of now. It never mutates s.
func Compute(s *session.Session, now time.Time) Snapshot {
	snap := Snapshot{Mistakes: s.MistakeCount()}
	startedAt, started := s.StartedAt()
	attempted := s.AttemptedCount()
	if !started || attempted == 0 {
		return snap
	}
	correct := s.CorrectCount()
	minutes := float64(now.Sub(startedAt).Milliseconds()) / 60000.0
	if minutes < minElapsedMinutes {
		minutes = minElapsedMinutes
	}
	snap.WPM = int(math.Round(float64(correct) / minutes))
	snap.Accuracy = int(math.Round(100 * float64(correct) / float64(attempted)))
	snap.ElapsedSeconds = s.ElapsedSeconds()
	return snap
}

// BuildResult snapshots a finished session for delivery.
func BuildResult(title string, s *session.Session, now time.Time) model.SessionResult {
	snap := Compute(s, now)
	return model.SessionResult{
		Poem:        title,
		WPM:         snap.WPM,
		Accuracy:    snap.Accuracy,
		Mistakes:    snap.Mistakes,
		DurationSec: s.ElapsedSeconds(),
	}
}
