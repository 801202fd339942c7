// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	PoemKey  string
	APIURL   string
	PageSize int
	LogFile  string
}

// ServerConfig defines backend settings.
type ServerConfig struct {
	Addr     string
	DBDriver string
	DSN      string
}

// Poem is an immutable entry of the poem catalogue.
type Poem struct {
	Key   string
	Title string
	Text  string
}

// SessionResult captures a finished typing session.
type SessionResult struct {
	Poem        string `json:"poem"`
	WPM         int    `json:"wpm"`
	Accuracy    int    `json:"accuracy"`
	Mistakes    int    `json:"mistakes"`
	DurationSec int    `json:"duration_sec"`
}

// StoredResult is a SessionResult persisted by the backend.
type StoredResult struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"-"`
	SessionResult
}

// ResultsPage is one page of historical results.
type ResultsPage struct {
	Items      []SessionResult
	Page       int
	TotalPages int
}
