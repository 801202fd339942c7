package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/verte-zerg/keybeat/internal/model"
)

type sessionCreate struct {
	Poem        *string `json:"poem"`
	WPM         *int    `json:"wpm"`
	Accuracy    *int    `json:"accuracy"`
	Mistakes    *int    `json:"mistakes"`
	DurationSec *int    `json:"duration_sec"`
}

type sessionsPage struct {
	Items      []model.StoredResult `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "KeyBeat Solace backend is running!"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body sessionCreate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	result, err := body.validate()
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	stored, err := s.store.InsertResult(r.Context(), result)
	if err != nil {
		log.Printf("[DB] insert session failed: %v\n", err)
		writeDetail(w, http.StatusInternalServerError, "failed to store session")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (b sessionCreate) validate() (model.SessionResult, error) {
	if b.Poem == nil || strings.TrimSpace(*b.Poem) == "" {
		return model.SessionResult{}, fmt.Errorf("poem is required")
	}
	ints := []struct {
		name  string
		value *int
	}{
		{"wpm", b.WPM},
		{"accuracy", b.Accuracy},
		{"mistakes", b.Mistakes},
		{"duration_sec", b.DurationSec},
	}
	for _, field := range ints {
		if field.value == nil {
			return model.SessionResult{}, fmt.Errorf("%s is required", field.name)
		}
		if *field.value < 0 {
			return model.SessionResult{}, fmt.Errorf("%s must be >= 0", field.name)
		}
	}
	if *b.Accuracy > 100 {
		return model.SessionResult{}, fmt.Errorf("accuracy must be <= 100")
	}
	return model.SessionResult{
		Poem:        *b.Poem,
		WPM:         *b.WPM,
		Accuracy:    *b.Accuracy,
		Mistakes:    *b.Mistakes,
		DurationSec: *b.DurationSec,
	}, nil
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	size := queryInt(r, "size", defaultPageSize)
	if size < 1 {
		size = defaultPageSize
	}

	ctx := r.Context()
	total, err := s.store.CountResults(ctx)
	if err != nil {
		log.Printf("[DB] count sessions failed: %v\n", err)
		writeDetail(w, http.StatusInternalServerError, "failed to load sessions")
		return
	}
	if total == 0 {
		writeJSON(w, http.StatusOK, sessionsPage{Items: []model.StoredResult{}, Page: page, PageSize: size, TotalPages: 1})
		return
	}

	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	if page > totalPages {
		page = totalPages
	}
	items, err := s.store.ListResults(ctx, (page-1)*size, size)
	if err != nil {
		log.Printf("[DB] list sessions failed: %v\n", err)
		writeDetail(w, http.StatusInternalServerError, "failed to load sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessionsPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] write response failed: %v\n", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
