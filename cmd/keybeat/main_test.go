package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/keybeat/internal/config"
	"github.com/verte-zerg/keybeat/internal/model"
)

type staticFetcher struct {
	page model.ResultsPage
}

func (f staticFetcher) ListSessions(_ context.Context, page, _ int) (model.ResultsPage, error) {
	out := f.page
	out.Page = page
	return out, nil
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{PoemKey: "road", APIURL: "http://localhost:8000", PageSize: 10}
	if err := validateConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := ok
	bad.PageSize = 0
	if err := validateConfig(bad); err == nil || !strings.Contains(err.Error(), "--page-size") {
		t.Fatalf("expected page size error, got %v", err)
	}
	bad = ok
	bad.PoemKey = ""
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected poem error")
	}
}

func TestValidateServerConfig(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := model.ServerConfig{Addr: ":8000", DBDriver: "sqlite"}
	if err := validateServerConfig(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN != config.DefaultDBPath() {
		t.Fatalf("expected default db path, got %q", cfg.DSN)
	}
	pg := model.ServerConfig{Addr: ":8000", DBDriver: "postgres"}
	if err := validateServerConfig(&pg); err == nil {
		t.Fatalf("expected dsn error for postgres")
	}
	other := model.ServerConfig{Addr: ":8000", DBDriver: "oracle", DSN: "x"}
	if err := validateServerConfig(&other); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Practice.Poem != nil || cfg.Server.Addr != nil {
		t.Fatalf("expected all values commented out")
	}
}

func TestPrintResults(t *testing.T) {
	fetcher := staticFetcher{page: model.ResultsPage{
		Items: []model.SessionResult{
			{Poem: "Dreams", WPM: 40, Accuracy: 95, Mistakes: 1, DurationSec: 20},
			{Poem: "Hope", WPM: 30, Accuracy: 90, Mistakes: 2, DurationSec: 35},
		},
		TotalPages: 4,
	}}
	var buf bytes.Buffer
	if err := printResults(context.Background(), &buf, fetcher, 2, 10, 0); err != nil {
		t.Fatalf("print results: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"Results (page 2 of 4)", "Dreams", "Hope", "Best WPM: 40", "Avg Accuracy: 92.5%", "History", "Legend: WPM (solid)  Accuracy (dashed)"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("output missing %q:\n%s", needle, out)
		}
	}
}

func TestPrintResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printResults(context.Background(), &buf, staticFetcher{page: model.ResultsPage{TotalPages: 1}}, 1, 10, 0); err != nil {
		t.Fatalf("print results: %v", err)
	}
	if strings.Count(buf.String(), "No sessions found.") != 1 {
		t.Fatalf("expected a single empty notice:\n%s", buf.String())
	}
}
