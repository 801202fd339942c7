// Package api provides the HTTP client for the results backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/verte-zerg/keybeat/internal/model"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// ErrMalformedResponse reports a listing response of unexpected shape.
var ErrMalformedResponse = errors.New("malformed results response")

// Client talks to the results backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// SubmitSession posts a finished session. Any response counts as delivered;
// only transport failures are returned.
func (c *Client) SubmitSession(ctx context.Context, result model.SessionResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

type pageEnvelope struct {
	Items      *[]model.SessionResult `json:"items"`
	TotalPages *int                   `json:"total_pages"`
}

// ListSessions fetches one page of stored results.
func (c *Client) ListSessions(ctx context.Context, page, size int) (model.ResultsPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sessions?"+query.Encode(), http.NoBody)
	if err != nil {
		return model.ResultsPage{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return model.ResultsPage{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.ResultsPage{}, fmt.Errorf("%w: unexpected status %s", ErrMalformedResponse, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ResultsPage{}, fmt.Errorf("failed to read response: %w", err)
	}
	return DecodePage(data, page)
}

// DecodePage accepts either a bare array of records (a single page) or an
// envelope with items and total_pages.
func DecodePage(data []byte, page int) (model.ResultsPage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return model.ResultsPage{}, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if trimmed[0] == '[' {
		var items []model.SessionResult
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return model.ResultsPage{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return model.ResultsPage{Items: nonNil(items), Page: page, TotalPages: 1}, nil
	}
	var env pageEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return model.ResultsPage{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Items == nil {
		return model.ResultsPage{}, fmt.Errorf("%w: missing items", ErrMalformedResponse)
	}
	totalPages := 1
	if env.TotalPages != nil && *env.TotalPages > 0 {
		totalPages = *env.TotalPages
	}
	return model.ResultsPage{Items: nonNil(*env.Items), Page: page, TotalPages: totalPages}, nil
}

func nonNil(items []model.SessionResult) []model.SessionResult {
	if items == nil {
		return []model.SessionResult{}
	}
	return items
}
