// Package results implements paginated browsing of stored session results.
package results

import (
	"context"

	"github.com/verte-zerg/keybeat/internal/model"
)

// DefaultPageSize is the number of results requested per page.
const DefaultPageSize = 10

// Fetcher loads one page of results from the backend.
type Fetcher interface {
	ListSessions(ctx context.Context, page, size int) (model.ResultsPage, error)
}

// Request identifies one page load.
type Request struct {
	Seq  uint64
	Page int
}

// Loaded is the outcome of a Request.
type Loaded struct {
	Request
	Result model.ResultsPage
	Err    error
}

// Pager holds the currently displayed page and navigation state.
type Pager struct {
	fetcher Fetcher
	size    int

	items       []model.SessionResult
	currentPage int
	totalPages  int

	issued  uint64
	applied uint64
}

// NewPager returns a pager on page 1 of 1 with no items.
func NewPager(fetcher Fetcher, size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{
		fetcher:     fetcher,
		size:        size,
		currentPage: 1,
		totalPages:  1,
	}
}

// LoadPage fetches page and displays it. On error the displayed state is kept.
func (p *Pager) LoadPage(ctx context.Context, page int) error {
	loaded := p.Fetch(ctx, p.Begin(page))
	if loaded.Err != nil {
		return loaded.Err
	}
	p.Apply(loaded)
	return nil
}

// Begin registers a new page load. Responses to earlier requests are
// dropped once this one is issued.
func (p *Pager) Begin(page int) Request {
	p.issued++
	return Request{Seq: p.issued, Page: page}
}

// Fetch performs req. It only reads immutable pager fields and may run
// outside the goroutine that owns the pager.
func (p *Pager) Fetch(ctx context.Context, req Request) Loaded {
	result, err := p.fetcher.ListSessions(ctx, req.Page, p.size)
	return Loaded{Request: req, Result: result, Err: err}
}

// Apply displays a successful, current response and reports whether it did.
func (p *Pager) Apply(l Loaded) bool {
	if l.Err != nil || l.Seq != p.issued || l.Seq <= p.applied {
		return false
	}
	p.applied = l.Seq
	p.items = append([]model.SessionResult(nil), l.Result.Items...)
	p.currentPage = l.Page
	p.totalPages = l.Result.TotalPages
	if p.totalPages < 1 {
		p.totalPages = 1
	}
	return true
}

// Items returns the displayed results.
func (p *Pager) Items() []model.SessionResult {
	return append([]model.SessionResult(nil), p.items...)
}

// CurrentPage returns the displayed page number.
func (p *Pager) CurrentPage() int { return p.currentPage }

// TotalPages returns the page count reported with the displayed page.
func (p *Pager) TotalPages() int { return p.totalPages }

// PageSize returns the number of results requested per page.
func (p *Pager) PageSize() int { return p.size }

// HasPrev reports whether a previous page exists.
func (p *Pager) HasPrev() bool { return p.currentPage > 1 }

// HasNext reports whether a next page exists.
func (p *Pager) HasNext() bool { return p.currentPage < p.totalPages }

// PrevPage returns the previous page number when navigation is enabled.
func (p *Pager) PrevPage() (int, bool) {
	if !p.HasPrev() {
		return p.currentPage, false
	}
	return p.currentPage - 1, true
}

// NextPage returns the next page number when navigation is enabled.
func (p *Pager) NextPage() (int, bool) {
	if !p.HasNext() {
		return p.currentPage, false
	}
	return p.currentPage + 1, true
}

// Page returns the displayed state as a ResultsPage.
func (p *Pager) Page() model.ResultsPage {
	return model.ResultsPage{Items: p.Items(), Page: p.currentPage, TotalPages: p.totalPages}
}
