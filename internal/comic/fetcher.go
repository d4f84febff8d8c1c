// Package comic resolves page numbers against a catalog and serves the
// result over HTTP.
package comic

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/galatea-comics/galatea/internal/catalog"
)

// Result is a resolved page plus its position in the catalog.
type Result struct {
	Page       catalog.Page `json:"page"`
	PageNumber int          `json:"pageNumber"`
	TotalPages int          `json:"totalPages"`
	PrevPage   *int         `json:"prevPage"`
	NextPage   *int         `json:"nextPage"`
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Page.Panels = append([]catalog.Panel(nil), r.Page.Panels...)
	if r.PrevPage != nil {
		v := *r.PrevPage
		out.PrevPage = &v
	}
	if r.NextPage != nil {
		v := *r.NextPage
		out.NextPage = &v
	}
	return &out
}

// Fetcher resolves a page number. Implementations may be local or remote;
// callers must treat every call as fallible and potentially slow.
type Fetcher interface {
	Fetch(ctx context.Context, pageNumber int) (*Result, error)
}

// Index summarises a catalog.
type Index struct {
	TotalPages int      `json:"totalPages"`
	Titles     []string `json:"titles"`
}

// Indexer is implemented by fetchers that can describe the whole catalog.
type Indexer interface {
	Index(ctx context.Context) (*Index, error)
}

// LocalFetcher resolves pages against an in-memory catalog. It has no side
// effects and is safe for concurrent use.
type LocalFetcher struct {
	catalog *catalog.Catalog
}

// NewLocalFetcher creates a fetcher over c.
func NewLocalFetcher(c *catalog.Catalog) *LocalFetcher {
	return &LocalFetcher{catalog: c}
}

// Fetch implements Fetcher.
func (f *LocalFetcher) Fetch(ctx context.Context, pageNumber int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Resolve(f.catalog, pageNumber)
}

// Index implements Indexer.
func (f *LocalFetcher) Index(ctx context.Context) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Index{TotalPages: f.catalog.Len(), Titles: f.catalog.Titles()}, nil
}

// Resolve looks up pageNumber in c and derives neighbour links.
func Resolve(c *catalog.Catalog, pageNumber int) (*Result, error) {
	total := c.Len()
	page, ok := c.Page(pageNumber)
	if !ok {
		return nil, fmt.Errorf("page %d of %d: %w", pageNumber, total, ErrNotFound)
	}

	res := &Result{Page: page, PageNumber: pageNumber, TotalPages: total}
	if prev := pageNumber - 1; prev >= 1 {
		res.PrevPage = &prev
	}
	if next := pageNumber + 1; next <= total {
		res.NextPage = &next
	}
	return res, nil
}

// ParsePageNumber converts untrusted route text into a page number. Anything
// that is not a positive base-10 integer is rejected with an error matching
// both ErrInvalidPageNumber and ErrNotFound.
func ParsePageNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("%q: %w: %w", s, ErrInvalidPageNumber, ErrNotFound)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d: %w: %w", n, ErrInvalidPageNumber, ErrNotFound)
	}
	return n, nil
}
