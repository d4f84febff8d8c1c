// Package catalog holds the ordered, read-only collection of comic pages and
// the sources it can be loaded from.
package catalog

// Catalog is an immutable, ordered sequence of pages. Page numbers are
// 1-based; the valid range is [1, Len()]. A Catalog is safe for concurrent
// use once constructed.
type Catalog struct {
	pages []Page
}

// New builds a catalog from pages. The input is copied, so later changes to
// pages do not leak into the catalog.
func New(pages []Page) *Catalog {
	c := &Catalog{pages: make([]Page, len(pages))}
	for i, p := range pages {
		c.pages[i] = clonePage(p)
	}
	return c
}

// Len returns the number of pages.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.pages)
}

// Page returns a copy of page n (1-based).
func (c *Catalog) Page(n int) (Page, bool) {
	if n < 1 || n > c.Len() {
		return Page{}, false
	}
	return clonePage(c.pages[n-1]), true
}

// Pages returns a copy of every page in order.
func (c *Catalog) Pages() []Page {
	out := make([]Page, c.Len())
	for i := range out {
		out[i] = clonePage(c.pages[i])
	}
	return out
}

// Titles returns page titles in order.
func (c *Catalog) Titles() []string {
	titles := make([]string, c.Len())
	for i := range titles {
		titles[i] = c.pages[i].Title
	}
	return titles
}

// EmptyPages returns the 1-based numbers of pages that have no panels.
func (c *Catalog) EmptyPages() []int {
	var nums []int
	for i := 0; i < c.Len(); i++ {
		if len(c.pages[i].Panels) == 0 {
			nums = append(nums, i+1)
		}
	}
	return nums
}
