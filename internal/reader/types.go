package reader

import (
	"github.com/galatea-comics/galatea/internal/catalog"
)

// Status is the controller's navigation state.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Snapshot is an immutable view of navigation state that a shell can render
// without further I/O. Page, PanelIndex and the neighbour links are only
// meaningful when Status is StatusReady; ErrorMessage only when StatusError.
type Snapshot struct {
	Version       uint64        `json:"version"`
	Status        Status        `json:"status"`
	RequestedPage int           `json:"requestedPage"`
	Page          *catalog.Page `json:"page,omitempty"`
	PanelIndex    int           `json:"panelIndex"`
	PanelCount    int           `json:"panelCount"`
	TotalPages    int           `json:"totalPages,omitempty"`
	PrevPage      *int          `json:"prevPage"`
	NextPage      *int          `json:"nextPage"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`

	// Err is the underlying fetch error when Status is StatusError.
	Err error `json:"-"`
}

// Panel returns the current panel when the snapshot is ready.
func (s Snapshot) Panel() (catalog.Panel, bool) {
	if s.Status != StatusReady || s.Page == nil || s.PanelIndex < 0 || s.PanelIndex >= len(s.Page.Panels) {
		return catalog.Panel{}, false
	}
	return s.Page.Panels[s.PanelIndex], true
}

// Position returns the navigation position for Plan. ok is false unless the
// snapshot is ready.
func (s Snapshot) Position() (Position, bool) {
	if s.Status != StatusReady {
		return Position{}, false
	}
	return Position{
		Page:       s.RequestedPage,
		Panel:      s.PanelIndex,
		PanelCount: s.PanelCount,
		PrevPage:   s.PrevPage,
		NextPage:   s.NextPage,
	}, true
}
