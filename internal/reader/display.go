package reader

import "math"

const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	ZoomStep    = 0.25
	DefaultZoom = 1.0
)

// Display holds presentation-only settings. Nothing here feeds back into
// navigation state.
type Display struct {
	Fullscreen bool    `json:"fullscreen"`
	Zoom       float64 `json:"zoom"`
}

// NewDisplay returns the default display settings.
func NewDisplay() Display {
	return Display{Zoom: DefaultZoom}
}

// ToggleFullscreen flips fullscreen presentation.
func (d *Display) ToggleFullscreen() {
	d.Fullscreen = !d.Fullscreen
}

// CanZoomIn reports whether ZoomIn would change anything.
func (d Display) CanZoomIn() bool { return d.Zoom < MaxZoom }

// CanZoomOut reports whether ZoomOut would change anything.
func (d Display) CanZoomOut() bool { return d.Zoom > MinZoom }

// ZoomIn increases zoom by one step, up to MaxZoom.
func (d *Display) ZoomIn() bool {
	if !d.CanZoomIn() {
		return false
	}
	d.Zoom = math.Min(MaxZoom, d.Zoom+ZoomStep)
	return true
}

// ZoomOut decreases zoom by one step, down to MinZoom.
func (d *Display) ZoomOut() bool {
	if !d.CanZoomOut() {
		return false
	}
	d.Zoom = math.Max(MinZoom, d.Zoom-ZoomStep)
	return true
}

// ZoomPercent returns the zoom as a rounded percentage.
func (d Display) ZoomPercent() int {
	return int(math.Round(d.Zoom * 100))
}
