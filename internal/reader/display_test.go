package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayZoomBounds(t *testing.T) {
	d := NewDisplay()
	assert.Equal(t, 100, d.ZoomPercent())

	for d.ZoomIn() {
	}
	assert.Equal(t, MaxZoom, d.Zoom)
	assert.Equal(t, 200, d.ZoomPercent())
	assert.False(t, d.ZoomIn())

	steps := 0
	for d.ZoomOut() {
		steps++
	}
	assert.Equal(t, MinZoom, d.Zoom)
	assert.Equal(t, 6, steps)
	assert.Equal(t, 50, d.ZoomPercent())
}

func TestDisplayFullscreen(t *testing.T) {
	d := NewDisplay()
	d.ToggleFullscreen()
	assert.True(t, d.Fullscreen)
	d.ToggleFullscreen()
	assert.False(t, d.Fullscreen)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		key  string
		want Binding
	}{
		{"right", Binding{Command: CmdNextPanel}},
		{"ArrowRight", Binding{Command: CmdNextPanel}},
		{"ArrowLeft", Binding{Command: CmdPrevPanel}},
		{"f", Binding{Command: CmdFullscreen}},
		{"+", Binding{Command: CmdZoomIn}},
		{"-", Binding{Command: CmdZoomOut}},
		{"r", Binding{Command: CmdRetry}},
		{"Home", Binding{Command: CmdFirstPage}},
		{"1", Binding{Command: CmdPanel, Panel: 0}},
		{"9", Binding{Command: CmdPanel, Panel: 8}},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.key)
		require.True(t, ok, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}

	for _, key := range []string{"0", "x", "ArrowUp", ""} {
		_, ok := Lookup(key)
		assert.False(t, ok, key)
	}
}

func TestApply(t *testing.T) {
	c := newTestController(t, newGatedFetcher(testCatalog(3, fourPanels)))
	d := NewDisplay()
	c.Request(2)
	settle(t, c)

	apply := func(key string) {
		t.Helper()
		b, ok := Lookup(key)
		require.True(t, ok)
		require.True(t, Apply(c, &d, b))
	}

	apply("right")
	assert.Equal(t, 1, c.Snapshot().PanelIndex)
	apply("4")
	assert.Equal(t, 3, c.Snapshot().PanelIndex)
	apply("left")
	assert.Equal(t, 2, c.Snapshot().PanelIndex)

	apply("f")
	apply("+")
	assert.True(t, d.Fullscreen)
	assert.Equal(t, 1.25, d.Zoom)
	assert.Equal(t, 2, c.Snapshot().PanelIndex, "display commands leave navigation alone")

	apply("home")
	s := settle(t, c)
	assert.Equal(t, 1, s.RequestedPage)
	assert.Equal(t, 0, s.PanelIndex)

	assert.False(t, Apply(c, &d, Binding{Command: "bogus"}))
}
