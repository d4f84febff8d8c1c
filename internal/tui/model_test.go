package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galatea-comics/galatea/internal/catalog"
	"github.com/galatea-comics/galatea/internal/comic"
	"github.com/galatea-comics/galatea/internal/reader"
)

func testController(t *testing.T) *reader.Controller {
	t.Helper()
	pages := make([]catalog.Page, 2)
	for i := range pages {
		pages[i] = catalog.Page{
			Title: fmt.Sprintf("Chapter %d", i+1),
			Panels: []catalog.Panel{
				{Image: fmt.Sprintf("/panels/%d-1.png", i+1), Narration: "Dawn breaks."},
				{Content: "A *quiet* workshop", Dialogue: "Who goes there?", Speaker: "Pygmalion"},
				{Narration: "Silence."},
			},
		}
	}
	ctrl := reader.New(comic.NewLocalFetcher(catalog.New(pages)))
	t.Cleanup(ctrl.Close)
	return ctrl
}

func settle(t *testing.T, ctrl *reader.Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ctrl.Await(ctx, reader.Settled)
	require.NoError(t, err)
}

func newModel(t *testing.T, ctrl *reader.Controller) Model {
	t.Helper()
	return New(ctrl, Options{MarkdownStyle: "notty"})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestLoadingView(t *testing.T) {
	ctrl := testController(t)
	m := newModel(t, ctrl)
	assert.Contains(t, m.View(), "Loading")
}

func TestChangedMsgRefreshesSnapshot(t *testing.T) {
	ctrl := testController(t)
	m := newModel(t, ctrl)
	ctrl.Request(1)
	settle(t, ctrl)

	m, cmd := update(t, m, changedMsg{})
	require.NotNil(t, cmd, "model keeps waiting for changes")
	assert.Equal(t, reader.StatusReady, m.Snapshot().Status)

	view := m.View()
	assert.Contains(t, view, "Chapter 1")
	assert.Contains(t, view, "page 1 of 2")
	assert.Contains(t, view, "[image /panels/1-1.png]")
	assert.Contains(t, view, "Dawn breaks.")
	assert.Contains(t, view, "●")
}

func TestWaitForChangeFires(t *testing.T) {
	ctrl := testController(t)
	cmd := waitForChange(ctrl.Changed())
	ctrl.Request(1)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		assert.IsType(t, changedMsg{}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("waitForChange did not fire")
	}
}

func TestInitWatchesFromConstruction(t *testing.T) {
	ctrl := testController(t)
	ctrl.RequestRaw("1")
	m := newModel(t, ctrl)
	settle(t, ctrl)

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	done := make(chan tea.Msg, 1)
	go func() { done <- batch[1]() }()
	select {
	case msg := <-done:
		assert.IsType(t, changedMsg{}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("Init missed a transition that happened after New")
	}

	m, _ = update(t, m, changedMsg{})
	assert.Equal(t, reader.StatusReady, m.Snapshot().Status)
	assert.Contains(t, m.View(), "Chapter 1")
}

func TestArrowKeysNavigate(t *testing.T) {
	ctrl := testController(t)
	ctrl.Request(1)
	settle(t, ctrl)
	m, _ := update(t, newModel(t, ctrl), changedMsg{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.Snapshot().PanelIndex)
	view := m.View()
	assert.Contains(t, view, "Pygmalion:")
	assert.Contains(t, view, "Who goes there?")
	assert.Contains(t, view, "quiet")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.Snapshot().PanelIndex)

	m, _ = update(t, m, runeKey('3'))
	assert.Equal(t, 2, m.Snapshot().PanelIndex)

	// Crossing onto the next page goes through loading.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.Snapshot().RequestedPage)
	settle(t, ctrl)
	m, _ = update(t, m, changedMsg{})
	assert.Equal(t, reader.StatusReady, m.Snapshot().Status)
	assert.Equal(t, 0, m.Snapshot().PanelIndex)
	assert.Contains(t, m.View(), "Chapter 2")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyHome})
	settle(t, ctrl)
	m, _ = update(t, m, changedMsg{})
	assert.Equal(t, 1, m.Snapshot().RequestedPage)
}

func TestDisplayKeys(t *testing.T) {
	ctrl := testController(t)
	ctrl.Request(1)
	settle(t, ctrl)
	m, _ := update(t, newModel(t, ctrl), changedMsg{})

	m, _ = update(t, m, runeKey('+'))
	assert.Equal(t, 1.25, m.Display().Zoom)
	assert.Contains(t, m.View(), "zoom 125%")

	m, _ = update(t, m, runeKey('-'))
	m, _ = update(t, m, runeKey('-'))
	assert.Equal(t, 0.75, m.Display().Zoom)

	m, _ = update(t, m, runeKey('f'))
	assert.True(t, m.Display().Fullscreen)
	assert.NotContains(t, m.View(), "q quit", "fullscreen hides chrome")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Display().Fullscreen)
	assert.Equal(t, 0, m.Snapshot().PanelIndex, "display keys never navigate")
}

func TestErrorViewAndRetry(t *testing.T) {
	ctrl := testController(t)
	ctrl.Request(7)
	settle(t, ctrl)
	m, _ := update(t, newModel(t, ctrl), changedMsg{})

	view := m.View()
	assert.Contains(t, view, "That page does not exist.")
	assert.Contains(t, view, "return to start")

	m, _ = update(t, m, runeKey('r'))
	assert.Equal(t, reader.StatusLoading, m.Snapshot().Status)
	settle(t, ctrl)
	m, _ = update(t, m, changedMsg{})
	assert.Equal(t, reader.StatusError, m.Snapshot().Status)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyHome})
	settle(t, ctrl)
	m, _ = update(t, m, changedMsg{})
	assert.Equal(t, reader.StatusReady, m.Snapshot().Status)
	assert.Equal(t, 1, m.Snapshot().RequestedPage)
}

func TestQuit(t *testing.T) {
	ctrl := testController(t)
	m := newModel(t, ctrl)

	_, cmd := update(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUnboundKeyIgnored(t *testing.T) {
	ctrl := testController(t)
	ctrl.Request(1)
	settle(t, ctrl)
	m, _ := update(t, newModel(t, ctrl), changedMsg{})

	before := m.Snapshot()
	m, cmd := update(t, m, runeKey('z'))
	assert.Nil(t, cmd)
	assert.Equal(t, before, m.Snapshot())
}

func TestWindowResizeBoundsPanel(t *testing.T) {
	ctrl := testController(t)
	m := newModel(t, ctrl)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Equal(t, 38, m.panelWidth())

	m.display.Zoom = reader.MaxZoom
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 50})
	assert.Equal(t, 112, m.panelWidth())
}
