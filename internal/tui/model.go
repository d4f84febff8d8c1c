// Package tui is the terminal shell for the comic reader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/catalog"
	"github.com/galatea-comics/galatea/internal/logging"
	"github.com/galatea-comics/galatea/internal/reader"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	basePanelSize = 56
)

// changedMsg reports that the controller moved to a new state.
type changedMsg struct{}

// Options configures the terminal reader.
type Options struct {
	// MarkdownStyle is a glamour style name ("dark", "light", "notty").
	MarkdownStyle string
	Styles        *Styles
	Logger        *zap.Logger
}

// Model is the bubbletea model for one reader session.
type Model struct {
	ctrl     *reader.Controller
	snap     reader.Snapshot
	display  reader.Display
	spinner  spinner.Model
	styles   Styles
	mdStyle  string
	renderer *glamour.TermRenderer
	log      *zap.Logger
	changed  <-chan struct{}

	width  int
	height int
}

// New creates a model driving ctrl. The caller issues the first Request.
func New(ctrl *reader.Controller, opts Options) Model {
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "dark"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	changed := ctrl.Changed()
	m := Model{
		ctrl:    ctrl,
		changed: changed,
		snap:    ctrl.Snapshot(),
		display: reader.NewDisplay(),
		spinner: sp,
		styles:  styles,
		mdStyle: opts.MarkdownStyle,
		log:     logging.OrNop(opts.Logger),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.renderer = m.newRenderer()
	return m
}

func (m Model) newRenderer() *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.mdStyle),
		glamour.WithWordWrap(m.panelWidth()-4),
	)
	if err != nil {
		m.log.Warn("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	return r
}

// waitForChange blocks until ch is closed. Changed is read before the
// snapshot so no transition can slip between them.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.changed))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.changed = m.ctrl.Changed()
		m.snap = m.ctrl.Snapshot()
		return m, waitForChange(m.changed)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.renderer = m.newRenderer()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.display.Fullscreen {
			m.display.ToggleFullscreen()
		}
		return m, nil
	}

	b, ok := reader.Lookup(key)
	if !ok {
		return m, nil
	}
	zoom := m.display.Zoom
	reader.Apply(m.ctrl, &m.display, b)
	if m.display.Zoom != zoom {
		m.renderer = m.newRenderer()
	}
	m.snap = m.ctrl.Snapshot()
	return m, nil
}

// Snapshot returns the navigation state the model last rendered.
func (m Model) Snapshot() reader.Snapshot { return m.snap }

// Display returns the current display settings.
func (m Model) Display() reader.Display { return m.display }

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.snap.Status {
	case reader.StatusReady:
		body = m.readyView()
	case reader.StatusError:
		body = m.errorView()
	default:
		body = m.loadingView()
	}
	if m.display.Fullscreen {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), "", body, "", m.helpView())
}

func (m Model) headerView() string {
	s := m.snap
	if s.Status != reader.StatusReady {
		return m.styles.Title.Render("Galatea")
	}
	return m.styles.Title.Render(s.Page.Title) + "  " +
		m.styles.Header.Render(fmt.Sprintf("page %d of %d · zoom %d%%", s.RequestedPage, s.TotalPages, m.display.ZoomPercent()))
}

func (m Model) loadingView() string {
	if m.snap.RequestedPage == 0 {
		return m.spinner.View() + " Loading…"
	}
	return fmt.Sprintf("%s Loading page %d…", m.spinner.View(), m.snap.RequestedPage)
}

func (m Model) errorView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Error.Render(m.snap.ErrorMessage),
		"",
		m.styles.Help.Render("r try again · home return to start"),
	)
}

func (m Model) readyView() string {
	p, _ := m.snap.Panel()
	return lipgloss.JoinVertical(lipgloss.Center,
		m.renderPanel(p),
		m.dotsView(),
	)
}

func (m Model) dotsView() string {
	dots := make([]string, m.snap.PanelCount)
	for i := range dots {
		if i == m.snap.PanelIndex {
			dots[i] = m.styles.DotActive.Render("●")
		} else {
			dots[i] = m.styles.Dot.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

func (m Model) helpView() string {
	return m.styles.Help.Render("←/→ panels · 1-9 jump · f fullscreen · +/- zoom · home start · q quit")
}

// panelWidth scales the panel box with zoom, bounded by the terminal.
func (m Model) panelWidth() int {
	w := int(float64(basePanelSize) * m.display.Zoom)
	if limit := m.width - 2; w > limit {
		w = limit
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderPanel draws one panel's layers. A panel that fails to render is
// replaced by a placeholder.
func (m Model) renderPanel(p catalog.Panel) (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("panel render panicked", zap.Int("page", m.snap.RequestedPage), zap.Int("panel", m.snap.PanelIndex), zap.Any("panic", r))
			out = m.styles.Panel.Width(m.panelWidth()).Render(m.styles.Error.Render("This panel could not be displayed."))
		}
	}()

	inner := m.panelWidth() - 4
	var lines []string
	for _, l := range p.Layers() {
		switch l.Kind {
		case catalog.LayerBackground:
			// Terminals have no backdrop; the border carries the frame.
		case catalog.LayerImage:
			lines = append(lines, m.styles.Image.Render("[image "+l.Value+"]"))
		case catalog.LayerContent:
			lines = append(lines, m.markdown(l.Value))
		case catalog.LayerNarration:
			lines = append(lines, m.styles.Narration.Width(inner).Render(l.Value))
		case catalog.LayerDialogue:
			text := l.Value
			if l.Speaker != "" {
				text = m.styles.Speaker.Render(l.Speaker+":") + " " + text
			}
			lines = append(lines, m.styles.Dialogue.Render(text))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return m.styles.Panel.Width(m.panelWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) markdown(src string) string {
	if m.renderer == nil {
		return src
	}
	out, err := m.renderer.Render(src)
	if err != nil {
		m.log.Warn("markdown render failed", zap.Error(err))
		return src
	}
	return strings.Trim(out, "\n")
}

// Run starts the terminal reader on page and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, ctrl *reader.Controller, page string, opts Options) error {
	ctrl.RequestRaw(page)
	p := tea.NewProgram(New(ctrl, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running reader: %w", err)
	}
	return nil
}
