package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#F5C542")
	muted   = lipgloss.Color("#6B7280")
	danger  = lipgloss.Color("#E53935")
	paper   = lipgloss.Color("#F5E6B3")
	ink     = lipgloss.Color("#1F2933")
	balloon = lipgloss.Color("#FFFFFF")
)

// Styles groups the lipgloss styles used by the reader view.
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Panel     lipgloss.Style
	Image     lipgloss.Style
	Narration lipgloss.Style
	Dialogue  lipgloss.Style
	Speaker   lipgloss.Style
	Dot       lipgloss.Style
	DotActive lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Spinner   lipgloss.Style
}

// DefaultStyles returns the reader's default look.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Foreground(muted),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Image:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		Narration: lipgloss.NewStyle().Background(paper).Foreground(ink).Padding(0, 1),
		Dialogue:  lipgloss.NewStyle().Background(balloon).Foreground(ink).Padding(0, 1),
		Speaker:   lipgloss.NewStyle().Bold(true),
		Dot:       lipgloss.NewStyle().Foreground(muted),
		DotActive: lipgloss.NewStyle().Foreground(accent),
		Error:     lipgloss.NewStyle().Foreground(danger).Bold(true),
		Help:      lipgloss.NewStyle().Foreground(muted),
		Spinner:   lipgloss.NewStyle().Foreground(accent),
	}
}
