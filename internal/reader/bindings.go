package reader

import "strings"

// Command is a shell-level intent produced by a key press or an affordance.
type Command string

const (
	CmdNextPanel  Command = "next"
	CmdPrevPanel  Command = "prev"
	CmdPanel      Command = "panel"
	CmdFullscreen Command = "fullscreen"
	CmdZoomIn     Command = "zoom_in"
	CmdZoomOut    Command = "zoom_out"
	CmdRetry      Command = "retry"
	CmdFirstPage  Command = "first"
)

// Binding is a resolved key press.
type Binding struct {
	Command Command
	// Panel is the 0-based target for CmdPanel.
	Panel int
}

// keys maps key names to commands. Both terminal (bubbletea) and browser
// (KeyboardEvent.key) spellings are accepted.
var keys = map[string]Command{
	"left":       CmdPrevPanel,
	"arrowleft":  CmdPrevPanel,
	"h":          CmdPrevPanel,
	"right":      CmdNextPanel,
	"arrowright": CmdNextPanel,
	"l":          CmdNextPanel,
	" ":          CmdNextPanel,
	"space":      CmdNextPanel,
	"f":          CmdFullscreen,
	"+":          CmdZoomIn,
	"=":          CmdZoomIn,
	"-":          CmdZoomOut,
	"r":          CmdRetry,
	"home":       CmdFirstPage,
}

// Lookup resolves a key name. Digits 1-9 jump to that panel of the current
// page.
func Lookup(key string) (Binding, bool) {
	k := strings.ToLower(key)
	if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
		return Binding{Command: CmdPanel, Panel: int(k[0] - '1')}, true
	}
	cmd, ok := keys[k]
	if !ok {
		return Binding{}, false
	}
	return Binding{Command: cmd}, true
}

// Apply dispatches b: navigation commands go to c, presentation commands to
// d. It reports whether the command was recognised.
func Apply(c *Controller, d *Display, b Binding) bool {
	switch b.Command {
	case CmdNextPanel:
		c.NextPanel()
	case CmdPrevPanel:
		c.PrevPanel()
	case CmdPanel:
		c.SetPanelIndex(b.Panel)
	case CmdRetry:
		c.Retry()
	case CmdFirstPage:
		c.Request(1)
	case CmdFullscreen:
		d.ToggleFullscreen()
	case CmdZoomIn:
		d.ZoomIn()
	case CmdZoomOut:
		d.ZoomOut()
	default:
		return false
	}
	return true
}
