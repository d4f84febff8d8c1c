package reader

// Position is where a reader is: a page, a panel within it, and the page's
// neighbours.
type Position struct {
	Page       int
	Panel      int
	PanelCount int
	PrevPage   *int
	NextPage   *int
}

// Action is a panel-level navigation request.
type Action int

const (
	ActionNextPanel Action = iota
	ActionPrevPanel
)

// Target is the outcome of planning an action from a position.
type Target struct {
	// Moved is false when the action is a no-op at this position.
	Moved bool
	// Page is the page to show. CrossPage is true when it differs from the
	// starting page and therefore needs a fetch.
	Page      int
	CrossPage bool
	// Panel is the panel to show; when LastPanel is set the panel index is
	// only known once the new page is resolved.
	Panel     int
	LastPanel bool
}

// Plan applies the panel navigation rules: step within the page, continue
// onto the neighbouring page at its first (forward) or last (backward)
// panel, and stop at either end of the catalog.
func Plan(pos Position, a Action) Target {
	stay := Target{Page: pos.Page, Panel: pos.Panel}
	switch a {
	case ActionNextPanel:
		if pos.Panel < pos.PanelCount-1 {
			return Target{Moved: true, Page: pos.Page, Panel: pos.Panel + 1}
		}
		if pos.NextPage != nil {
			return Target{Moved: true, Page: *pos.NextPage, CrossPage: true, Panel: 0}
		}
	case ActionPrevPanel:
		if pos.Panel > 0 {
			return Target{Moved: true, Page: pos.Page, Panel: pos.Panel - 1}
		}
		if pos.PrevPage != nil {
			return Target{Moved: true, Page: *pos.PrevPage, CrossPage: true, LastPanel: true}
		}
	}
	return stay
}

// ClampPanel limits i to [0, count-1]. It returns 0 when count is zero.
func ClampPanel(i, count int) int {
	if i >= count {
		i = count - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
