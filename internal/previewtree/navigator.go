package previewtree

import "strings"

// Options configures a Navigator.
type Options struct {
	Separator  string // group key separator, DefaultSeparator when empty
	LeavesOnly bool   // start in expanded (leaves-only) mode
}

// Navigator is the navigation facade consumed by the presentation layer.
//
// It owns the tree, the collapse state and the cursor. Every method runs to
// completion and leaves the navigator consistent, so callers never observe a
// half-applied operation. A Navigator is not safe for concurrent use.
type Navigator struct {
	sep        string
	count      int
	root       *Node
	collapsed  CollapseState
	leavesOnly bool
	filter     string
	routes     []VisibleRoute
	cursor     int
}

// New builds a navigator over previews with the cursor on the first row.
func New(previews []Preview, opts Options) *Navigator {
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	n := &Navigator{
		sep:        sep,
		count:      len(previews),
		root:       Build(previews, sep),
		collapsed:  CollapseState{},
		leavesOnly: opts.LeavesOnly,
		cursor:     None,
	}
	n.routes = n.flatten()
	n.cursor = clampIndex(0, len(n.routes))
	return n
}

func (n *Navigator) flatten() []VisibleRoute {
	return FilterRoutes(Flatten(n.root, n.collapsed, n.leavesOnly), n.filter)
}

// recompute rebuilds the visible rows and moves the cursor onto the row
// that best matches the previous selection.
func (n *Navigator) recompute() {
	prev := selectionAt(n.routes, n.cursor)
	n.routes = n.flatten()
	n.cursor = reconcile(n.routes, prev)
}

// SetPreviews replaces the input. Collapse flags of folders that still
// exist are kept; the cursor follows the previously selected node.
func (n *Navigator) SetPreviews(previews []Preview) {
	prev := selectionAt(n.routes, n.cursor)
	n.count = len(previews)
	n.root = Build(previews, n.sep)
	n.collapsed = n.collapsed.Prune(n.root)
	n.routes = n.flatten()
	n.cursor = reconcile(n.routes, prev)
}

// SetLeavesOnly switches between compact (false) and expanded (true) mode.
func (n *Navigator) SetLeavesOnly(leavesOnly bool) {
	if n.leavesOnly == leavesOnly {
		return
	}
	n.leavesOnly = leavesOnly
	n.recompute()
}

// LeavesOnly reports whether the navigator is in expanded mode.
func (n *Navigator) LeavesOnly() bool { return n.leavesOnly }

// SetFilter narrows the rows to leaves fuzzy-matching query.
func (n *Navigator) SetFilter(query string) {
	if n.filter == query {
		return
	}
	n.filter = query
	n.recompute()
}

// Filter returns the active filter query.
func (n *Navigator) Filter() string { return n.filter }

// Separator returns the group key separator.
func (n *Navigator) Separator() string { return n.sep }

// Root returns the current tree. Callers must not modify it.
func (n *Navigator) Root() *Node { return n.root }

// PreviewCount is the number of input entries. Zero means nothing has been
// discovered yet, regardless of group names.
func (n *Navigator) PreviewCount() int { return n.count }

// Routes returns a copy of the visible rows.
func (n *Navigator) Routes() []VisibleRoute {
	routes := make([]VisibleRoute, len(n.routes))
	copy(routes, n.routes)
	return routes
}

// Route returns the row at index i.
func (n *Navigator) Route(i int) (VisibleRoute, bool) {
	if i < 0 || i >= len(n.routes) {
		return VisibleRoute{}, false
	}
	return n.routes[i], true
}

// Len returns the number of visible rows.
func (n *Navigator) Len() int { return len(n.routes) }

// Empty reports whether there are no visible rows.
func (n *Navigator) Empty() bool { return len(n.routes) == 0 }

// Cursor returns the selected row index, or None.
func (n *Navigator) Cursor() int { return n.cursor }

// Selected returns the row under the cursor.
func (n *Navigator) Selected() (VisibleRoute, bool) {
	return n.Route(n.cursor)
}

// Collapsed returns a copy of the collapse state.
func (n *Navigator) Collapsed() CollapseState {
	state := make(CollapseState, len(n.collapsed))
	for k, v := range n.collapsed {
		state[k] = v
	}
	return state
}

// Up moves the cursor one row up, stopping at the first row.
func (n *Navigator) Up() {
	if n.cursor == None {
		return
	}
	n.cursor = clampIndex(n.cursor-1, len(n.routes))
}

// Down moves the cursor one row down, stopping at the last row.
func (n *Navigator) Down() {
	if n.cursor == None {
		return
	}
	n.cursor = clampIndex(n.cursor+1, len(n.routes))
}

// Top moves the cursor to the first row.
func (n *Navigator) Top() {
	n.cursor = clampIndex(0, len(n.routes))
}

// Bottom moves the cursor to the last row.
func (n *Navigator) Bottom() {
	n.cursor = clampIndex(len(n.routes)-1, len(n.routes))
}

// Left collapses an expanded folder under the cursor, or moves the cursor
// to the parent folder of a leaf or collapsed folder. Top-level rows have no
// parent to move to. No-op in expanded mode.
func (n *Navigator) Left() {
	if n.leavesOnly {
		return
	}
	r, ok := n.Selected()
	if !ok {
		return
	}
	if r.Node.IsFolder() && !r.Collapsed {
		n.setCollapsed(r.Node.Path, true)
		return
	}
	if parent := parentIndex(n.routes, n.cursor); parent != None {
		n.cursor = parent
	}
}

// Right expands a collapsed folder under the cursor, or moves the cursor to
// the first child of an expanded one. No-op in expanded mode.
func (n *Navigator) Right() {
	if n.leavesOnly {
		return
	}
	r, ok := n.Selected()
	if !ok || !r.Node.IsFolder() {
		return
	}
	if r.Collapsed {
		n.setCollapsed(r.Node.Path, false)
		return
	}
	if child := firstChildIndex(n.routes, n.cursor); child != None {
		n.cursor = child
	}
}

// SetCollapse sets the collapse flag of the folder row at index. Stale,
// out-of-range and leaf indexes are ignored.
func (n *Navigator) SetCollapse(index int, collapsed bool) {
	r, ok := n.Route(index)
	if !ok || !r.Node.IsFolder() || r.Collapsed == collapsed {
		return
	}
	n.setCollapsed(r.Node.Path, collapsed)
}

// ToggleCollapse flips the collapse flag of the folder under the cursor.
func (n *Navigator) ToggleCollapse() {
	if r, ok := n.Selected(); ok {
		n.SetCollapse(n.cursor, !r.Collapsed)
	}
}

// SetCollapsePath sets the collapse flag of the folder with the given group
// key, whether or not it is currently visible. Unknown paths are ignored.
func (n *Navigator) SetCollapsePath(group string, collapsed bool) {
	path := strings.Split(group, n.sep)
	if !FolderPaths(n.root)[pathKey(path)] {
		return
	}
	n.setCollapsed(path, collapsed)
}

func (n *Navigator) setCollapsed(path []string, collapsed bool) {
	n.collapsed = n.collapsed.With(path, collapsed)
	n.recompute()
}

// Navigate puts the cursor on row index, clamped into range.
func (n *Navigator) Navigate(index int) {
	if len(n.routes) == 0 {
		return
	}
	n.cursor = clampIndex(index, len(n.routes))
}

// Action is a navigation operation triggered by a key.
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
	ActionToggle
	ActionTop
	ActionBottom
)

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionToggle:
		return "toggle"
	case ActionTop:
		return "top"
	case ActionBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// CompactOnly reports whether a only applies in compact mode.
func (a Action) CompactOnly() bool {
	return a == ActionLeft || a == ActionRight || a == ActionToggle
}

// Dispatch applies a after modal gating. It returns false when a is not
// available in the current mode.
func (n *Navigator) Dispatch(a Action) bool {
	if a.CompactOnly() && n.leavesOnly {
		return false
	}
	switch a {
	case ActionUp:
		n.Up()
	case ActionDown:
		n.Down()
	case ActionLeft:
		n.Left()
	case ActionRight:
		n.Right()
	case ActionToggle:
		n.ToggleCollapse()
	case ActionTop:
		n.Top()
	case ActionBottom:
		n.Bottom()
	default:
		return false
	}
	return true
}
