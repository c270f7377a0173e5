package previewtree

// CollapseState records which folders are collapsed, keyed by folder path.
// Folders without an entry are expanded.
type CollapseState map[string]bool

// IsCollapsed reports whether the folder at path is collapsed.
func (c CollapseState) IsCollapsed(path []string) bool {
	return c[pathKey(path)]
}

// With returns a copy of c with the folder at path set to collapsed.
func (c CollapseState) With(path []string, collapsed bool) CollapseState {
	next := make(CollapseState, len(c)+1)
	for k, v := range c {
		next[k] = v
	}
	if collapsed {
		next[pathKey(path)] = true
	} else {
		delete(next, pathKey(path))
	}
	return next
}

// Prune returns a copy of c restricted to folders present under root.
func (c CollapseState) Prune(root *Node) CollapseState {
	present := FolderPaths(root)
	next := make(CollapseState, len(c))
	for k, v := range c {
		if v && present[k] {
			next[k] = true
		}
	}
	return next
}

// VisibleRoute is one displayable row.
type VisibleRoute struct {
	Node      *Node
	Depth     int
	Collapsed bool // folders only
}

// Flatten lists the visible rows of the tree in depth-first pre-order.
//
// The root itself is never a row. With leavesOnly set, folders are skipped
// and always descended, so only leaves appear and collapse flags have no
// effect. Otherwise folders are rows and collapsed folders hide their
// subtree.
func Flatten(root *Node, collapsed CollapseState, leavesOnly bool) []VisibleRoute {
	if root == nil {
		return nil
	}

	var routes []VisibleRoute
	for _, child := range root.Children {
		flattenNode(child, collapsed, leavesOnly, &routes)
	}
	return routes
}

func flattenNode(node *Node, collapsed CollapseState, leavesOnly bool, routes *[]VisibleRoute) {
	if node.IsLeaf() {
		*routes = append(*routes, VisibleRoute{Node: node, Depth: node.Depth()})
		return
	}

	if leavesOnly {
		for _, child := range node.Children {
			flattenNode(child, collapsed, leavesOnly, routes)
		}
		return
	}

	isCollapsed := collapsed.IsCollapsed(node.Path)
	*routes = append(*routes, VisibleRoute{Node: node, Depth: node.Depth(), Collapsed: isCollapsed})
	if isCollapsed {
		return
	}
	for _, child := range node.Children {
		flattenNode(child, collapsed, leavesOnly, routes)
	}
}
