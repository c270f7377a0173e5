package previewtree

// None is the cursor value when there are no visible routes.
const None = -1

// clampIndex bounds i to [0, n-1], or None when n is zero.
func clampIndex(i, n int) int {
	switch {
	case n == 0:
		return None
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}

// parentIndex returns the row of the folder containing row i, or None when
// row i is at the top level.
func parentIndex(routes []VisibleRoute, i int) int {
	if i <= 0 || i >= len(routes) {
		return None
	}
	depth := routes[i].Depth
	for j := i - 1; j >= 0; j-- {
		if routes[j].Depth < depth {
			if routes[j].Depth == depth-1 && routes[j].Node.IsFolder() {
				return j
			}
			return None
		}
	}
	return None
}

// firstChildIndex returns the row of the first visible child of row i, or
// None when it has none.
func firstChildIndex(routes []VisibleRoute, i int) int {
	if i < 0 || i+1 >= len(routes) {
		return None
	}
	if routes[i+1].Depth > routes[i].Depth {
		return i + 1
	}
	return None
}

// selection remembers what the cursor pointed at before a recompute.
type selection struct {
	id    Identity
	path  []string
	index int
	ok    bool
}

func selectionAt(routes []VisibleRoute, i int) selection {
	if i < 0 || i >= len(routes) {
		return selection{index: i}
	}
	node := routes[i].Node
	return selection{id: node.ID(), path: node.Path, index: i, ok: true}
}

// reconcile finds where the cursor belongs in routes after a recompute.
//
// The previous node wins if it is still visible. Otherwise a same-path
// sibling duplicate, then the first visible descendant of a hidden folder,
// then the nearest visible ancestor. Only when none of those exist does the
// old numeric index get clamped into range.
func reconcile(routes []VisibleRoute, prev selection) int {
	if len(routes) == 0 {
		return None
	}
	if !prev.ok {
		return clampIndex(prev.index, len(routes))
	}

	samePath := None
	for i, r := range routes {
		id := r.Node.ID()
		if id == prev.id {
			return i
		}
		if samePath == None && id.Kind == prev.id.Kind && id.Path == prev.id.Path {
			samePath = i
		}
	}
	if samePath != None {
		return samePath
	}

	if prev.id.Kind == Folder {
		for i, r := range routes {
			if isStrictPrefix(prev.path, r.Node.Path) {
				return i
			}
		}
	}

	for k := len(prev.path) - 1; k > 0; k-- {
		ancestor := pathKey(prev.path[:k])
		for i, r := range routes {
			if r.Node.IsFolder() && pathKey(r.Node.Path) == ancestor {
				return i
			}
		}
	}

	return clampIndex(prev.index, len(routes))
}

func isStrictPrefix(prefix, path []string) bool {
	if len(path) <= len(prefix) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}
