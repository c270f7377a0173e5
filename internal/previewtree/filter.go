package previewtree

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// leafSource adapts the leaf rows of a route list for fuzzy matching.
type leafSource struct {
	routes []VisibleRoute
	leaves []int // indexes into routes
}

func (s leafSource) String(i int) string { return s.routes[s.leaves[i]].Node.Label() }
func (s leafSource) Len() int            { return len(s.leaves) }

// FilterRoutes keeps the leaf rows whose slash path fuzzy-matches query.
//
// Rows keep their pre-order position. A folder row survives when any row
// inside its subtree survives, so the tree shape stays readable. An empty
// query returns routes unchanged.
func FilterRoutes(routes []VisibleRoute, query string) []VisibleRoute {
	query = strings.TrimSpace(query)
	if query == "" {
		return routes
	}

	src := leafSource{routes: routes}
	for i, r := range routes {
		if r.Node.IsLeaf() {
			src.leaves = append(src.leaves, i)
		}
	}

	kept := make([]bool, len(routes))
	for _, m := range fuzzy.FindFrom(query, src) {
		kept[src.leaves[m.Index]] = true
	}

	for i := len(routes) - 1; i >= 0; i-- {
		if !routes[i].Node.IsFolder() {
			continue
		}
		for j := i + 1; j < len(routes) && routes[j].Depth > routes[i].Depth; j++ {
			if kept[j] {
				kept[i] = true
				break
			}
		}
	}

	var filtered []VisibleRoute
	for i, r := range routes {
		if kept[i] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
