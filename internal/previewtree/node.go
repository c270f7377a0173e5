// Package previewtree turns a flat list of preview groups into a navigable
// tree and keeps a single selection cursor over its visible rows.
//
// The tree is rebuilt from scratch whenever the input changes. Only the
// collapse state and the cursor survive a rebuild; both are keyed by node
// path so they can be matched against the new tree.
package previewtree

import "strings"

// DefaultSeparator splits group keys into folder segments.
const DefaultSeparator = "/"

// Kind distinguishes folders from leaves.
type Kind int

const (
	Folder Kind = iota
	Leaf
)

func (k Kind) String() string {
	switch k {
	case Folder:
		return "folder"
	case Leaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Preview is one input entry: a group key and the preview names under it.
type Preview struct {
	Group string   `json:"group" yaml:"group"`
	Items []string `json:"items" yaml:"items"`
}

// Payload identifies the preview behind a leaf.
type Payload struct {
	Group string `json:"group"`
	Item  string `json:"item"`
}

// Node is a folder or a leaf in the preview tree.
type Node struct {
	Key      string
	Path     []string // keys from root to this node; empty for root
	Kind     Kind
	Children []*Node
	Payload  *Payload // leaves only
	Ordinal  int      // index among same-kind siblings sharing Key

	folders map[string]*Node // folder children by key, build time only
	counts  map[string]int   // leaf key occurrences, build time only
}

// IsFolder reports whether n is a folder.
func (n *Node) IsFolder() bool { return n.Kind == Folder }

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return n.Kind == Leaf }

// Depth is the number of ancestors below the root.
func (n *Node) Depth() int {
	if len(n.Path) == 0 {
		return 0
	}
	return len(n.Path) - 1
}

// ID is a stable identity for n that survives tree rebuilds.
func (n *Node) ID() Identity {
	return Identity{Kind: n.Kind, Path: pathKey(n.Path), Ordinal: n.Ordinal}
}

// Label is the slash-joined path of n, used for display and matching.
func (n *Node) Label() string {
	return strings.Join(n.Path, "/")
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Leaves returns the leaf descendants of n in pre-order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

// Identity is a node's stable key: kind, joined path and duplicate ordinal.
type Identity struct {
	Kind    Kind
	Path    string
	Ordinal int
}

// pathKeySep never appears in group keys read from files or manifests.
const pathKeySep = "\x00"

func pathKey(path []string) string {
	return strings.Join(path, pathKeySep)
}

// Build converts previews into a tree rooted at a synthetic folder.
//
// Group keys are split on sep (DefaultSeparator when empty). Empty segments
// are kept as folders named "" rather than rejected. Groups sharing a prefix
// share folders, and repeated group keys merge their items in order.
func Build(previews []Preview, sep string) *Node {
	if sep == "" {
		sep = DefaultSeparator
	}

	root := newFolder("", nil)
	for _, p := range previews {
		folder := root
		for _, segment := range strings.Split(p.Group, sep) {
			folder = folder.folder(segment)
		}
		for _, item := range p.Items {
			folder.addLeaf(item, Payload{Group: p.Group, Item: item})
		}
	}

	root.Walk(func(n *Node) {
		n.folders = nil
		n.counts = nil
	})
	return root
}

func newFolder(key string, path []string) *Node {
	return &Node{
		Key:     key,
		Path:    path,
		Kind:    Folder,
		folders: make(map[string]*Node),
		counts:  make(map[string]int),
	}
}

// folder returns the child folder named key, creating it on first use.
func (n *Node) folder(key string) *Node {
	if child, ok := n.folders[key]; ok {
		return child
	}
	child := newFolder(key, childPath(n.Path, key))
	n.folders[key] = child
	n.Children = append(n.Children, child)
	return child
}

func (n *Node) addLeaf(key string, payload Payload) {
	ordinal := n.counts[key]
	n.counts[key]++
	n.Children = append(n.Children, &Node{
		Key:     key,
		Path:    childPath(n.Path, key),
		Kind:    Leaf,
		Payload: &payload,
		Ordinal: ordinal,
	})
}

func childPath(parent []string, key string) []string {
	path := make([]string, len(parent)+1)
	copy(path, parent)
	path[len(parent)] = key
	return path
}

// FolderPaths returns the path keys of every folder below root.
func FolderPaths(root *Node) map[string]bool {
	paths := make(map[string]bool)
	if root == nil {
		return paths
	}
	root.Walk(func(n *Node) {
		if n.IsFolder() && len(n.Path) > 0 {
			paths[pathKey(n.Path)] = true
		}
	})
	return paths
}
