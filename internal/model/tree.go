package model

// TreeItemNode is one node of the rebuilt changelog hierarchy. Nodes are
// created fresh on every rebuild; consumers that need stable identity key
// by Code.
type TreeItemNode struct {
	Name       string          `json:"name"`
	Code       string          `json:"code"`
	Path       string          `json:"path,omitempty"`
	Label      string          `json:"label,omitempty"`
	FilterType FilterType      `json:"filter_type,omitempty"`
	Children   []*TreeItemNode `json:"children"`
}

// IsPackage reports whether n is a package node.
func (n *TreeItemNode) IsPackage() bool {
	return n.FilterType == FilterPackage
}

// Walk calls fn for every node of the forest in depth-first pre-order,
// passing the depth of the node (0 for roots).
func Walk(forest []*TreeItemNode, fn func(n *TreeItemNode, depth int)) {
	var walk func(nodes []*TreeItemNode, depth int)
	walk = func(nodes []*TreeItemNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(forest, 0)
}

// TreeResponse is the response for the tree endpoint.
type TreeResponse struct {
	Display     DisplayOption   `json:"display"`
	Filter      string          `json:"filter,omitempty"`
	Nodes       []*TreeItemNode `json:"nodes"`
	Diagnostics *Diagnostics    `json:"diagnostics,omitempty"`
}
