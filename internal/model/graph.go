package model

// GraphItem is one node of the changelog graph: a trie node keyed by its
// decoded path, plus the dependencies it gained or lost.
type GraphItem struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	Code              string       `json:"code"`
	Tooltip           string       `json:"tooltip,omitempty"`
	Children          []*GraphItem `json:"-"`
	AddedDependency   []*GraphItem `json:"-"`
	DeletedDependency []*GraphItem `json:"-"`
	Type              FilterType   `json:"type,omitempty"`
	IsDependency      bool         `json:"is_dependency,omitempty"`
}

// GraphNode is a node as consumed by a network widget.
type GraphNode struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// Edge arrow directions.
const (
	ArrowTo = "to"
)

// GraphEdge is an edge as consumed by a network widget.
type GraphEdge struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Arrows string `json:"arrows"`
	Label  string `json:"label,omitempty"`
	Color  string `json:"color,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// GraphCluster describes one collapsed cluster of the widget state.
// Members holds node IDs; Clusters holds nested cluster IDs.
type GraphCluster struct {
	ID       string   `json:"id"`
	Root     int      `json:"root"`
	Label    string   `json:"label"`
	Members  []int    `json:"members,omitempty"`
	Clusters []string `json:"clusters,omitempty"`
}

// GraphStats holds aggregate counts for a rendered graph.
type GraphStats struct {
	TotalNodes          int `json:"total_nodes"`
	TotalEdges          int `json:"total_edges"`
	AddedDependencies   int `json:"added_dependencies"`
	DeletedDependencies int `json:"deleted_dependencies"`
}

// GraphResponse is the response for the graph visualization endpoint.
type GraphResponse struct {
	Nodes       []*GraphNode    `json:"nodes"`
	Edges       []*GraphEdge    `json:"edges"`
	Clusters    []*GraphCluster `json:"clusters"`
	Stats       *GraphStats     `json:"stats"`
	Diagnostics *Diagnostics    `json:"diagnostics,omitempty"`
}
