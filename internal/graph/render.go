package graph

import "github.com/alfredjeanlab/adcl/internal/model"

// Node colors keyed by type.
const (
	ColorProject    = "#2B7CE9"
	ColorPackage    = "#FFA807"
	ColorClass      = "#7BE141"
	ColorMethod     = "#AD85E4"
	ColorDependency = "#FB7E81"
	ColorOther      = "#C2FABC"

	ColorAdded   = "#28A745"
	ColorDeleted = "#DC3545"
)

// Edge labels for dependency edges.
const (
	EdgeLabelAdded   = "added"
	EdgeLabelDeleted = "deleted"
)

const dependencyEdgeWidth = 2

// ColorFor returns the palette color for a node type.
func ColorFor(t model.FilterType) string {
	switch t {
	case model.FilterProject:
		return ColorProject
	case model.FilterPackage:
		return ColorPackage
	case model.FilterClass:
		return ColorClass
	case model.FilterMethod:
		return ColorMethod
	case model.FilterDependency:
		return ColorDependency
	}
	return ColorOther
}

// Displayed reports whether item is rendered: it has more than one added
// or more than one deleted dependency, it is a dependency, or one of its
// descendants is displayed. Results are memoized per graph.
func (g *Graph) Displayed(item *model.GraphItem) bool {
	if g.displayed == nil {
		g.displayed = make(map[int]bool, len(g.order))
	}
	if v, ok := g.displayed[item.ID]; ok {
		return v
	}
	v := len(item.AddedDependency) > 1 || len(item.DeletedDependency) > 1 || item.IsDependency
	if !v {
		for _, c := range item.Children {
			if g.Displayed(c) {
				v = true
				break
			}
		}
	}
	g.displayed[item.ID] = v
	return v
}

// Render emits the displayed nodes with one edge per child relation
// (child to parent) and one colored, labeled edge per dependency (parent
// to dependency). Edges are only emitted between displayed nodes.
func (g *Graph) Render() *model.GraphResponse {
	resp := &model.GraphResponse{
		Nodes:    []*model.GraphNode{},
		Edges:    []*model.GraphEdge{},
		Clusters: []*model.GraphCluster{},
		Stats:    &model.GraphStats{},
	}
	for _, item := range g.order {
		if !g.Displayed(item) {
			continue
		}
		resp.Nodes = append(resp.Nodes, &model.GraphNode{
			ID:    item.ID,
			Label: item.Name,
			Title: item.Tooltip,
			Color: ColorFor(item.Type),
		})
		for _, c := range item.Children {
			if !g.Displayed(c) {
				continue
			}
			resp.Edges = append(resp.Edges, &model.GraphEdge{
				From:   c.ID,
				To:     item.ID,
				Arrows: model.ArrowTo,
			})
		}
		for _, d := range item.AddedDependency {
			resp.Edges = append(resp.Edges, dependencyEdge(item, d, EdgeLabelAdded, ColorAdded))
			resp.Stats.AddedDependencies++
		}
		for _, d := range item.DeletedDependency {
			resp.Edges = append(resp.Edges, dependencyEdge(item, d, EdgeLabelDeleted, ColorDeleted))
			resp.Stats.DeletedDependencies++
		}
	}
	resp.Stats.TotalNodes = len(resp.Nodes)
	resp.Stats.TotalEdges = len(resp.Edges)
	return resp
}

func dependencyEdge(from, to *model.GraphItem, label, color string) *model.GraphEdge {
	return &model.GraphEdge{
		From:   from.ID,
		To:     to.ID,
		Arrows: model.ArrowTo,
		Label:  label,
		Color:  color,
		Width:  dependencyEdgeWidth,
	}
}
