package changelog

import (
	"errors"

	"github.com/alfredjeanlab/adcl/internal/codepath"
	"github.com/alfredjeanlab/adcl/internal/filter"
	"github.com/alfredjeanlab/adcl/internal/graph"
	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/tree"
)

// ErrGraphDisplay is returned by Tree for the graph display option, which
// is served by Graph instead.
var ErrGraphDisplay = errors.New("graph display has no tree view; use the graph view")

// Tree rebuilds the forest under the given display policy after reducing
// the records with query. An empty query selects every record.
func (s *Snapshot) Tree(display model.DisplayOption, query string) (*model.TreeResponse, error) {
	if display == "" {
		display = model.DefaultDisplay
	}
	if display == model.DisplayGraph {
		return nil, ErrGraphDisplay
	}
	policy, err := tree.PolicyFor(display)
	if err != nil {
		return nil, err
	}

	nodes, diag := filter.Filter(s.Records, filter.ParseQuery(query), codepath.SegmentRoot, policy)
	if nodes == nil {
		nodes = []*model.TreeItemNode{}
	}
	return &model.TreeResponse{
		Display:     display,
		Filter:      query,
		Nodes:       nodes,
		Diagnostics: s.withBase(diag),
	}, nil
}

// Graph builds the node/edge view after reducing the records with query,
// and computes the initial cluster layout: one cluster per top-level
// entity.
func (s *Snapshot) Graph(query string) *model.GraphResponse {
	res := filter.Apply(s.Records, filter.ParseQuery(query))
	g := s.buildGraph(res.Records)

	resp := g.Render()
	w := graph.NewStateWidget()
	graph.NewController(g, w).ClusterTopLevel()
	resp.Clusters = w.Clusters()
	resp.Diagnostics = s.withBase(res.Diagnostics)
	return resp
}

// BuildGraph returns the graph of the snapshot's records reduced by query,
// for callers that drive a ClusterController themselves.
func (s *Snapshot) BuildGraph(query string) *graph.Graph {
	return s.buildGraph(filter.Apply(s.Records, filter.ParseQuery(query)).Records)
}

func (s *Snapshot) buildGraph(records []*model.Record) *graph.Graph {
	return graph.Build(records, s.Project, &graph.IDCounter{})
}

// withBase merges the load-time diagnostics with the view's own, without
// modifying either.
func (s *Snapshot) withBase(view *model.Diagnostics) *model.Diagnostics {
	out := &model.Diagnostics{}
	out.Merge(s.Diagnostics)
	out.Merge(view)
	if out.Empty() {
		return nil
	}
	return out
}
