// Package tree rebuilds the changelog hierarchy from the flat record list.
package tree

import (
	"github.com/alfredjeanlab/adcl/internal/codepath"
	"github.com/alfredjeanlab/adcl/internal/model"
)

// Builder partitions a flat record list into a nested forest. Records are
// indexed once by their visible parent code, so a build is linear in the
// number of records. Child order follows input order.
type Builder struct {
	policy    Policy
	children  map[string][]*model.Record
	parents   []string
	malformed []string
	visited   map[string]bool
	diag      *model.Diagnostics
}

// NewBuilder indexes records for building with the given policy. A nil
// policy behaves like Standard.
func NewBuilder(records []*model.Record, policy Policy) *Builder {
	if policy == nil {
		policy = Standard{}
	}
	b := &Builder{
		policy:   policy,
		children: make(map[string][]*model.Record),
		diag:     &model.Diagnostics{},
	}
	kinds := codepath.NewKinds()
	for _, r := range records {
		if r != nil {
			kinds.Mark(r.Code, r.IsGrouping())
		}
	}
	for _, r := range records {
		if r == nil {
			continue
		}
		if !codepath.Valid(r.Code) {
			b.malformed = append(b.malformed, r.Code)
		}
		// Grouping records only separate siblings; they never render.
		if r.IsGrouping() {
			continue
		}
		parent := kinds.VisibleParent(r.Code)
		if _, ok := b.children[parent]; !ok {
			b.parents = append(b.parents, parent)
		}
		b.children[parent] = append(b.children[parent], r)
	}
	b.diag.MalformedCodes = b.malformed
	return b
}

// Build returns the forest below parentCode. An empty parentCode selects
// first-level records. Diagnostics reflect the latest Build.
func (b *Builder) Build(parentCode string) []*model.TreeItemNode {
	b.visited = make(map[string]bool)
	forest := b.build(parentCode)

	b.diag = &model.Diagnostics{MalformedCodes: b.malformed}
	for _, parent := range b.parents {
		if parent != parentCode && !codepath.HasPrefix(parent, parentCode) {
			continue
		}
		for _, r := range b.children[parent] {
			if !b.visited[r.Code] {
				b.diag.OrphanedCodes = append(b.diag.OrphanedCodes, r.Code)
			}
		}
	}
	return forest
}

// Diagnostics returns the problems recorded while indexing and building.
func (b *Builder) Diagnostics() *model.Diagnostics {
	return b.diag
}

func (b *Builder) build(parentCode string) []*model.TreeItemNode {
	var out []*model.TreeItemNode
	for _, r := range b.children[parentCode] {
		b.visited[r.Code] = true
		node := &model.TreeItemNode{
			Name:       r.Text,
			Code:       r.Code,
			Path:       r.Path,
			Label:      r.Label,
			FilterType: r.FilterType,
		}
		node.Children = b.build(r.Code)

		hoisted, keep := b.policy.Project(node)
		out = append(out, hoisted...)
		if !keep {
			continue
		}
		// Upstream emits every ancestor of a change, so branches that never
		// reach a dependency are dropped.
		if len(node.Children) == 0 && node.FilterType != model.FilterDependency {
			continue
		}
		out = append(out, node)
	}
	return out
}

// Build is a convenience wrapper that indexes records and builds the forest
// below parentCode in one call.
func Build(records []*model.Record, parentCode string, policy Policy) []*model.TreeItemNode {
	return NewBuilder(records, policy).Build(parentCode)
}
