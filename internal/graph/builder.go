// Package graph turns the flat changelog records into a deduplicated
// node/edge graph and manages its visual clustering.
package graph

import (
	"github.com/alfredjeanlab/adcl/internal/codepath"
	"github.com/alfredjeanlab/adcl/internal/model"
)

// IDCounter hands out dense, monotonic node ids for one graph
// construction. The zero value starts at 0.
type IDCounter struct {
	next int
}

// Next returns the next unused id.
func (c *IDCounter) Next() int {
	id := c.next
	c.next++
	return id
}

// Peek returns the id Next would return without consuming it.
func (c *IDCounter) Peek() int {
	return c.next
}

// Graph is a trie of typed nodes keyed by decoded path, rooted at a
// project node. A Graph is built once and not mutated afterwards.
type Graph struct {
	Project *model.GraphItem

	items     map[string]*model.GraphItem
	byID      map[int]*model.GraphItem
	order     []*model.GraphItem
	displayed map[int]bool
}

// Lookup returns the node for a decoded path such as "a.B.m()". The
// decoded path omits the root and methods segments.
func (g *Graph) Lookup(path string) (*model.GraphItem, bool) {
	item, ok := g.items[path]
	return item, ok
}

// Item returns the node with the given id.
func (g *Graph) Item(id int) (*model.GraphItem, bool) {
	item, ok := g.byID[id]
	return item, ok
}

// Items returns every node in creation order, the project node first.
func (g *Graph) Items() []*model.GraphItem {
	return g.order
}

// Len returns the number of nodes including the project node.
func (g *Graph) Len() int {
	return len(g.order)
}

type builder struct {
	ids      *IDCounter
	kinds    *codepath.Kinds
	g        *Graph
	attached map[*model.GraphItem]bool
	top      []*model.GraphItem
}

// Build decodes records into a graph whose root is named after project.
// Records sharing a decoded path prefix share the node for that prefix.
// A nil counter starts ids at 0.
func Build(records []*model.Record, project string, ids *IDCounter) *Graph {
	if ids == nil {
		ids = &IDCounter{}
	}
	b := &builder{
		ids: ids,
		g: &Graph{
			items: make(map[string]*model.GraphItem),
			byID:  make(map[int]*model.GraphItem),
		},
		attached: make(map[*model.GraphItem]bool),
		kinds:    codepath.NewKinds(),
	}
	for _, r := range records {
		if r != nil {
			b.kinds.Mark(r.Code, r.IsGrouping())
		}
	}
	b.g.Project = b.newItem(project, codepath.SegmentRoot)
	b.g.Project.Type = model.FilterProject
	b.g.Project.Tooltip = model.LabelProject + ": " + project

	for _, r := range records {
		if r == nil || r.IsGrouping() {
			continue
		}
		b.add(r)
	}

	for _, item := range b.top {
		b.g.Project.Children = append(b.g.Project.Children, item)
	}
	return b.g
}

func (b *builder) newItem(name, code string) *model.GraphItem {
	item := &model.GraphItem{
		ID:   b.ids.Next(),
		Name: name,
		Code: code,
	}
	b.g.byID[item.ID] = item
	b.g.order = append(b.g.order, item)
	return item
}

func (b *builder) attach(parent, item *model.GraphItem) {
	if b.attached[item] {
		return
	}
	b.attached[item] = true
	if parent == nil {
		b.top = append(b.top, item)
		return
	}
	parent.Children = append(parent.Children, item)
}

func (b *builder) add(r *model.Record) {
	segs := codepath.Segments(r.Code)
	var (
		parent *model.GraphItem
		key    string
		code   string
	)
	for i, seg := range segs {
		code = codepath.Child(code, seg)
		if i == 0 && seg == codepath.SegmentRoot {
			continue
		}
		// A real package or class may carry a synthetic name.
		synthetic := b.kinds.IsGrouping(code)
		if synthetic && seg == codepath.SegmentMethods {
			continue
		}
		if synthetic && codepath.IsStatus(seg) {
			b.addDependency(parent, key, seg, segs[i+1:], r)
			return
		}
		key = codepath.Child(key, seg)
		item, ok := b.g.items[key]
		if !ok {
			item = b.newItem(seg, code)
			b.g.items[key] = item
		}
		b.attach(parent, item)
		parent = item
	}
	if parent == nil {
		return
	}
	parent.Name = r.Text
	parent.Code = r.Code
	parent.Tooltip = tooltip(r)
	if r.FilterType != model.FilterNone {
		parent.Type = r.FilterType
	}
}

// addDependency attaches the dependency named by rest to parent's added or
// deleted list. Dependency nodes are keyed by their target path so a
// dependency on a changed entity shares that entity's node.
func (b *builder) addDependency(parent *model.GraphItem, parentKey, status string, rest []string, r *model.Record) {
	if len(rest) == 0 {
		return
	}
	if parent == nil {
		parent = b.g.Project
	}
	key := r.Path
	if key == "" {
		key = codepath.Child(codepath.Child(parentKey, status), codepath.Join(rest...))
	}
	dep, ok := b.g.items[key]
	if !ok {
		dep = b.newItem(r.Text, r.Code)
		dep.Tooltip = tooltip(r)
		b.g.items[key] = dep
	}
	dep.IsDependency = true
	if dep.Type == model.FilterNone {
		dep.Type = r.FilterType
	}

	list := &parent.AddedDependency
	if status == codepath.SegmentDeleted {
		list = &parent.DeletedDependency
	}
	for _, existing := range *list {
		if existing == dep {
			return
		}
	}
	*list = append(*list, dep)
}

func tooltip(r *model.Record) string {
	where := r.Path
	if where == "" {
		where = r.Code
	}
	if r.Label == "" {
		return where
	}
	return r.Label + ": " + where
}
