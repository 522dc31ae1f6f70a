package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// clusterPrefix marks cluster ids so they never collide with node ids.
const clusterPrefix = "cluster:"

// ClusterID returns the id of the cluster rooted at item.
func ClusterID(item *model.GraphItem) string {
	return clusterPrefix + strconv.Itoa(item.ID)
}

// IsClusterID reports whether id names a cluster rather than a node.
func IsClusterID(id string) bool {
	return strings.HasPrefix(id, clusterPrefix)
}

// Members returns item's id followed by the ids of every visible
// descendant, depth-first.
func Members(item *model.GraphItem, visible func(*model.GraphItem) bool) []int {
	ids := []int{item.ID}
	for _, c := range item.Children {
		if visible(c) {
			ids = append(ids, Members(c, visible)...)
		}
	}
	return ids
}

// Layout computes the clusters that grouping item with its children
// creates, children before parents. Each visible child with visible
// children of its own becomes a nested cluster; other visible children
// are immediate members. A node without visible children yields no
// cluster.
func Layout(item *model.GraphItem, visible func(*model.GraphItem) bool) []*model.GraphCluster {
	var out []*model.GraphCluster
	var walk func(n *model.GraphItem) (string, bool)
	walk = func(n *model.GraphItem) (string, bool) {
		c := &model.GraphCluster{
			ID:      ClusterID(n),
			Root:    n.ID,
			Label:   n.Name,
			Members: []int{n.ID},
		}
		grouped := false
		for _, ch := range n.Children {
			if !visible(ch) {
				continue
			}
			grouped = true
			if id, ok := walk(ch); ok {
				c.Clusters = append(c.Clusters, id)
				continue
			}
			c.Members = append(c.Members, ch.ID)
		}
		if !grouped {
			return "", false
		}
		out = append(out, c)
		return c.ID, true
	}
	walk(item)
	return out
}

// Widget is the rendering side of clustering: something that can collapse
// a set of nodes into a cluster and open it again.
type Widget interface {
	Cluster(c *model.GraphCluster)
	// Open dissolves the cluster and returns it. ok is false if id is not
	// an active cluster.
	Open(id string) (c *model.GraphCluster, ok bool)
	IsCluster(id string) bool
}

// Controller drives a Widget from a Graph: it clusters nodes with their
// descendants and opens clusters, cascading through trivial ones.
type Controller struct {
	g *Graph
	w Widget
}

// NewController returns a controller clustering g's displayed nodes on w.
func NewController(g *Graph, w Widget) *Controller {
	return &Controller{g: g, w: w}
}

// ClusterWithChildren collapses the node with the given id and all its
// displayed descendants, nested clusters first. It returns the id of the
// outer cluster, or false if the node has no displayed children.
func (c *Controller) ClusterWithChildren(nodeID int) (string, bool) {
	item, ok := c.g.Item(nodeID)
	if !ok || !c.g.Displayed(item) {
		return "", false
	}
	layout := Layout(item, c.g.Displayed)
	if len(layout) == 0 {
		return "", false
	}
	for _, cl := range layout {
		if c.w.IsCluster(cl.ID) {
			continue
		}
		c.w.Cluster(cl)
	}
	return layout[len(layout)-1].ID, true
}

// ClusterTopLevel clusters every displayed child of the project node. It
// produces the initial layout of a freshly built graph.
func (c *Controller) ClusterTopLevel() []string {
	var ids []string
	for _, item := range c.g.Project.Children {
		if id, ok := c.ClusterWithChildren(item.ID); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Open opens a cluster. A cluster with more than two immediate members is
// opened alone; smaller ones also open the clusters nested directly in
// them, recursively.
func (c *Controller) Open(clusterID string) error {
	cl, ok := c.w.Open(clusterID)
	if !ok {
		return fmt.Errorf("cluster %q is not active", clusterID)
	}
	if len(cl.Members)+len(cl.Clusters) > 2 {
		return nil
	}
	for _, nested := range cl.Clusters {
		if c.w.IsCluster(nested) {
			if err := c.Open(nested); err != nil {
				return err
			}
		}
	}
	return nil
}

// Toggle handles a double click on id: a cluster opens, a node is
// clustered with its children.
func (c *Controller) Toggle(id string) error {
	if c.w.IsCluster(id) {
		return c.Open(id)
	}
	nodeID, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("invalid node id %q", id)
	}
	if _, ok := c.g.Item(nodeID); !ok {
		return fmt.Errorf("node %d not found", nodeID)
	}
	c.ClusterWithChildren(nodeID)
	return nil
}

// StateWidget is an in-memory Widget. It records the active clusters so a
// layout can be computed without a rendering surface.
type StateWidget struct {
	active map[string]*model.GraphCluster
	order  []string
}

// NewStateWidget returns an empty StateWidget.
func NewStateWidget() *StateWidget {
	return &StateWidget{active: make(map[string]*model.GraphCluster)}
}

func (w *StateWidget) Cluster(c *model.GraphCluster) {
	if _, ok := w.active[c.ID]; !ok {
		w.order = append(w.order, c.ID)
	}
	w.active[c.ID] = c
}

func (w *StateWidget) Open(id string) (*model.GraphCluster, bool) {
	c, ok := w.active[id]
	if !ok {
		return nil, false
	}
	delete(w.active, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return c, true
}

func (w *StateWidget) IsCluster(id string) bool {
	_, ok := w.active[id]
	return ok
}

// Clusters returns the active clusters in creation order.
func (w *StateWidget) Clusters() []*model.GraphCluster {
	out := make([]*model.GraphCluster, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.active[id])
	}
	return out
}

// Contains reports whether nodeID is collapsed inside the active cluster
// id, directly or through a nested active cluster.
func (w *StateWidget) Contains(id string, nodeID int) bool {
	c, ok := w.active[id]
	if !ok {
		return false
	}
	for _, m := range c.Members {
		if m == nodeID {
			return true
		}
	}
	for _, nested := range c.Clusters {
		if w.Contains(nested, nodeID) {
			return true
		}
	}
	return false
}

// Clustered reports whether nodeID is inside any active cluster.
func (w *StateWidget) Clustered(nodeID int) bool {
	for id := range w.active {
		if w.Contains(id, nodeID) {
			return true
		}
	}
	return false
}
