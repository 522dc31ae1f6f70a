package tree

import (
	"fmt"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// Policy re-projects a node once its children are built. Project may
// mutate node. It returns nodes to emit before node as its siblings, and
// whether node itself may still be emitted.
type Policy interface {
	Display() model.DisplayOption
	Project(node *model.TreeItemNode) (hoisted []*model.TreeItemNode, keep bool)
}

// Standard renders the hierarchy verbatim.
type Standard struct{}

func (Standard) Display() model.DisplayOption { return model.DisplayStandard }

func (Standard) Project(*model.TreeItemNode) ([]*model.TreeItemNode, bool) {
	return nil, true
}

// CompactMiddlePackages collapses single-child package chains: a package
// whose only child is a package absorbs it, so a → b → c renders as a.b.c.
// Children are compacted before their parent, so one absorption per node
// is enough to collapse a whole chain.
type CompactMiddlePackages struct{}

func (CompactMiddlePackages) Display() model.DisplayOption {
	return model.DisplayCompactMiddlePackages
}

func (CompactMiddlePackages) Project(node *model.TreeItemNode) ([]*model.TreeItemNode, bool) {
	if node.IsPackage() && len(node.Children) == 1 && node.Children[0].IsPackage() {
		child := node.Children[0]
		node.Name = node.Name + "." + child.Name
		node.Path = child.Path
		node.Children = child.Children
	}
	return nil, true
}

// FlattenPackages hoists sub-packages to siblings of their parent, named
// parent.child. A package left without children after hoisting is
// suppressed.
type FlattenPackages struct{}

func (FlattenPackages) Display() model.DisplayOption { return model.DisplayFlattenPackages }

func (FlattenPackages) Project(node *model.TreeItemNode) ([]*model.TreeItemNode, bool) {
	if !node.IsPackage() {
		return nil, true
	}
	var (
		hoisted []*model.TreeItemNode
		rest    []*model.TreeItemNode
	)
	for _, c := range node.Children {
		if !c.IsPackage() {
			rest = append(rest, c)
			continue
		}
		hoisted = append(hoisted, &model.TreeItemNode{
			Name:       node.Name + "." + c.Name,
			Code:       c.Code,
			Path:       c.Path,
			Label:      node.Label,
			FilterType: node.FilterType,
			Children:   c.Children,
		})
	}
	node.Children = rest
	return hoisted, len(rest) > 0
}

// PolicyFor returns the policy implementing a tree display option. The
// graph option has no tree policy.
func PolicyFor(d model.DisplayOption) (Policy, error) {
	switch d {
	case model.DisplayStandard:
		return Standard{}, nil
	case model.DisplayCompactMiddlePackages, "":
		return CompactMiddlePackages{}, nil
	case model.DisplayFlattenPackages:
		return FlattenPackages{}, nil
	}
	return nil, fmt.Errorf("display option %q has no tree policy", d)
}
