package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/adcl/internal/model"
)

func chainRecords() []*model.Record {
	return []*model.Record{
		rec("root.a", model.LabelPackage, model.FilterPackage),
		rec("root.a.b", model.LabelPackage, model.FilterPackage),
		rec("root.a.b.c", model.LabelPackage, model.FilterPackage),
		rec("root.a.b.c.K", model.LabelClass, model.FilterClass),
		rec("root.a.b.c.K.added.dep", model.LabelAddedDependency, model.FilterDependency),
	}
}

func TestCompactMiddlePackages_Chain(t *testing.T) {
	forest := Build(chainRecords(), "root", CompactMiddlePackages{})

	require.Len(t, forest, 1)
	n := forest[0]
	assert.Equal(t, "a.b.c", n.Name)
	assert.Equal(t, "root.a", n.Code, "code stays the outermost package's")
	assert.Equal(t, "root.a.b.c", n.Path)
	assert.Equal(t, []string{"K"}, names(n.Children))
}

func TestCompactMiddlePackages_StopsAtFork(t *testing.T) {
	records := append(chainRecords(),
		rec("root.a.b.d", model.LabelPackage, model.FilterPackage),
		rec("root.a.b.d.L", model.LabelClass, model.FilterClass),
		rec("root.a.b.d.L.deleted.dep", model.LabelDeletedDependency, model.FilterDependency),
	)
	forest := Build(records, "root", CompactMiddlePackages{})

	require.Len(t, forest, 1)
	assert.Equal(t, "a.b", forest[0].Name)
	assert.Equal(t, []string{"c", "d"}, names(forest[0].Children))
}

func TestCompactMiddlePackages_Idempotent(t *testing.T) {
	records := append(chainRecords(),
		rec("root.p", model.LabelPackage, model.FilterPackage),
		rec("root.p.q", model.LabelPackage, model.FilterPackage),
		rec("root.p.q.r", model.LabelPackage, model.FilterPackage),
		rec("root.p.q.r.s", model.LabelPackage, model.FilterPackage),
		rec("root.p.q.r.s.T", model.LabelClass, model.FilterClass),
		rec("root.p.q.r.s.T.added.x", model.LabelAddedDependency, model.FilterDependency),
		rec("root.p.q.U", model.LabelClass, model.FilterClass),
		rec("root.p.q.U.added.y", model.LabelAddedDependency, model.FilterDependency),
	)
	policy := CompactMiddlePackages{}
	forest := Build(records, "root", policy)

	model.Walk(forest, func(n *model.TreeItemNode, _ int) {
		before := *n
		hoisted, keep := policy.Project(n)
		assert.Nil(t, hoisted)
		assert.True(t, keep)
		assert.Equal(t, before, *n, "node %s changed on second pass", n.Code)
	})
}

func TestFlattenPackages_HoistsSubPackages(t *testing.T) {
	records := []*model.Record{
		rec("root.a", model.LabelPackage, model.FilterPackage),
		rec("root.a.K", model.LabelClass, model.FilterClass),
		rec("root.a.K.added.dep", model.LabelAddedDependency, model.FilterDependency),
		rec("root.a.b", model.LabelPackage, model.FilterPackage),
		rec("root.a.b.L", model.LabelClass, model.FilterClass),
		rec("root.a.b.L.added.dep", model.LabelAddedDependency, model.FilterDependency),
		rec("root.a.b.c", model.LabelPackage, model.FilterPackage),
		rec("root.a.b.c.M", model.LabelClass, model.FilterClass),
		rec("root.a.b.c.M.deleted.dep", model.LabelDeletedDependency, model.FilterDependency),
	}
	forest := Build(records, "root", FlattenPackages{})

	assert.Equal(t, []string{"a.b.c", "a.b", "a"}, names(forest))
	assert.Equal(t, "root.a.b.c", forest[0].Code)
	assert.Equal(t, []string{"M"}, names(forest[0].Children))
	assert.Equal(t, []string{"L"}, names(forest[1].Children))
	assert.Equal(t, []string{"K"}, names(forest[2].Children))
}

func TestFlattenPackages_SuppressesHostOnlyPackages(t *testing.T) {
	forest := Build(chainRecords(), "root", FlattenPackages{})

	assert.Equal(t, []string{"a.b.c"}, names(forest))
}

func TestFlattenPackages_NoPackageUnderPackage(t *testing.T) {
	records := append(chainRecords(),
		rec("root.a.b.K2", model.LabelClass, model.FilterClass),
		rec("root.a.b.K2.added.z", model.LabelAddedDependency, model.FilterDependency),
		rec("root.a.b.c.d", model.LabelPackage, model.FilterPackage),
		rec("root.a.b.c.d.N", model.LabelClass, model.FilterClass),
		rec("root.a.b.c.d.N.added.w", model.LabelAddedDependency, model.FilterDependency),
	)
	forest := Build(records, "root", FlattenPackages{})

	model.Walk(forest, func(n *model.TreeItemNode, _ int) {
		if !n.IsPackage() {
			return
		}
		for _, c := range n.Children {
			assert.False(t, c.IsPackage(), "package %s has package child %s", n.Name, c.Name)
		}
	})
}

func TestPolicyFor(t *testing.T) {
	tests := []struct {
		display model.DisplayOption
		want    model.DisplayOption
		wantErr bool
	}{
		{model.DisplayStandard, model.DisplayStandard, false},
		{model.DisplayCompactMiddlePackages, model.DisplayCompactMiddlePackages, false},
		{"", model.DisplayCompactMiddlePackages, false},
		{model.DisplayFlattenPackages, model.DisplayFlattenPackages, false},
		{model.DisplayGraph, "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.display), func(t *testing.T) {
			p, err := PolicyFor(tt.display)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Display())
		})
	}
}
