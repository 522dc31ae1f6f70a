// Package changelog turns query-layer rows into the canonical flat record
// list, holds the current dataset and derives tree and graph views from it.
package changelog

import (
	"strings"

	"github.com/alfredjeanlab/adcl/internal/codepath"
	"github.com/alfredjeanlab/adcl/internal/model"
)

// Assemble converts the structure and dependency rows of one changelog into
// flat records. Paths lose their "<project>." prefix and codes are anchored
// at "root". Records are ordered packages, classes, methods, class
// dependencies, method dependencies. Rows whose labels resolve to no type
// are dropped and reported.
func Assemble(project string, structure []*model.StructureRow, deps []*model.DependencyRow) ([]*model.Record, *model.Diagnostics) {
	diag := &model.Diagnostics{}
	var (
		packages  = []*model.Record{{Code: codepath.SegmentRoot, FilterType: model.FilterProject, Label: model.LabelProject}}
		classes   []*model.Record
		methods   []*model.Record
		classDeps []*model.Record
		methDeps  []*model.Record
	)

	for _, row := range structure {
		if row == nil {
			continue
		}
		path := stripProject(project, row.Path)
		r := &model.Record{
			Text: row.Name,
			Path: path,
			Code: rootCode(path),
		}
		ft, ok := model.ResolveFilterType(row.Labels)
		if !ok {
			diag.UnresolvedTypes = append(diag.UnresolvedTypes, path)
			continue
		}
		r.FilterType = ft
		switch ft {
		case model.FilterPackage:
			r.Label = model.LabelPackage
			packages = append(packages, r)
		case model.FilterClass:
			r.Label = model.LabelClass
			classes = append(classes, r,
				grouping(r.Code, codepath.SegmentMethods, model.LabelMethods),
				grouping(r.Code, codepath.SegmentAdded, model.LabelAddedDependencies),
				grouping(r.Code, codepath.SegmentDeleted, model.LabelDeletedDependencies),
			)
		case model.FilterMethod:
			r.Label = model.LabelMethod
			r.Code = methodCode(path, row.Name)
			methods = append(methods, r,
				grouping(r.Code, codepath.SegmentAdded, model.LabelAddedDependencies),
				grouping(r.Code, codepath.SegmentDeleted, model.LabelDeletedDependencies),
			)
		}
	}

	for _, row := range deps {
		if row == nil {
			continue
		}
		path := stripProject(project, row.Path)
		usedByPath := stripProject(project, row.UsedByPath)
		status, label := codepath.SegmentDeleted, model.LabelDeletedDependency
		if row.Added {
			status, label = codepath.SegmentAdded, model.LabelAddedDependency
		}

		usedBy := rootCode(usedByPath)
		if ft, _ := model.ResolveFilterType(row.UsedByLabels); ft == model.FilterMethod {
			usedBy = methodCode(usedByPath, row.UsedByName)
		}
		r := &model.Record{
			Text:       row.Name,
			Path:       path,
			Code:       codepath.Join(usedBy, status, row.Name),
			Label:      label,
			FilterType: model.FilterDependency,
		}

		ft, ok := model.ResolveFilterType(row.Labels)
		if !ok {
			diag.UnresolvedTypes = append(diag.UnresolvedTypes, path)
			continue
		}
		switch ft {
		case model.FilterPackage:
			// Package-level dependencies are not displayed.
		case model.FilterClass:
			cp := *r
			cp.Code = codepath.Join(rootCode(parentPath(usedByPath, row.UsedByName)), status, row.Name)
			classDeps = append(classDeps, r, &cp)
		case model.FilterMethod:
			methDeps = append(methDeps, r)
		}
	}

	out := make([]*model.Record, 0, len(packages)+len(classes)+len(methods)+len(classDeps)+len(methDeps))
	out = append(out, packages...)
	out = append(out, classes...)
	out = append(out, methods...)
	out = append(out, classDeps...)
	out = append(out, methDeps...)
	return out, diag
}

func grouping(code, seg, label string) *model.Record {
	return &model.Record{Code: codepath.Child(code, seg), Label: label}
}

func stripProject(project, path string) string {
	return strings.TrimPrefix(path, project+codepath.Separator)
}

// parentPath removes the trailing ".name" from path. When path does not end
// in name it falls back to the paren-aware parent.
func parentPath(path, name string) string {
	if name != "" && strings.HasSuffix(path, codepath.Separator+name) {
		return strings.TrimSuffix(path, codepath.Separator+name)
	}
	return codepath.Parent(path)
}

// methodCode re-homes a method path under its class's methods group.
func methodCode(path, name string) string {
	if name == "" {
		name = codepath.Last(path)
	}
	return codepath.Join(rootCode(parentPath(path, name)), codepath.SegmentMethods, name)
}

// rootCode anchors a project-relative path at the root segment.
func rootCode(path string) string {
	if path == "" {
		return codepath.SegmentRoot
	}
	return codepath.Child(codepath.SegmentRoot, path)
}
