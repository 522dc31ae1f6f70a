package model

import "strings"

// FilterType classifies a record for filtering and coloring.
type FilterType string

const (
	FilterNone       FilterType = ""
	FilterProject    FilterType = "project"
	FilterPackage    FilterType = "package"
	FilterClass      FilterType = "class"
	FilterMethod     FilterType = "method"
	FilterDependency FilterType = "dependency"
)

// String returns the string representation of the filter type.
func (f FilterType) String() string {
	return string(f)
}

// IsValid reports whether f is a known, non-empty filter type.
func (f FilterType) IsValid() bool {
	switch f {
	case FilterProject, FilterPackage, FilterClass, FilterMethod, FilterDependency:
		return true
	}
	return false
}

// Prefix returns the one-letter query prefix for f, or 0 if f has none.
func (f FilterType) Prefix() byte {
	switch f {
	case FilterPackage:
		return 'p'
	case FilterClass:
		return 'c'
	case FilterMethod:
		return 'm'
	case FilterDependency:
		return 'd'
	}
	return 0
}

// FilterTypeForPrefix maps a query prefix letter to its filter type.
func FilterTypeForPrefix(p byte) (FilterType, bool) {
	switch p {
	case 'p':
		return FilterPackage, true
	case 'c':
		return FilterClass, true
	case 'm':
		return FilterMethod, true
	case 'd':
		return FilterDependency, true
	}
	return FilterNone, false
}

// Display labels attached to records.
const (
	LabelProject             = "Project"
	LabelPackage             = "Package"
	LabelClass               = "Class"
	LabelMethod              = "Method"
	LabelAddedDependency     = "+ Dependency"
	LabelDeletedDependency   = "- Dependency"
	LabelMethods             = "Methods"
	LabelAddedDependencies   = "Added dependencies"
	LabelDeletedDependencies = "Deleted dependencies"
)

// Record is one flat changelog entry. Code is the authoritative
// hierarchical key; Text is the display name.
type Record struct {
	Text       string     `json:"text"`
	Path       string     `json:"path,omitempty"`
	Code       string     `json:"code"`
	Label      string     `json:"label,omitempty"`
	FilterType FilterType `json:"filter_type,omitempty"`
}

// IsDependency reports whether r is an added or deleted dependency leaf.
func (r *Record) IsDependency() bool {
	return r.FilterType == FilterDependency
}

// IsGrouping reports whether r is an injected grouping record (methods,
// added or deleted dependencies). Those carry no filter type.
func (r *Record) IsGrouping() bool {
	return r.FilterType == FilterNone
}

// ResolveFilterType maps a node's label set to a structural filter type.
// The first label containing "package", "class" or "method"
// (case-insensitive) wins. ok is false when no label matches.
func ResolveFilterType(labels []string) (ft FilterType, ok bool) {
	for _, l := range labels {
		l = strings.ToLower(l)
		switch {
		case strings.Contains(l, "package"):
			return FilterPackage, true
		case strings.Contains(l, "class"):
			return FilterClass, true
		case strings.Contains(l, "method"):
			return FilterMethod, true
		}
	}
	return FilterNone, false
}
