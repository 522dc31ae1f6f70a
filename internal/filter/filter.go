// Package filter narrows a changelog record set to the records matching a
// query, keeping enough context around each match for the rebuilt tree to
// stay navigable.
package filter

import (
	"strings"

	"github.com/alfredjeanlab/adcl/internal/codepath"
	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/tree"
)

// Query is a parsed filter expression of the form "[pcmd]:text" or "text".
type Query struct {
	// Type restricts matches to one record type. FilterNone matches any.
	Type model.FilterType
	// Text is matched case-insensitively against record display names.
	Text string
}

// ParseQuery parses a filter expression. A one-letter type tag followed by
// a colon restricts the record type; the text after the first colon is the
// search text. Text after a second colon is ignored.
func ParseQuery(s string) Query {
	var q Query
	if len(s) >= 2 && s[1] == ':' {
		if ft, ok := model.FilterTypeForPrefix(s[0]); ok {
			q.Type = ft
		}
	}
	parts := strings.Split(s, ":")
	if len(parts) > 1 {
		q.Text = parts[1]
	} else {
		q.Text = parts[0]
	}
	return q
}

// String renders q back into its expression form.
func (q Query) String() string {
	if p := q.Type.Prefix(); p != 0 {
		return string(p) + ":" + q.Text
	}
	return q.Text
}

// IsEmpty reports whether q selects the full dataset.
func (q Query) IsEmpty() bool {
	return q.Text == ""
}

// Matches reports whether r satisfies the type restriction and contains
// the search text in its display name.
func (q Query) Matches(r *model.Record) bool {
	if q.Type != model.FilterNone && r.FilterType != q.Type {
		return false
	}
	return strings.Contains(strings.ToLower(r.Text), strings.ToLower(q.Text))
}

// Result is the reduced record set produced by Apply.
type Result struct {
	Records     []*model.Record
	Matches     int
	Diagnostics *model.Diagnostics
}

// Apply selects the records matching q, then adds every ancestor of each
// match found in records and, unless q is restricted to dependencies, every
// record whose code extends a match's code. An empty query returns records
// unchanged.
func Apply(records []*model.Record, q Query) *Result {
	res := &Result{Diagnostics: &model.Diagnostics{}}
	if q.IsEmpty() {
		res.Records = records
		res.Matches = len(records)
		return res
	}

	byCode := make(map[string]*model.Record, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, ok := byCode[r.Code]; !ok {
			byCode[r.Code] = r
		}
	}

	present := make(map[string]bool)
	var out []*model.Record
	add := func(r *model.Record) {
		if present[r.Code] {
			return
		}
		present[r.Code] = true
		out = append(out, r)
	}

	var matches []*model.Record
	for _, r := range records {
		if r != nil && q.Matches(r) {
			matches = append(matches, r)
			out = append(out, r)
			present[r.Code] = true
		}
	}
	res.Matches = len(matches)

	unmatched := make(map[string]bool)
	for _, m := range matches {
		for _, anc := range codepath.Ancestors(m.Code) {
			if present[anc] {
				continue
			}
			if r, ok := byCode[anc]; ok {
				add(r)
				continue
			}
			if !codepath.IsGrouping(anc) && !unmatched[anc] {
				unmatched[anc] = true
				res.Diagnostics.UnmatchedCodes = append(res.Diagnostics.UnmatchedCodes, anc)
			}
		}
		if q.Type == model.FilterDependency {
			continue
		}
		prefix := m.Code + codepath.Separator
		for _, r := range records {
			if r != nil && r.Code != m.Code && strings.Contains(r.Code, prefix) {
				add(r)
			}
		}
	}

	res.Records = out
	return res
}

// Filter applies q to records and rebuilds the forest below parentCode with
// the given policy. The returned diagnostics merge the filter's and the
// builder's findings.
func Filter(records []*model.Record, q Query, parentCode string, policy tree.Policy) ([]*model.TreeItemNode, *model.Diagnostics) {
	res := Apply(records, q)
	b := tree.NewBuilder(res.Records, policy)
	forest := b.Build(parentCode)
	diag := res.Diagnostics
	diag.Merge(b.Diagnostics())
	return forest, diag
}
