package model

// Diagnostics collects the problems the best-effort algorithms recovered
// from by omission. None of them fail a build.
type Diagnostics struct {
	// UnresolvedTypes lists paths whose labels matched no known type.
	UnresolvedTypes []string `json:"unresolved_types,omitempty"`
	// OrphanedCodes lists records whose parent code is absent from the dataset.
	OrphanedCodes []string `json:"orphaned_codes,omitempty"`
	// UnmatchedCodes lists ancestor codes a filter expected but did not find.
	UnmatchedCodes []string `json:"unmatched_codes,omitempty"`
	// MalformedCodes lists codes with unbalanced parentheses or empty segments.
	MalformedCodes []string `json:"malformed_codes,omitempty"`
}

// Empty reports whether no problem was recorded.
func (d *Diagnostics) Empty() bool {
	return d == nil || len(d.UnresolvedTypes)+len(d.OrphanedCodes)+len(d.UnmatchedCodes)+len(d.MalformedCodes) == 0
}

// Merge appends the entries of other to d.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.UnresolvedTypes = append(d.UnresolvedTypes, other.UnresolvedTypes...)
	d.OrphanedCodes = append(d.OrphanedCodes, other.OrphanedCodes...)
	d.UnmatchedCodes = append(d.UnmatchedCodes, other.UnmatchedCodes...)
	d.MalformedCodes = append(d.MalformedCodes, other.MalformedCodes...)
}
