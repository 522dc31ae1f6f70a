// Package codepath encodes and decodes the dot-delimited code paths that
// position a changelog record in the project hierarchy.
//
// A code is a sequence of segments joined by '.'. Method signatures such as
// "run(java.lang.String, int)" are a single segment: dots inside a
// parenthesized span, at any nesting level, do not separate segments.
package codepath

import "strings"

// Separator joins code segments.
const Separator = "."

// Well-known segments. Root anchors every code; the others are synthetic
// grouping segments that separate methods and dependency status from the
// entities they belong to without being entities themselves.
const (
	SegmentRoot    = "root"
	SegmentMethods = "methods"
	SegmentAdded   = "added"
	SegmentDeleted = "deleted"
)

// IsSynthetic reports whether seg is a synthetic grouping segment.
func IsSynthetic(seg string) bool {
	switch seg {
	case SegmentMethods, SegmentAdded, SegmentDeleted:
		return true
	}
	return false
}

// IsStatus reports whether seg is a dependency status segment.
func IsStatus(seg string) bool {
	return seg == SegmentAdded || seg == SegmentDeleted
}

// separators returns the byte offsets of every top-level separator in code.
func separators(code string) []int {
	var (
		idx   []int
		depth int
	)
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				idx = append(idx, i)
			}
		}
	}
	return idx
}

// Segments splits code into its atomic segments.
func Segments(code string) []string {
	if code == "" {
		return nil
	}
	seps := separators(code)
	segs := make([]string, 0, len(seps)+1)
	start := 0
	for _, i := range seps {
		segs = append(segs, code[start:i])
		start = i + 1
	}
	return append(segs, code[start:])
}

// Depth returns the number of segments in code: one more than the number of
// top-level separators. The empty code has depth 0.
func Depth(code string) int {
	if code == "" {
		return 0
	}
	return len(separators(code)) + 1
}

// Join concatenates segments into a code.
func Join(segs ...string) string {
	return strings.Join(segs, Separator)
}

// Child returns the code of seg directly below parent.
func Child(parent, seg string) string {
	if parent == "" {
		return seg
	}
	return parent + Separator + seg
}

// Parent returns code truncated at its last top-level separator, or "" for
// a single-segment code.
func Parent(code string) string {
	seps := separators(code)
	if len(seps) == 0 {
		return ""
	}
	return code[:seps[len(seps)-1]]
}

// Last returns the final segment of code.
func Last(code string) string {
	seps := separators(code)
	if len(seps) == 0 {
		return code
	}
	return code[seps[len(seps)-1]+1:]
}

// HasPrefix reports whether code descends from prefix at a segment
// boundary. The empty prefix is an ancestor of every non-empty code.
func HasPrefix(code, prefix string) bool {
	if prefix == "" {
		return code != ""
	}
	return len(code) > len(prefix) && strings.HasPrefix(code, prefix) && code[len(prefix)] == '.'
}

// IsDirectChild reports whether code equals prefix extended by exactly one
// segment.
func IsDirectChild(code, prefix string) bool {
	return HasPrefix(code, prefix) && Depth(code) == Depth(prefix)+1
}

// IsGrouping reports whether code ends in a synthetic grouping segment.
func IsGrouping(code string) bool {
	return IsSynthetic(Last(code))
}

// VisibleParent returns the nearest ancestor of code whose last segment is
// not synthetic. Grouping segments are transparent to the hierarchy.
func VisibleParent(code string) string {
	return (*Kinds)(nil).VisibleParent(code)
}

// Kinds remembers, per code, whether a record is an injected grouping
// record or a real entity. A real package or class may be named "methods",
// "added" or "deleted"; only codes Kinds has not seen fall back to the
// segment name. The nil Kinds knows no codes.
type Kinds struct {
	grouping map[string]bool
}

func NewKinds() *Kinds {
	return &Kinds{grouping: make(map[string]bool)}
}

// Mark records the kind of code. The first mark wins.
func (k *Kinds) Mark(code string, grouping bool) {
	if _, ok := k.grouping[code]; !ok {
		k.grouping[code] = grouping
	}
}

// IsGrouping reports whether code names a grouping record.
func (k *Kinds) IsGrouping(code string) bool {
	if k != nil {
		if g, ok := k.grouping[code]; ok {
			return g
		}
	}
	return IsGrouping(code)
}

// VisibleParent returns the nearest ancestor of code that is not a
// grouping record.
func (k *Kinds) VisibleParent(code string) string {
	p := Parent(code)
	for p != "" && k.IsGrouping(p) {
		p = Parent(p)
	}
	return p
}

// Ancestors returns every proper ancestor of code, nearest first.
func Ancestors(code string) []string {
	var out []string
	for p := Parent(code); p != ""; p = Parent(p) {
		out = append(out, p)
	}
	return out
}

// Valid reports whether code is non-empty, has balanced parentheses, and
// contains no empty segment.
func Valid(code string) bool {
	if code == "" {
		return false
	}
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	if depth != 0 {
		return false
	}
	for _, s := range Segments(code) {
		if s == "" {
			return false
		}
	}
	return true
}
