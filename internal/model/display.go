package model

import (
	"fmt"
	"strings"
)

// DisplayOption selects how the raw hierarchy is re-projected for viewing.
type DisplayOption string

const (
	DisplayStandard              DisplayOption = "standard"
	DisplayCompactMiddlePackages DisplayOption = "compact"
	DisplayFlattenPackages       DisplayOption = "flatten"
	DisplayGraph                 DisplayOption = "graph"
)

// DefaultDisplay is the display option used when none is selected.
const DefaultDisplay = DisplayCompactMiddlePackages

// String returns the string representation of the display option.
func (d DisplayOption) String() string {
	return string(d)
}

// IsValid checks whether the display option is a known value.
func (d DisplayOption) IsValid() bool {
	switch d {
	case DisplayStandard, DisplayCompactMiddlePackages, DisplayFlattenPackages, DisplayGraph:
		return true
	}
	return false
}

// Title returns the human-readable name shown in selectors.
func (d DisplayOption) Title() string {
	switch d {
	case DisplayStandard:
		return "Normal"
	case DisplayCompactMiddlePackages:
		return "Compact Middle Packages"
	case DisplayFlattenPackages:
		return "Flat Packages"
	case DisplayGraph:
		return "Graph"
	}
	return string(d)
}

// ParseDisplayOption accepts either the short name or the title of a
// display option, case-insensitively. An empty string yields DefaultDisplay.
func ParseDisplayOption(s string) (DisplayOption, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultDisplay, nil
	}
	for _, d := range []DisplayOption{DisplayStandard, DisplayCompactMiddlePackages, DisplayFlattenPackages, DisplayGraph} {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Title()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown display option %q", s)
}
