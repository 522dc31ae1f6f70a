package ui

import (
	"fmt"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
	colorPackage = 214 // orange
	colorClass   = 113 // green
	colorMethod  = 140 // purple
	colorDep     = 210 // salmon
	colorAdded   = 35  // dark green
	colorDeleted = 160 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	return paint(colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	return paint(colorMuted, s)
}

// RenderType returns s in the color of the given filter type. The palette
// follows the graph node colors.
func RenderType(ft model.FilterType, s string) string {
	switch ft {
	case model.FilterProject:
		return paint(colorAccent, s)
	case model.FilterPackage:
		return paint(colorPackage, s)
	case model.FilterClass:
		return paint(colorClass, s)
	case model.FilterMethod:
		return paint(colorMethod, s)
	case model.FilterDependency:
		return paint(colorDep, s)
	}
	return s
}

// RenderChange colors s by dependency status: green for added, red for
// deleted.
func RenderChange(added bool, s string) string {
	if added {
		return paint(colorAdded, s)
	}
	return paint(colorDeleted, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
