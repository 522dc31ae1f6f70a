package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printSummary(w io.Writer, s *model.ChangelogSummary) {
	fmt.Fprintf(w, "Project:   %s\n", s.Project)
	fmt.Fprintf(w, "Version:   %s\n", s.Version)
	fmt.Fprintf(w, "Load ID:   %s\n", s.LoadID)
	fmt.Fprintf(w, "Records:   %d\n", s.Records)
	if !s.LoadedAt.IsZero() {
		fmt.Fprintf(w, "Loaded At: %s\n", s.LoadedAt.Format("2006-01-02 15:04:05"))
	}
	printDiagnostics(w, s.Diagnostics)
}

// printDiagnostics lists what a build recovered from. Nothing is printed
// for empty diagnostics.
func printDiagnostics(w io.Writer, d *model.Diagnostics) {
	if d.Empty() {
		return
	}
	fmt.Fprintln(w, ui.RenderMuted("Diagnostics:"))
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "  %s (%d): %s\n", title, len(items), strings.Join(items, ", "))
	}
	section("unresolved types", d.UnresolvedTypes)
	section("orphaned codes", d.OrphanedCodes)
	section("unmatched codes", d.UnmatchedCodes)
	section("malformed codes", d.MalformedCodes)
}

// printTree renders a forest as an ASCII tree. Roots are printed flush
// left; descendants hang off box-drawing connectors.
func printTree(w io.Writer, nodes []*model.TreeItemNode) {
	for _, n := range nodes {
		fmt.Fprintln(w, treeLine(n))
		printBranches(w, n.Children, "")
	}
}

func printBranches(w io.Writer, nodes []*model.TreeItemNode, prefix string) {
	for i, n := range nodes {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(nodes)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, treeLine(n))
		printBranches(w, n.Children, childPrefix)
	}
}

func treeLine(n *model.TreeItemNode) string {
	switch {
	case n.FilterType == model.FilterNone && n.Label != "":
		// Grouping nodes carry no name of their own.
		return ui.RenderMuted(n.Label)
	case n.Label == model.LabelAddedDependency:
		return ui.RenderChange(true, "+ "+n.Name)
	case n.Label == model.LabelDeletedDependency:
		return ui.RenderChange(false, "- "+n.Name)
	case n.Label == "":
		return ui.RenderType(n.FilterType, n.Name)
	}
	return ui.RenderType(n.FilterType, n.Name) + " " + ui.RenderMuted("("+n.Label+")")
}
