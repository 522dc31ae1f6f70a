package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/adcl/internal/client"
	"github.com/alfredjeanlab/adcl/internal/ui"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree [query]",
	Short: "Show the loaded changelog as a tree",
	Long: `Show the loaded changelog as a tree.

The optional query filters the tree: a plain substring, or a substring
prefixed with a type tag (p: package, c: class, m: method, d: dependency).`,
	GroupID: "views",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		display, _ := cmd.Flags().GetString("display")
		req := &client.ViewRequest{Display: display}
		if len(args) == 1 {
			req.Filter = args[0]
		}

		resp, err := viewClient.GetTree(context.Background(), req)
		if err != nil {
			return fmt.Errorf("fetching tree: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		if len(resp.Nodes) == 0 {
			fmt.Fprintln(out, "No changes match.")
		} else {
			printTree(out, resp.Nodes)
		}
		fmt.Fprintln(out, ui.RenderMuted(fmt.Sprintf("(%s)", resp.Display.Title())))
		printDiagnostics(out, resp.Diagnostics)
		return nil
	},
}

func init() {
	treeCmd.Flags().StringP("display", "d", "", "display policy: standard, compact or flatten (server default if empty)")
}
