package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/adcl/internal/client"
	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:     "load <project> <version> | load <project>@<version>",
	Short:   "Select the changelog the views are built from",
	GroupID: "changelog",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := parseSelection(args)
		if err != nil {
			return err
		}

		summary, err := viewClient.LoadChangelog(context.Background(), sel)
		if err != nil {
			return fmt.Errorf("loading changelog: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, summary)
		}
		printSummary(out, summary)
		return nil
	},
}

// parseSelection accepts either two arguments or one project@version
// argument. The version is split at the last @.
func parseSelection(args []string) (model.Selection, error) {
	if len(args) == 2 {
		return model.Selection{Project: args[0], Version: args[1]}, nil
	}
	i := strings.LastIndex(args[0], "@")
	if i <= 0 || i == len(args[0])-1 {
		return model.Selection{}, fmt.Errorf("expected <project>@<version>, got %q", args[0])
	}
	return model.Selection{Project: args[0][:i], Version: args[0][i+1:]}, nil
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the currently loaded changelog",
	GroupID: "changelog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := changelogClient.GetChangelog(context.Background())
		out := cmd.OutOrStdout()
		if client.IsNotFound(err) {
			if jsonOutput {
				return printJSON(out, map[string]any{"loaded": false})
			}
			fmt.Fprintln(out, "No changelog loaded.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetching changelog: %w", err)
		}

		if jsonOutput {
			return printJSON(out, summary)
		}
		printSummary(out, summary)
		return nil
	},
}
