package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/alfredjeanlab/adcl/internal/client"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Short:   "List analysed projects",
	GroupID: "changelog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := changelogClient.ListProjects(context.Background())
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, projects)
		}
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tINTERNAL\tCREATED")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%t\t%s\n", p.Name, p.Internal, p.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var projectCmd = &cobra.Command{
	Use:     "project",
	Short:   "Manage projects",
	GroupID: "changelog",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.CreateProjectRequest{Name: args[0]}
		if cmd.Flags().Changed("external") {
			external, _ := cmd.Flags().GetBool("external")
			internal := !external
			req.Internal = &internal
		}

		p, err := changelogClient.CreateProject(context.Background(), req)
		if err != nil {
			return fmt.Errorf("creating project: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, p)
		}
		fmt.Fprintf(out, "Created project %s\n", p.Name)
		return nil
	},
}

var versionsCmd = &cobra.Command{
	Use:     "versions <project>",
	Short:   "List the versions of a project, oldest first",
	GroupID: "changelog",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := changelogClient.ListVersions(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing versions: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, versions)
		}
		if len(versions) == 0 {
			fmt.Fprintln(out, "No versions.")
			return nil
		}
		for _, v := range versions {
			fmt.Fprintln(out, v)
		}
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:     "events <project>",
	Short:   "Show the recorded events of a project, newest first",
	GroupID: "changelog",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		evts, err := changelogClient.ListEvents(context.Background(), args[0], limit)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, evts)
		}
		if len(evts) == 0 {
			fmt.Fprintln(out, "No events.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTOPIC\tVERSION\tDETAIL")
		for _, e := range evts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Topic, e.Version, e.Detail())
		}
		return w.Flush()
	},
}

func init() {
	projectCreateCmd.Flags().Bool("external", false, "mark the project as external (internal by default)")
	projectCmd.AddCommand(projectCreateCmd)

	eventsCmd.Flags().Int("limit", 20, "maximum number of events (0 for all)")
}
