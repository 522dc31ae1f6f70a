package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alfredjeanlab/adcl/internal/changelog"
	"github.com/alfredjeanlab/adcl/internal/client"
	"github.com/alfredjeanlab/adcl/internal/graph"
	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [query]",
	Short: "Show the loaded changelog as a node/edge graph",
	Long: `Show the loaded changelog as a node/edge graph.

The initial layout clusters every top-level entity with its descendants.
--open takes cluster or node ids and toggles them in order: a cluster
opens, a node is clustered with its children.`,
	GroupID: "views",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		showNodes, _ := cmd.Flags().GetBool("nodes")
		open, _ := cmd.Flags().GetStringSlice("open")
		req := &client.ViewRequest{}
		if len(args) == 1 {
			req.Filter = args[0]
		}

		resp, err := viewClient.GetGraph(ctx, req)
		if err != nil {
			return fmt.Errorf("fetching graph: %w", err)
		}

		if len(open) > 0 {
			clusters, err := openClusters(ctx, req.Filter, open)
			if err != nil {
				return err
			}
			resp.Clusters = clusters
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		printGraph(out, resp, showNodes)
		return nil
	},
}

// openClusters rebuilds the graph from the loaded records and replays the
// toggles on a fresh top-level layout.
func openClusters(ctx context.Context, query string, ids []string) ([]*model.GraphCluster, error) {
	summary, err := changelogClient.GetChangelog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching changelog: %w", err)
	}
	records, err := changelogClient.GetRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	snap := &changelog.Snapshot{
		LoadID:  summary.LoadID,
		Project: summary.Project,
		Version: summary.Version,
		Records: records,
	}
	return toggleClusters(snap.BuildGraph(query), ids)
}

func toggleClusters(g *graph.Graph, ids []string) ([]*model.GraphCluster, error) {
	w := graph.NewStateWidget()
	c := graph.NewController(g, w)
	c.ClusterTopLevel()
	for _, id := range ids {
		if err := c.Toggle(id); err != nil {
			return nil, err
		}
	}
	return w.Clusters(), nil
}

func printGraph(out io.Writer, resp *model.GraphResponse, showNodes bool) {
	fmt.Fprintf(out, "Nodes: %d  Edges: %d  Dependencies: +%d -%d\n",
		resp.Stats.TotalNodes,
		resp.Stats.TotalEdges,
		resp.Stats.AddedDependencies,
		resp.Stats.DeletedDependencies,
	)

	if len(resp.Clusters) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CLUSTER\tLABEL\tMEMBERS\tNESTED")
		for _, c := range resp.Clusters {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", c.ID, c.Label, len(c.Members), len(c.Clusters))
		}
		w.Flush()
	}

	if showNodes {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tCOLOR")
		for _, n := range resp.Nodes {
			fmt.Fprintf(w, "%d\t%s\t%s\n", n.ID, n.Label, n.Color)
		}
		w.Flush()

		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FROM\tTO\tLABEL")
		for _, e := range resp.Edges {
			fmt.Fprintf(w, "%d\t%d\t%s\n", e.From, e.To, e.Label)
		}
		w.Flush()
	}

	printDiagnostics(out, resp.Diagnostics)
}

func init() {
	graphCmd.Flags().Bool("nodes", false, "also list nodes and edges")
	graphCmd.Flags().StringSlice("open", nil, "cluster or node ids to toggle, in order")
}
