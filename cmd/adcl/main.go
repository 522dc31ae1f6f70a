package main

import (
	"fmt"
	"os"

	"github.com/alfredjeanlab/adcl/internal/client"
	"github.com/alfredjeanlab/adcl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	httpURL    string
	transport  string
	authToken  string
	jsonOutput bool
	noColor    bool

	// changelogClient always talks HTTP; viewClient follows --transport.
	changelogClient client.ChangelogClient
	viewClient      client.ViewClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("ADCL_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultServer() string {
	if s := os.Getenv("ADCL_SERVER"); s != "" {
		return s
	}
	if a := activeRemoteGRPCAddr(); a != "" {
		return a
	}
	return "localhost:9090"
}

func defaultToken() string {
	if s := os.Getenv("ADCL_AUTH_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

// skipClient overrides PersistentPreRunE for commands that never contact
// the server.
func skipClient(cmd *cobra.Command, args []string) error { return nil }

var rootCmd = &cobra.Command{
	Use:          "adcl <command>",
	Short:        "CLI client for the dependency changelog service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.ColorEnabled(cmd.OutOrStdout()) {
			ui.ForceNoColor()
		}
		hc := client.NewHTTPClient(httpURL, authToken)
		changelogClient = hc
		switch transport {
		case "http":
			viewClient = hc
		case "grpc":
			c, err := client.NewGRPCClient(serverAddr, authToken)
			if err != nil {
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			viewClient = c
		default:
			return fmt.Errorf("unknown transport %q (must be http or grpc)", transport)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if viewClient != nil {
			viewClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", defaultServer(), "gRPC server address")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "http", "transport for load and view commands (http or grpc)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "changelog", Title: "Changelogs:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Changelogs
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statusCmd)

	// Views
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
