package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <project> <version> <file>",
	Short: "Import the structure and dependency changes of a version",
	Long: `Import the structure and dependency changes of a version.

The file holds a JSON change set with "structure" and "dependencies"
arrays. Use - to read it from stdin.`,
	GroupID: "changelog",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, version, file := args[0], args[1], args[2]

		cs, err := readChangeSet(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		res, err := changelogClient.ImportChanges(context.Background(), project, version, cs)
		if err != nil {
			return fmt.Errorf("importing changes: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, res)
		}
		fmt.Fprintf(out, "Imported %s@%s: %d structure rows, %d dependencies\n",
			res.Project, res.Version, res.Structure, res.Dependencies)
		return nil
	},
}

func readChangeSet(stdin io.Reader, file string) (*model.ChangeSet, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var cs model.ChangeSet
	if err := json.NewDecoder(r).Decode(&cs); err != nil {
		return nil, fmt.Errorf("parsing change set %s: %w", file, err)
	}
	return &cs, nil
}
