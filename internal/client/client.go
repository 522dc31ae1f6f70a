// Package client provides a transport-agnostic interface for the adcl service
// and HTTP/JSON and gRPC implementations of it.
package client

import (
	"context"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// ViewClient selects changelogs and fetches their views. It is implemented
// by both HTTPClient and GRPCClient.
type ViewClient interface {
	// LoadChangelog selects project@version and returns once the server has
	// replaced its dataset.
	LoadChangelog(ctx context.Context, sel model.Selection) (*model.ChangelogSummary, error)
	GetTree(ctx context.Context, req *ViewRequest) (*model.TreeResponse, error)
	GetGraph(ctx context.Context, req *ViewRequest) (*model.GraphResponse, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ChangelogClient is the interface the adcl CLI commands use to
// communicate with the server. It is implemented by HTTPClient.
type ChangelogClient interface {
	ViewClient

	// Projects
	ListProjects(ctx context.Context) ([]*model.Project, error)
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*model.Project, error)
	ListVersions(ctx context.Context, project string) ([]string, error)
	ImportChanges(ctx context.Context, project, version string, cs *model.ChangeSet) (*ImportResult, error)
	ListEvents(ctx context.Context, project string, limit int) ([]*model.Event, error)

	// Loaded changelog
	GetChangelog(ctx context.Context) (*model.ChangelogSummary, error)
	GetRecords(ctx context.Context) ([]*model.Record, error)
}

// ViewRequest holds the parameters of a tree or graph request. Display is
// ignored for graphs.
type ViewRequest struct {
	Display string `json:"display,omitempty"`
	Filter  string `json:"filter,omitempty"`
}

// CreateProjectRequest holds parameters for creating a project.
type CreateProjectRequest struct {
	Name     string `json:"name"`
	Internal *bool  `json:"internal,omitempty"`
}

// ImportResult reports what an import stored.
type ImportResult struct {
	Project      string `json:"project"`
	Version      string `json:"version"`
	Structure    int    `json:"structure"`
	Dependencies int    `json:"dependencies"`
}
