package store

import (
	"context"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// Store defines the query layer for analysed projects and their
// changelogs.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, name string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]*model.Project, error) // internal projects only

	// Versions, oldest first. The first version is the baseline and has
	// no changelog, so ListVersions omits it.
	AddVersion(ctx context.Context, project, version string) error
	ListVersions(ctx context.Context, project string) ([]string, error)

	// Ingestion
	PutStructure(ctx context.Context, project, version string, row *model.StructureRow) error
	PutDependency(ctx context.Context, project, version string, row *model.DependencyRow) error

	// Changelog queries
	ListChangedStructure(ctx context.Context, project, version string) ([]*model.StructureRow, error)
	ListChangedDependencies(ctx context.Context, project, version string) ([]*model.DependencyRow, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	ListEvents(ctx context.Context, project string, limit int) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
