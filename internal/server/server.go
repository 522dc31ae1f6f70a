package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alfredjeanlab/adcl/internal/changelog"
	"github.com/alfredjeanlab/adcl/internal/events"
	"github.com/alfredjeanlab/adcl/internal/model"
	"github.com/alfredjeanlab/adcl/internal/store"
)

// ChangelogServer holds the state shared by the HTTP and gRPC transports:
// the query layer, the loader owning the canonical dataset, and the event
// fan-out.
type ChangelogServer struct {
	store          store.Store
	loader         *changelog.Loader
	publisher      events.Publisher
	sseHub         *sseHub
	defaultDisplay model.DisplayOption

	unsubscribe func()
}

// NewChangelogServer returns a server backed by the given store and
// publisher. Loads are committed to a fresh dataset; every replacement is
// broadcast to SSE clients.
func NewChangelogServer(s store.Store, p events.Publisher) *ChangelogServer {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	srv := &ChangelogServer{
		store:          s,
		publisher:      p,
		sseHub:         newSSEHub(),
		defaultDisplay: model.DefaultDisplay,
	}
	srv.loader = changelog.NewLoader(s, changelog.NewDataset(), p, slog.Default())
	srv.unsubscribe = srv.loader.Dataset().Subscribe(func(snap *changelog.Snapshot) {
		srv.broadcastEvent(events.TopicChangelogLoaded, loadedEvent(snap))
	})
	return srv
}

// SetDefaultDisplay sets the display option used by tree requests that
// name none.
func (s *ChangelogServer) SetDefaultDisplay(d model.DisplayOption) error {
	if !d.IsValid() || d == model.DisplayGraph {
		return fmt.Errorf("invalid default display %q", d)
	}
	s.defaultDisplay = d
	return nil
}

// Dataset returns the dataset holding the loaded changelog.
func (s *ChangelogServer) Dataset() *changelog.Dataset {
	return s.loader.Dataset()
}

// Close detaches the server from its dataset.
func (s *ChangelogServer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *ChangelogServer) recordAndPublish(ctx context.Context, topic, project, version string, event any) {
	s.recordEvent(ctx, topic, project, version, event)
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "project", project, "error", err)
	}
	s.broadcastEvent(topic, event)
}

func (s *ChangelogServer) recordEvent(ctx context.Context, topic, project, version string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "project", project, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:   topic,
		Project: project,
		Version: version,
		Payload: payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "project", project, "error", err)
	}
}

func loadedEvent(snap *changelog.Snapshot) events.ChangelogLoaded {
	return events.ChangelogLoaded{
		LoadID:      snap.LoadID,
		Project:     snap.Project,
		Version:     snap.Version,
		Records:     len(snap.Records),
		Diagnostics: snap.Diagnostics,
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// notFoundError indicates a missing project, version or changelog.
// Transport layers map this to 404 / NotFound.
type notFoundError string

func (e notFoundError) Error() string { return string(e) + " not found" }

// NotFound marks the error for callers that match on behaviour.
func (e notFoundError) NotFound() bool { return true }

// storeError converts a store lookup failure into a notFoundError when the
// entity is missing and wraps it otherwise.
func storeError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundError(entity)
	}
	return fmt.Errorf("get %s: %w", entity, err)
}

func validName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return inputError(field + " is required")
	}
	if strings.ContainsAny(v, "/ \t\n") {
		return inputError(field + " must not contain slashes or whitespace")
	}
	return nil
}

type createProjectInput struct {
	Name     string `json:"name"`
	Internal *bool  `json:"internal,omitempty"`
}

// createProject registers a project. Projects are internal unless stated
// otherwise; only internal projects are listed.
func (s *ChangelogServer) createProject(ctx context.Context, in createProjectInput) (*model.Project, error) {
	if err := validName("name", in.Name); err != nil {
		return nil, err
	}
	p := &model.Project{Name: in.Name, Internal: true}
	if in.Internal != nil {
		p.Internal = *in.Internal
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.recordAndPublish(ctx, events.TopicProjectCreated, p.Name, "", events.ProjectCreated{Project: p})
	return p, nil
}

func (s *ChangelogServer) listProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	return projects, nil
}

// listVersions returns the changelog versions of project, oldest first.
func (s *ChangelogServer) listVersions(ctx context.Context, project string) ([]string, error) {
	if _, err := s.store.GetProject(ctx, project); err != nil {
		return nil, storeError(err, "project")
	}
	versions, err := s.store.ListVersions(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// importResult reports what importChanges stored.
type importResult struct {
	Project      string `json:"project"`
	Version      string `json:"version"`
	Structure    int    `json:"structure"`
	Dependencies int    `json:"dependencies"`
}

// importChanges appends version to project and stores the change set in
// one transaction.
func (s *ChangelogServer) importChanges(ctx context.Context, project, version string, cs *model.ChangeSet) (*importResult, error) {
	if err := validName("version", version); err != nil {
		return nil, err
	}
	if cs == nil {
		cs = &model.ChangeSet{}
	}
	prefix := project + "."
	for _, row := range cs.Structure {
		if row == nil || row.Path != project && !strings.HasPrefix(row.Path, prefix) {
			return nil, inputError("structure path must start with the project name")
		}
	}
	for _, row := range cs.Dependencies {
		if row == nil || row.UsedByPath != project && !strings.HasPrefix(row.UsedByPath, prefix) {
			return nil, inputError("dependency used_by_path must start with the project name")
		}
	}
	if _, err := s.store.GetProject(ctx, project); err != nil {
		return nil, storeError(err, "project")
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.AddVersion(ctx, project, version); err != nil {
			return fmt.Errorf("add version: %w", err)
		}
		for _, row := range cs.Structure {
			if err := tx.PutStructure(ctx, project, version, row); err != nil {
				return fmt.Errorf("put structure %s: %w", row.Path, err)
			}
		}
		for _, row := range cs.Dependencies {
			if err := tx.PutDependency(ctx, project, version, row); err != nil {
				return fmt.Errorf("put dependency %s: %w", row.Path, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &importResult{
		Project:      project,
		Version:      version,
		Structure:    len(cs.Structure),
		Dependencies: len(cs.Dependencies),
	}
	s.recordAndPublish(ctx, events.TopicChangelogImported, project, version, events.ChangelogImported{
		Project:      project,
		Version:      version,
		Structure:    res.Structure,
		Dependencies: res.Dependencies,
	})
	return res, nil
}

// loadChangelog selects a changelog and blocks until it has replaced the
// dataset. A load overtaken by a newer one returns changelog.ErrSuperseded.
func (s *ChangelogServer) loadChangelog(ctx context.Context, sel model.Selection) (*model.ChangelogSummary, error) {
	if sel.Project == "" {
		return nil, inputError("project is required")
	}
	if sel.Version == "" {
		return nil, inputError("version is required")
	}
	versions, err := s.listVersions(ctx, sel.Project)
	if err != nil {
		return nil, err
	}
	known := false
	for _, v := range versions {
		if v == sel.Version {
			known = true
			break
		}
	}
	if !known {
		return nil, notFoundError("version " + sel.Version)
	}

	snap, err := s.loader.Load(ctx, sel.Project, sel.Version)
	if err != nil {
		return nil, err
	}
	s.recordEvent(ctx, events.TopicChangelogLoaded, snap.Project, snap.Version, loadedEvent(snap))
	return snap.Summary(), nil
}

// snapshot returns the loaded changelog or a notFoundError before the
// first load.
func (s *ChangelogServer) snapshot() (*changelog.Snapshot, error) {
	snap := s.loader.Dataset().Snapshot()
	if snap == nil {
		return nil, notFoundError("changelog")
	}
	return snap, nil
}

func (s *ChangelogServer) tree(displayArg, query string) (*model.TreeResponse, error) {
	display := s.defaultDisplay
	if displayArg != "" {
		d, err := model.ParseDisplayOption(displayArg)
		if err != nil {
			return nil, inputError(err.Error())
		}
		display = d
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	resp, err := snap.Tree(display, query)
	if errors.Is(err, changelog.ErrGraphDisplay) {
		return nil, inputError(err.Error())
	}
	return resp, err
}

func (s *ChangelogServer) graph(query string) (*model.GraphResponse, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Graph(query), nil
}
