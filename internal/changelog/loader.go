package changelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/adcl/internal/events"
	"github.com/alfredjeanlab/adcl/internal/idgen"
	"github.com/alfredjeanlab/adcl/internal/model"
)

// ErrSuperseded is returned by Load when a newer load was requested before
// this one could commit. Its result is discarded.
var ErrSuperseded = errors.New("changelog load superseded by a newer load")

// Source answers the two changelog queries of the query layer.
type Source interface {
	ListChangedStructure(ctx context.Context, project, version string) ([]*model.StructureRow, error)
	ListChangedDependencies(ctx context.Context, project, version string) ([]*model.DependencyRow, error)
}

// Loader fetches a changelog selection and commits it to a Dataset. Both
// queries run concurrently and the dataset is only replaced once both have
// returned. Only the most recently requested load may commit: starting a
// load cancels the one in flight.
type Loader struct {
	src       Source
	data      *Dataset
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	// commitMu orders commits so subscribers see replacements in commit
	// order. Subscribers must not call Load.
	commitMu sync.Mutex
}

// NewLoader returns a loader committing to data. A nil publisher disables
// events; a nil logger uses slog.Default().
func NewLoader(src Source, data *Dataset, publisher events.Publisher, logger *slog.Logger) *Loader {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		src:       src,
		data:      data,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Dataset returns the dataset the loader commits to.
func (l *Loader) Dataset() *Dataset {
	return l.data
}

// Load fetches the changelog of project at version, assembles it and
// replaces the dataset. It returns ErrSuperseded if another Load started
// before this one committed.
func (l *Loader) Load(ctx context.Context, project, version string) (*Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if l.gen == gen {
			l.cancel = nil
		}
		l.mu.Unlock()
	}()

	var (
		structure []*model.StructureRow
		deps      []*model.DependencyRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := l.src.ListChangedStructure(gctx, project, version)
		if err != nil {
			return fmt.Errorf("list changed structure: %w", err)
		}
		structure = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.src.ListChangedDependencies(gctx, project, version)
		if err != nil {
			return fmt.Errorf("list changed dependencies: %w", err)
		}
		deps = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		if l.superseded(gen) {
			return nil, ErrSuperseded
		}
		return nil, fmt.Errorf("load changelog %s@%s: %w", project, version, err)
	}

	records, diag := Assemble(project, structure, deps)
	loadID, err := idgen.NewLoadID()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		LoadID:      loadID,
		Project:     project,
		Version:     version,
		Records:     records,
		LoadedAt:    l.now().UTC(),
		Diagnostics: diag,
	}

	l.commitMu.Lock()
	l.mu.Lock()
	if l.gen != gen {
		l.mu.Unlock()
		l.commitMu.Unlock()
		return nil, ErrSuperseded
	}
	l.data.set(snap)
	l.mu.Unlock()
	l.data.notify(snap)
	l.commitMu.Unlock()

	l.logger.Info("changelog loaded",
		"load_id", snap.LoadID, "project", project, "version", version,
		"records", len(records), "unresolved", len(diag.UnresolvedTypes))

	if err := l.publisher.Publish(ctx, events.TopicChangelogLoaded, events.ChangelogLoaded{
		LoadID:      snap.LoadID,
		Project:     project,
		Version:     version,
		Records:     len(records),
		Diagnostics: diag,
	}); err != nil {
		l.logger.Warn("failed to publish event", "topic", events.TopicChangelogLoaded, "err", err)
	}
	return snap, nil
}

func (l *Loader) superseded(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen != gen
}
