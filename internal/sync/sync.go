// Package sync periodically exports the loaded changelog to external
// destinations.
package sync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/adcl/internal/changelog"
)

// Export is one rendered snapshot handed to destinations.
type Export struct {
	LoadID  string
	Project string
	Version string
	Data    []byte // JSONL payload
}

// Destination receives exports. Destinations that implement fmt.Stringer
// are named by it in logs.
type Destination interface {
	Write(ctx context.Context, exp *Export) error
}

// SnapshotSource yields the currently loaded changelog, or nil.
type SnapshotSource interface {
	Snapshot() *changelog.Snapshot
}

// Scheduler exports the loaded snapshot on a fixed interval. Each
// destination receives a given load once; a destination that failed is
// retried on the next tick without resending to the others.
type Scheduler struct {
	source       SnapshotSource
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// delivered[i] is the last load written to destinations[i]. Only the
	// run goroutine touches it.
	delivered []string
}

func NewScheduler(src SnapshotSource, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		source:       src,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
		delivered:    make([]string, len(destinations)),
	}
}

// Start exports once immediately and then on every tick until Stop.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for an in-flight export.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.syncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

// syncOnce writes the current snapshot to every destination that has not
// received it yet. It reports whether any write was attempted.
func (s *Scheduler) syncOnce(ctx context.Context) bool {
	snap := s.source.Snapshot()
	if snap == nil {
		s.logger.Debug("sync skipped: no changelog loaded")
		return false
	}

	var pending []int
	for i := range s.destinations {
		if s.delivered[i] != snap.LoadID {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return false
	}

	var buf bytes.Buffer
	if err := ExportJSONL(snap, &buf); err != nil {
		s.logger.Error("sync export failed", "load_id", snap.LoadID, "err", err)
		return false
	}
	exp := &Export{LoadID: snap.LoadID, Project: snap.Project, Version: snap.Version, Data: buf.Bytes()}

	ok := make([]bool, len(pending))
	var g errgroup.Group
	for n, i := range pending {
		dest := s.destinations[i]
		g.Go(func() error {
			if err := dest.Write(ctx, exp); err != nil {
				s.logger.Error("sync destination write failed", "destination", destinationName(i, dest), "err", err)
				return nil
			}
			ok[n] = true
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for n, i := range pending {
		if ok[n] {
			s.delivered[i] = snap.LoadID
		} else {
			failed++
		}
	}
	s.logger.Info("sync completed",
		"load_id", snap.LoadID, "destinations", len(pending),
		"failed", failed, "bytes", len(exp.Data))
	return true
}

func destinationName(i int, d Destination) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("#%d", i)
}
