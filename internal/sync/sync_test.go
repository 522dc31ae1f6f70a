package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/adcl/internal/changelog"
	"github.com/alfredjeanlab/adcl/internal/model"
)

// mockDestination records calls to Write.
type mockDestination struct {
	writes atomic.Int64
	last   atomic.Value // *Export
	fail   atomic.Bool
}

func (d *mockDestination) Write(_ context.Context, exp *Export) error {
	d.writes.Add(1)
	if d.fail.Load() {
		return errors.New("bucket unavailable")
	}
	cp := *exp
	cp.Data = append([]byte(nil), exp.Data...)
	d.last.Store(&cp)
	return nil
}

// staticSource serves a snapshot that tests can swap.
type staticSource struct {
	mu   gosync.Mutex
	snap *changelog.Snapshot
}

func (s *staticSource) Snapshot() *changelog.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *staticSource) set(snap *changelog.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testSnapshot(loadID string) *changelog.Snapshot {
	return &changelog.Snapshot{
		LoadID:  loadID,
		Project: "shop",
		Version: "1.1",
		Records: []*model.Record{
			{Code: "root", FilterType: model.FilterProject, Label: model.LabelProject},
			{Text: "cart", Path: "cart", Code: "root.cart", FilterType: model.FilterPackage, Label: model.LabelPackage},
		},
	}
}

func TestSchedulerStartStop(t *testing.T) {
	src := &staticSource{snap: testSnapshot("ld-1")}
	dest := &mockDestination{}

	sched := NewScheduler(src, []Destination{dest}, 20*time.Millisecond, testLogger())
	sched.Start()
	time.Sleep(50 * time.Millisecond)
	src.set(testSnapshot("ld-2"))
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	// One write per snapshot, however many ticks passed.
	if writes := dest.writes.Load(); writes != 2 {
		t.Fatalf("expected 2 writes, got %d", writes)
	}

	exp, ok := dest.last.Load().(*Export)
	if !ok {
		t.Fatal("expected an export")
	}
	if exp.LoadID != "ld-2" || exp.Project != "shop" || exp.Version != "1.1" {
		t.Fatalf("unexpected export: %+v", exp)
	}
	// 1 header + 2 records
	if lines := nonEmptyLines(string(exp.Data)); len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(&staticSource{}, nil, time.Minute, testLogger())
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSchedulerNothingLoaded(t *testing.T) {
	dest := &mockDestination{}
	sched := NewScheduler(&staticSource{}, []Destination{dest}, time.Minute, nil)

	if sched.syncOnce(context.Background()) {
		t.Fatal("expected no export without a snapshot")
	}
	if dest.writes.Load() != 0 {
		t.Fatalf("expected no writes, got %d", dest.writes.Load())
	}
}

func TestSchedulerMultipleDestinations(t *testing.T) {
	src := &staticSource{snap: testSnapshot("ld-1")}
	dest1 := &mockDestination{}
	dest2 := &mockDestination{}

	sched := NewScheduler(src, []Destination{dest1, dest2}, time.Second, testLogger())
	sched.Start()
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	if dest1.writes.Load() != 1 {
		t.Fatal("dest1 expected 1 write")
	}
	if dest2.writes.Load() != 1 {
		t.Fatal("dest2 expected 1 write")
	}
}

func TestSchedulerRetriesFailedExport(t *testing.T) {
	src := &staticSource{snap: testSnapshot("ld-1")}
	dest := &mockDestination{}
	dest.fail.Store(true)
	sched := NewScheduler(src, []Destination{dest}, time.Minute, testLogger())
	ctx := context.Background()

	if !sched.syncOnce(ctx) {
		t.Fatal("expected an export attempt")
	}
	dest.fail.Store(false)
	if !sched.syncOnce(ctx) {
		t.Fatal("expected the failed snapshot to be retried")
	}
	if sched.syncOnce(ctx) {
		t.Fatal("expected the exported snapshot to be skipped")
	}
	if dest.writes.Load() != 2 {
		t.Fatalf("expected 2 writes, got %d", dest.writes.Load())
	}
}

func TestSchedulerRetriesOnlyFailedDestination(t *testing.T) {
	src := &staticSource{snap: testSnapshot("ld-1")}
	good := &mockDestination{}
	bad := &mockDestination{}
	bad.fail.Store(true)
	sched := NewScheduler(src, []Destination{good, bad}, time.Minute, testLogger())
	ctx := context.Background()

	if !sched.syncOnce(ctx) {
		t.Fatal("expected an export attempt")
	}
	bad.fail.Store(false)
	if !sched.syncOnce(ctx) {
		t.Fatal("expected a retry for the failed destination")
	}
	if good.writes.Load() != 1 || bad.writes.Load() != 2 {
		t.Fatalf("writes good=%d bad=%d, want 1 and 2", good.writes.Load(), bad.writes.Load())
	}

	src.set(testSnapshot("ld-2"))
	if !sched.syncOnce(ctx) {
		t.Fatal("expected the new load to be exported")
	}
	if good.writes.Load() != 2 || bad.writes.Load() != 3 {
		t.Fatalf("writes good=%d bad=%d, want 2 and 3", good.writes.Load(), bad.writes.Load())
	}
}

func TestDestinationName(t *testing.T) {
	if got := destinationName(3, &mockDestination{}); got != "#3" {
		t.Errorf("unnamed destination = %q", got)
	}
	if got := destinationName(0, &S3Destination{bucket: "exports", key: "{project}.jsonl"}); got != "s3://exports/{project}.jsonl" {
		t.Errorf("s3 destination = %q", got)
	}
	if got := destinationName(1, NewGitDestination("/srv/repo", "changelog.jsonl", "main")); got != "git:/srv/repo@main:changelog.jsonl" {
		t.Errorf("git destination = %q", got)
	}
}
