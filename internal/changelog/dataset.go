package changelog

import (
	"sync"
	"time"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// Snapshot is one loaded changelog. It is immutable once published; views
// are derived from it without modifying it.
type Snapshot struct {
	LoadID      string
	Project     string
	Version     string
	Records     []*model.Record
	LoadedAt    time.Time
	Diagnostics *model.Diagnostics
}

// Summary describes s for status responses.
func (s *Snapshot) Summary() *model.ChangelogSummary {
	return &model.ChangelogSummary{
		LoadID:      s.LoadID,
		Project:     s.Project,
		Version:     s.Version,
		Records:     len(s.Records),
		LoadedAt:    s.LoadedAt,
		Diagnostics: s.Diagnostics,
	}
}

// Dataset holds the canonical snapshot. It has a single writer, the
// Loader, which replaces the snapshot wholesale; readers pull the current
// snapshot or subscribe to replacements.
type Dataset struct {
	mu     sync.RWMutex
	snap   *Snapshot
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(*Snapshot)
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Snapshot returns the current snapshot, or nil before the first load.
func (d *Dataset) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Replace installs s and notifies subscribers.
func (d *Dataset) Replace(s *Snapshot) {
	d.set(s)
	d.notify(s)
}

// Subscribe registers fn to be called, in registration order, after every
// replacement. Call the returned function to unsubscribe.
func (d *Dataset) Subscribe(fn func(*Snapshot)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs = append(d.subs, subscriber{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			for i, s := range d.subs {
				if s.id == id {
					d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (d *Dataset) set(s *Snapshot) {
	d.mu.Lock()
	d.snap = s
	d.mu.Unlock()
}

// notify runs subscribers outside the lock so they may read the dataset.
func (d *Dataset) notify(s *Snapshot) {
	d.mu.RLock()
	subs := make([]subscriber, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()
	for _, sub := range subs {
		sub.fn(s)
	}
}
