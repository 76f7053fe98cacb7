// Package snapshot holds the single most recent set of device reports
// pushed by the bridge. The store is the only mutable server-side state:
// one whole-value cell, replaced atomically on every ingest, with no
// persistence and no per-device merging.
package snapshot

import (
	"sync"
	"time"

	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
)

// Snapshot is the stored value: the reports from the last successful ingest
// and when they arrived. CapturedAt is the zero time iff no ingest has ever
// happened; an ingested empty slice still stamps CapturedAt.
type Snapshot struct {
	Reports    []report.Device
	CapturedAt time.Time
}

// Store is a mutex-guarded snapshot cell, safe for concurrent readers and a
// writer. Set replaces the whole value so readers can never observe a torn
// snapshot.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	set  bool

	now func() time.Time // test seam
}

// New creates an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// Set replaces the stored snapshot with the given reports and stamps the
// capture time. Reports are stored as-is; shape problems are the callers'
// concern. The slice is copied so later caller mutation cannot tear reads.
func (s *Store) Set(reports []report.Device) {
	copied := make([]report.Device, len(reports))
	copy(copied, reports)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Reports: copied, CapturedAt: s.now()}
	s.set = true
}

// Get returns the current snapshot. The returned slice must be treated as
// read-only.
func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// IsEmpty reports whether no successful Set has ever occurred. An ingested
// empty report slice makes the store non-empty; only the pre-ingest state
// is empty.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.set
}
