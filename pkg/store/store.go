package store

import (
	"fmt"
	"time"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// Store persists scans and their matches.
// Backends: in-memory and SQLite.
type Store interface {
	// AddScan records the start of a scan and returns its ID.
	AddScan(s *Scan) (int64, error)

	// FinishScan records the outcome of a scan.
	FinishScan(id int64, matches int, reason string) error

	// AddMatch stores a match for a scan.
	AddMatch(scanID int64, m *types.Match) error

	// GetScans retrieves all scans in insertion order.
	GetScans() ([]*Scan, error)

	// GetMatches retrieves the matches of a scan ordered by offset.
	GetMatches(scanID int64) ([]*types.Match, error)

	// Close closes the database connection.
	Close() error
}

// Scan describes one stream scanned with one pattern.
type Scan struct {
	ID         int64
	Source     string
	Pattern    string // hex form, "??" per wildcard
	Start      int64
	End        int64
	BufferSize int
	StartedAt  time.Time
	Matches    int
	Reason     string // empty until finished
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" for the in-memory store (useful for testing).
	Path string
}

// New creates a new Store.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}

	return NewSQLite(cfg.Path)
}

// Recorder adapts a Store to scan events for a single scan.
type Recorder struct {
	store  Store
	scanID int64
}

// NewRecorder starts a scan record and returns a recorder for its events.
func NewRecorder(s Store, scan *Scan) (*Recorder, error) {
	id, err := s.AddScan(scan)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: s, scanID: id}, nil
}

// ScanID returns the ID of the recorded scan.
func (r *Recorder) ScanID() int64 { return r.scanID }

// Match stores a match.
func (r *Recorder) Match(m *types.Match) error {
	return r.store.AddMatch(r.scanID, m)
}

// Progress is not persisted.
func (r *Recorder) Progress(source string, offset int64) error { return nil }

// MaxMatches is recorded through Finish.
func (r *Recorder) MaxMatches(source string) error { return nil }

// Flush is a no-op; every match is written immediately.
func (r *Recorder) Flush() error { return nil }

// Finish records the scan outcome.
func (r *Recorder) Finish(matches int, reason string) error {
	return r.store.FinishScan(r.scanID, matches, reason)
}
