package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu      sync.RWMutex
	scans   []*Scan
	matches map[int64]map[int64]*types.Match // scan ID -> offset -> match
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		matches: make(map[int64]map[int64]*types.Match),
	}
}

// AddScan records the start of a scan.
func (m *MemoryStore) AddScan(s *Scan) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ID = int64(len(m.scans) + 1)
	stored := *s
	m.scans = append(m.scans, &stored)
	m.matches[s.ID] = make(map[int64]*types.Match)
	return s.ID, nil
}

// FinishScan records the outcome of a scan.
func (m *MemoryStore) FinishScan(id int64, matches int, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 1 || id > int64(len(m.scans)) {
		return fmt.Errorf("scan %d not found", id)
	}
	m.scans[id-1].Matches = matches
	m.scans[id-1].Reason = reason
	return nil
}

// AddMatch stores a match. Duplicate offsets within a scan are ignored.
func (m *MemoryStore) AddMatch(scanID int64, match *types.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOffset, ok := m.matches[scanID]
	if !ok {
		return fmt.Errorf("scan %d not found", scanID)
	}
	if _, exists := byOffset[match.Offset]; exists {
		return nil
	}

	stored := *match
	byOffset[match.Offset] = &stored
	return nil
}

// GetScans retrieves all scans.
func (m *MemoryStore) GetScans() ([]*Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scans := make([]*Scan, len(m.scans))
	for i, s := range m.scans {
		cp := *s
		scans[i] = &cp
	}
	return scans, nil
}

// GetMatches retrieves matches for a scan ordered by offset.
func (m *MemoryStore) GetMatches(scanID int64) ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []*types.Match
	for _, match := range m.matches[scanID] {
		matches = append(matches, match)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Offset < matches[j].Offset
	})
	return matches, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
