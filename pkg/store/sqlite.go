package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/praetorian-inc/searchbin/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddScan records the start of a scan.
func (s *SQLiteStore) AddScan(scan *Scan) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO scans (source, pattern, start_offset, end_offset, buffer_size, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		scan.Source,
		scan.Pattern,
		scan.Start,
		scan.End,
		scan.BufferSize,
		scan.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading scan id: %w", err)
	}
	scan.ID = id
	return id, nil
}

// FinishScan records the outcome of a scan.
func (s *SQLiteStore) FinishScan(id int64, matches int, reason string) error {
	res, err := s.db.Exec(`UPDATE scans SET match_count = ?, stop_reason = ? WHERE id = ?`, matches, reason, id)
	if err != nil {
		return fmt.Errorf("updating scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating scan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scan %d not found", id)
	}
	return nil
}

// AddMatch stores a match record.
func (s *SQLiteStore) AddMatch(scanID int64, m *types.Match) error {
	var contextStart *int64
	var context []byte
	if m.Snippet != nil {
		start := m.Snippet.Start
		contextStart = &start
		context = m.Snippet.Data
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO matches (scan_id, match_offset, length, source, context_start, context)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		scanID,
		m.Offset,
		m.Length,
		m.Source,
		contextStart,
		context,
	)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}

	return nil
}

// GetScans retrieves all scans.
func (s *SQLiteStore) GetScans() ([]*Scan, error) {
	rows, err := s.db.Query(`
		SELECT id, source, pattern, start_offset, end_offset, buffer_size, started_at, match_count, stop_reason
		FROM scans
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		var sc Scan
		var startedAt string

		err := rows.Scan(
			&sc.ID,
			&sc.Source,
			&sc.Pattern,
			&sc.Start,
			&sc.End,
			&sc.BufferSize,
			&startedAt,
			&sc.Matches,
			&sc.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning scan: %w", err)
		}

		sc.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing scan time: %w", err)
		}

		scans = append(scans, &sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scans: %w", err)
	}

	return scans, nil
}

// GetMatches retrieves matches for a scan.
func (s *SQLiteStore) GetMatches(scanID int64) ([]*types.Match, error) {
	rows, err := s.db.Query(`
		SELECT match_offset, length, source, context_start, context
		FROM matches
		WHERE scan_id = ?
		ORDER BY match_offset
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []*types.Match
	for rows.Next() {
		var m types.Match
		var contextStart sql.NullInt64
		var context []byte

		if err := rows.Scan(&m.Offset, &m.Length, &m.Source, &contextStart, &context); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}

		if contextStart.Valid {
			m.Snippet = &types.Snippet{Start: contextStart.Int64, Data: context}
		}

		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	return matches, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
