// Package audit persists plausibility verdicts so past verifications can be
// listed and exported. Backed by pure-Go SQLite, zero CGO required.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/gexlabs/docverify/internal/plausibility"
)

// Verification is one stored verdict.
type Verification struct {
	ID        string                `json:"id"`
	PlantID   string                `json:"plant_id"`
	IsValid   bool                  `json:"is_valid"`
	SealHash  *string               `json:"seal_hash"`
	Verdict   *plausibility.Verdict `json:"verdict"`
	CreatedAt time.Time             `json:"created_at"`
}

// ErrNotFound is returned by Get for unknown verification IDs.
var ErrNotFound = errors.New("audit: verification not found")

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a Store on a local SQLite file. A single shared connection
// serializes writers, avoiding SQLITE_BUSY from concurrent requests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}, nil
}

// Init creates the schema.
func (s *Store) Init(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		plant_id TEXT NOT NULL,
		is_valid INTEGER NOT NULL,
		seal_hash TEXT,
		verdict TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("audit: create table: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save stores one verdict and returns the stored row.
func (s *Store) Save(ctx context.Context, plantID string, v *plausibility.Verdict) (*Verification, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("audit: encode verdict: %w", err)
	}

	rec := &Verification{
		ID:        uuid.New().String(),
		PlantID:   plantID,
		IsValid:   v.IsValid,
		SealHash:  v.SealHash,
		Verdict:   v,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verifications (id, plant_id, is_valid, seal_hash, verdict, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PlantID, rec.IsValid, rec.SealHash, string(raw), rec.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("audit: insert verification: %w", err)
	}

	s.logger.Debug("audit: verification saved", "id", rec.ID, "plant_id", plantID, "is_valid", v.IsValid)
	return rec, nil
}

// List returns the most recent verifications, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Verification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plant_id, is_valid, seal_hash, verdict, created_at
		 FROM verifications ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list verifications: %w", err)
	}
	defer rows.Close()

	var out []Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: list verifications: %w", err)
	}
	return out, nil
}

// Get returns one verification by ID.
func (s *Store) Get(ctx context.Context, id string) (*Verification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plant_id, is_valid, seal_hash, verdict, created_at
		 FROM verifications WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("audit: get verification: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("audit: get verification: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanVerification(rows)
}

func scanVerification(rows *sql.Rows) (*Verification, error) {
	var (
		v       Verification
		isValid int
		seal    sql.NullString
		verdict string
		created int64
	)
	if err := rows.Scan(&v.ID, &v.PlantID, &isValid, &seal, &verdict, &created); err != nil {
		return nil, fmt.Errorf("audit: scan verification: %w", err)
	}
	v.IsValid = isValid != 0
	if seal.Valid {
		v.SealHash = &seal.String
	}
	v.CreatedAt = time.Unix(created, 0).UTC()
	if err := json.Unmarshal([]byte(verdict), &v.Verdict); err != nil {
		return nil, fmt.Errorf("audit: decode verdict: %w", err)
	}
	return &v, nil
}
