// Package store persists evaluation runs and their scored pairs to PostgreSQL.
package store

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const maxRuns = 500

// Store persists evaluation runs to PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the evaluation database at connStr and applies pending
// migrations.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM schema_version`)
	if err = row.Scan(&current); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for i := current + 1; i < len(entries); i++ {
		data, readErr := migrationFS.ReadFile("migrations/" + entries[i].Name())
		if readErr != nil {
			return fmt.Errorf("read migration %d: %w", i, readErr)
		}
		if _, execErr := db.Exec(string(data)); execErr != nil {
			return fmt.Errorf("migration %d: %w", i, execErr)
		}
		if _, execErr := db.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, i); execErr != nil {
			return fmt.Errorf("migration %d record: %w", i, execErr)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run in "running" status and prunes old runs.
func (s *Store) CreateRun(r Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, name, source, started_at, status) VALUES ($1, $2, $3, $4, 'running')`,
		r.ID, r.Name, r.Source, r.StartedAt.UTC(),
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT $1)`,
		maxRuns,
	)
	return err
}

// FinishRun sets the run's final totals and status.
func (s *Store) FinishRun(r Run) error {
	var wer sql.NullFloat64
	if r.WER != nil {
		wer = sql.NullFloat64{Float64: *r.WER, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE runs SET duration_ms = $1, pairs = $2, errors = $3, reference_tokens = $4, wer = $5, status = $6 WHERE id = $7`,
		r.DurationMs, r.Pairs, r.Errors, r.ReferenceTokens, wer, r.Status, r.ID,
	)
	return err
}

// AddPair inserts one scored pair.
func (s *Store) AddPair(p Pair) error {
	_, err := s.db.Exec(
		`INSERT INTO pairs (run_id, seq, prediction, reference, errors, reference_tokens, substitutions, insertions, deletions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.RunID, p.Seq, p.Prediction, p.Reference, p.Errors, p.ReferenceTokens,
		p.Substitutions, p.Insertions, p.Deletions,
	)
	return err
}

// ListRuns returns runs ordered newest first.
func (s *Store) ListRuns(limit, offset int) ([]Run, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(`
		SELECT id, name, source, started_at, duration_ms, pairs, errors, reference_tokens, wer, status
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		runs = append(runs, r)
	}
	return runs, total, rows.Err()
}

// GetRun returns a single run with its pairs in batch order.
func (s *Store) GetRun(id string) (*Run, []Pair, error) {
	row := s.db.QueryRow(
		`SELECT id, name, source, started_at, duration_ms, pairs, errors, reference_tokens, wer, status FROM runs WHERE id = $1`, id,
	)
	r, err := scanRun(row)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(
		`SELECT run_id, seq, prediction, reference, errors, reference_tokens, substitutions, insertions, deletions
		 FROM pairs WHERE run_id = $1 ORDER BY seq ASC`,
		id,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var pairs []Pair
	for rows.Next() {
		var p Pair
		if err = rows.Scan(&p.RunID, &p.Seq, &p.Prediction, &p.Reference, &p.Errors,
			&p.ReferenceTokens, &p.Substitutions, &p.Insertions, &p.Deletions); err != nil {
			return nil, nil, err
		}
		pairs = append(pairs, p)
	}
	return &r, pairs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var wer sql.NullFloat64
	err := row.Scan(&r.ID, &r.Name, &r.Source, &r.StartedAt, &r.DurationMs,
		&r.Pairs, &r.Errors, &r.ReferenceTokens, &wer, &r.Status)
	if err != nil {
		return Run{}, err
	}
	if wer.Valid {
		r.WER = &wer.Float64
	}
	return r, nil
}
