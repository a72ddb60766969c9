// Package storage persists cost records in a local SQLite database. The
// schema is owned by embedded migrations; every operation runs in its own
// short-lived transaction provided by the driver.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"costbook/internal/core"
	applog "costbook/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNotOpen is returned for operations issued against a closed store.
var ErrNotOpen = errors.New("store is not open")

// SchemaError wraps failures to open the database or bring its schema up to
// date.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return fmt.Sprintf("open cost store: %v", e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

// Store is an explicit handle to one costs database. Callers own the handle
// and pass it to everything that needs persistence; there is no package-level
// singleton, so tests can run isolated stores side by side.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at dbPath and runs migrations.
// Reopening an already-migrated database is a no-op for schema and data.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &SchemaError{Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &SchemaError{Err: fmt.Errorf("open sqlite database: %w", err)}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &SchemaError{Err: fmt.Errorf("ping database: %w", err)}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, &SchemaError{Err: err}
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Add validates the draft, stamps today's date and the creation instant,
// assigns an id and persists the record. Nothing is written when validation
// fails.
func (s *Store) Add(ctx context.Context, draft core.CostDraft) (core.CostRecord, error) {
	if s.db == nil {
		return core.CostRecord{}, ErrNotOpen
	}
	if err := draft.Validate(); err != nil {
		return core.CostRecord{}, err
	}

	createdAt := s.now()
	date := core.DateOf(createdAt)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO costs (sum, currency, category, description, year, month, day, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Sum, string(draft.Currency), draft.Category, draft.Description,
		date.Year, date.Month, date.Day, createdAt)
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("insert cost: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("cost id: %w", err)
	}

	record := core.CostRecord{
		ID:          id,
		Sum:         draft.Sum,
		Currency:    draft.Currency,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        date,
		CreatedAt:   createdAt,
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentStorage).
		WithCost(record.ID, record.Sum, string(record.Currency), record.Category)
	slog.InfoContext(ctx, "Cost saved", fields.ToSlice()...)

	return record, nil
}

// CostsByMonth returns every record stamped with the given year and month.
// The result order is unspecified; an empty month yields an empty slice.
func (s *Store) CostsByMonth(ctx context.Context, year, month int) ([]core.CostRecord, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sum, currency, category, description, year, month, day, created_at
		 FROM costs WHERE year = ? AND month = ?`, year, month)
	if err != nil {
		return nil, fmt.Errorf("query costs by month: %w", err)
	}
	defer rows.Close()
	return scanCosts(rows)
}

// CostsByYear returns every record stamped with the given year.
func (s *Store) CostsByYear(ctx context.Context, year int) ([]core.CostRecord, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sum, currency, category, description, year, month, day, created_at
		 FROM costs WHERE year = ?`, year)
	if err != nil {
		return nil, fmt.Errorf("query costs by year: %w", err)
	}
	defer rows.Close()
	return scanCosts(rows)
}

// CostByID retrieves a single record.
func (s *Store) CostByID(ctx context.Context, id int64) (core.CostRecord, error) {
	if s.db == nil {
		return core.CostRecord{}, ErrNotOpen
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, sum, currency, category, description, year, month, day, created_at
		 FROM costs WHERE id = ?`, id)
	var r core.CostRecord
	var currency string
	err := row.Scan(&r.ID, &r.Sum, &currency, &r.Category, &r.Description,
		&r.Date.Year, &r.Date.Month, &r.Date.Day, &r.CreatedAt)
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("get cost by id: %w", err)
	}
	r.Currency = core.Currency(currency)
	return r, nil
}

// PendingExport returns records not yet written to the export archive, oldest
// first.
func (s *Store) PendingExport(ctx context.Context, limit int) ([]core.CostRecord, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sum, currency, category, description, year, month, day, created_at
		 FROM costs WHERE exported_at IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	defer rows.Close()
	return scanCosts(rows)
}

// MarkExported records that a cost has been archived.
func (s *Store) MarkExported(ctx context.Context, id int64) error {
	if s.db == nil {
		return ErrNotOpen
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE costs SET exported_at = ? WHERE id = ?`, s.now(), id)
	if err != nil {
		return fmt.Errorf("mark cost exported: %w", err)
	}
	slog.InfoContext(ctx, "Cost marked as exported", "id", id)
	return nil
}

func scanCosts(rows *sql.Rows) ([]core.CostRecord, error) {
	records := []core.CostRecord{}
	for rows.Next() {
		var r core.CostRecord
		var currency string
		if err := rows.Scan(&r.ID, &r.Sum, &currency, &r.Category, &r.Description,
			&r.Date.Year, &r.Date.Month, &r.Date.Day, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cost: %w", err)
		}
		r.Currency = core.Currency(currency)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate costs: %w", err)
	}
	return records, nil
}
