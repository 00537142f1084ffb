package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"arena/internal/record"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ CellStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			sheet TEXT,
			started_at INTEGER,
			implementations INTEGER,
			failed INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS adapters (
			execution_id TEXT,
			implementation TEXT,
			adapter_id TEXT,
			bindings JSON,
			PRIMARY KEY (execution_id, implementation, adapter_id)
		);`,
		`CREATE TABLE IF NOT EXISTS cells (
			execution_id TEXT,
			implementation TEXT,
			adapter_id TEXT,
			sequence TEXT,
			col INTEGER,
			row INTEGER,
			field TEXT,
			oracle INTEGER,
			value_type TEXT,
			raw_value TEXT,
			value TEXT,
			execution_ns INTEGER,
			PRIMARY KEY (execution_id, implementation, adapter_id, sequence, col, row, field, oracle)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cells_execution ON cells(execution_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- Executions ---

func (s *SQLiteStore) SaveExecution(ctx context.Context, e *Execution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (id, sheet, started_at, implementations, failed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sheet=excluded.sheet,
			started_at=excluded.started_at,
			implementations=excluded.implementations,
			failed=excluded.failed
	`, e.ID, e.Sheet, e.StartedAt.UnixNano(), e.Implementations, e.Failed)
	return err
}

func (s *SQLiteStore) GetExecution(ctx context.Context, id string) (*Execution, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, sheet, started_at, implementations, failed FROM executions WHERE id = ?", id)
	e, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("execution %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (s *SQLiteStore) ListExecutions(ctx context.Context) ([]*Execution, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, sheet, started_at, implementations, failed FROM executions ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	var out []*Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (*Execution, error) {
	var e Execution
	var started int64
	if err := row.Scan(&e.ID, &e.Sheet, &started, &e.Implementations, &e.Failed); err != nil {
		return nil, err
	}
	e.StartedAt = time.Unix(0, started)
	return &e, nil
}

// --- Adapters ---

func (s *SQLiteStore) SaveAdapter(ctx context.Context, a *Adapter) error {
	bindings, err := json.Marshal(a.Bindings)
	if err != nil {
		return fmt.Errorf("failed to encode bindings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO adapters (execution_id, implementation, adapter_id, bindings)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(execution_id, implementation, adapter_id) DO UPDATE SET bindings=excluded.bindings
	`, a.ExecutionID, a.Implementation, a.AdapterID, bindings)
	return err
}

func (s *SQLiteStore) LoadAdapters(ctx context.Context, executionID string) ([]*Adapter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT execution_id, implementation, adapter_id, bindings FROM adapters
		WHERE execution_id = ? ORDER BY implementation, adapter_id
	`, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query adapters: %w", err)
	}
	defer rows.Close()

	var out []*Adapter
	for rows.Next() {
		var a Adapter
		var bindings []byte
		if err := rows.Scan(&a.ExecutionID, &a.Implementation, &a.AdapterID, &bindings); err != nil {
			return nil, fmt.Errorf("failed to scan adapter: %w", err)
		}
		if len(bindings) > 0 {
			if err := json.Unmarshal(bindings, &a.Bindings); err != nil {
				return nil, fmt.Errorf("failed to decode bindings of %s: %w", a.AdapterID, err)
			}
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// --- Cells ---

func (s *SQLiteStore) SaveCells(ctx context.Context, cells []record.Cell) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cells (execution_id, implementation, adapter_id, sequence, col, row, field, oracle, value_type, raw_value, value, execution_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(execution_id, implementation, adapter_id, sequence, col, row, field, oracle) DO UPDATE SET
			value_type=excluded.value_type,
			raw_value=excluded.raw_value,
			value=excluded.value,
			execution_ns=excluded.execution_ns
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cells {
		id, v := c.ID, c.Value
		if _, err := stmt.ExecContext(ctx, id.ExecutionID, id.Implementation, id.AdapterID, id.Sequence,
			id.Column, id.Row, string(id.Field), id.Oracle, v.ValueType, v.RawValue, v.Value, v.ExecutionTime.Nanoseconds()); err != nil {
			return fmt.Errorf("failed to save cell %s/%d/%d: %w", id.Sequence, id.Row, id.Column, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadCells(ctx context.Context, executionID string) ([]record.Cell, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT execution_id, implementation, adapter_id, sequence, col, row, field, oracle, value_type, raw_value, value, execution_ns
		FROM cells WHERE execution_id = ?
		ORDER BY implementation, adapter_id, sequence, row, oracle, col, field
	`, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer rows.Close()

	var out []record.Cell
	for rows.Next() {
		var c record.Cell
		var field string
		var ns int64
		if err := rows.Scan(&c.ID.ExecutionID, &c.ID.Implementation, &c.ID.AdapterID, &c.ID.Sequence,
			&c.ID.Column, &c.ID.Row, &field, &c.ID.Oracle, &c.Value.ValueType, &c.Value.RawValue, &c.Value.Value, &ns); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		c.ID.Field = record.Field(field)
		c.Value.ExecutionTime = time.Duration(ns)
		out = append(out, c)
	}
	return out, rows.Err()
}
