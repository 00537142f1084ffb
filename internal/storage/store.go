package storage

import (
	"context"
	"errors"
	"time"

	"arena/internal/adapt"
	"arena/internal/record"
)

// ErrNotFound is returned when a requested execution does not exist.
var ErrNotFound = errors.New("not found")

// Execution summarizes one run of a sheet across implementations.
type Execution struct {
	ID              string
	Sheet           string
	StartedAt       time.Time
	Implementations int
	Failed          int
}

// Adapter records how one implementation was adapted during an execution.
type Adapter struct {
	ExecutionID    string
	Implementation string
	AdapterID      string
	Bindings       []adapt.Binding
}

// CellStore persists cell tables and the executions they belong to.
type CellStore interface {
	// SaveExecution upserts the execution summary.
	SaveExecution(ctx context.Context, e *Execution) error

	// GetExecution returns ErrNotFound for unknown ids.
	GetExecution(ctx context.Context, id string) (*Execution, error)

	// ListExecutions returns executions, most recent first.
	ListExecutions(ctx context.Context) ([]*Execution, error)

	SaveAdapter(ctx context.Context, a *Adapter) error
	LoadAdapters(ctx context.Context, executionID string) ([]*Adapter, error)

	// SaveCells upserts cells in a single transaction.
	SaveCells(ctx context.Context, cells []record.Cell) error

	// LoadCells returns the cells of an execution ordered by implementation,
	// sequence, row and column.
	LoadCells(ctx context.Context, executionID string) ([]record.Cell, error)

	Close() error
}
