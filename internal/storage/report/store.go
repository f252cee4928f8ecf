// Package report keeps recent analysis reports for listing and lookup.
package report

import (
	"context"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
)

// Store persists analysis reports.
type Store interface {
	// Save stores r, assigning an ID when r.ID is empty, and returns the ID.
	Save(ctx context.Context, r *analysis.Report) (string, error)

	// GetByID returns core.ErrNotFound for unknown IDs.
	GetByID(ctx context.Context, id string) (*analysis.Report, error)

	// List returns matching reports, newest first.
	List(ctx context.Context, filter ListFilter) ([]*analysis.Report, error)

	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter selects reports. Zero fields match everything.
type ListFilter struct {
	Symbol  string
	Verdict core.Action
	From    time.Time
	To      time.Time
	Limit   int
	Offset  int
}
