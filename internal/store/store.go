package store

import (
	"context"

	"github.com/nulzo/provider-relay/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Applies() ApplyRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

// ApplyRepository records reconciliation outcomes. This is an event log,
// not configuration versioning: rows are only ever appended.
type ApplyRepository interface {
	// Log stores one completed reconciliation pass.
	Log(ctx context.Context, rec *model.ApplyRecord) error
	// Recent returns the last N apply records, newest first.
	Recent(ctx context.Context, limit int) ([]model.ApplyRecord, error)
}
