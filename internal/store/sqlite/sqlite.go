package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/nulzo/provider-relay/internal/store"
	"github.com/nulzo/provider-relay/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Applies() store.ApplyRepository {
	return &applyRepo{db: r.executor}
}

type applyRepo struct {
	db DB
}

func (r *applyRepo) Log(ctx context.Context, rec *model.ApplyRecord) error {
	query := `
	INSERT INTO apply_log (
		id, gateway_url, hook,
		routed_json, removed_json, notices_json,
		routed_count, removed_count, created_at
	) VALUES (
		:id, :gateway_url, :hook,
		:routed_json, :removed_json, :notices_json,
		:routed_count, :removed_count, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, rec)
	return err
}

func (r *applyRepo) Recent(ctx context.Context, limit int) ([]model.ApplyRecord, error) {
	var recs []model.ApplyRecord
	query := `SELECT * FROM apply_log ORDER BY created_at DESC, id LIMIT ?`
	err := r.db.SelectContext(ctx, &recs, query, limit)
	return recs, err
}
