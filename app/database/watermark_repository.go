package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huandu/go-sqlbuilder"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WatermarkRepository keeps the per-source last_processed cursor.
type WatermarkRepository struct {
	db *DB
}

func NewWatermarkRepository(db *DB) *WatermarkRepository {
	return &WatermarkRepository{db: db}
}

func (r *WatermarkRepository) GetWatermark(ctx context.Context, sourceID int64) (string, bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("last_processed").From(TableLastProcessed).Where(sb.Equal("id", sourceID))
	query, args := sb.Build()

	var ts string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageError("get watermark", err)
	}

	return ts, true, nil
}

// SetWatermark upserts the watermark. An older timestamp never replaces a
// newer one.
func (r *WatermarkRepository) SetWatermark(ctx context.Context, sourceID int64, timestamp string) error {
	if err := upsertWatermark(ctx, r.db, sourceID, timestamp); err != nil {
		return storageError("set watermark", err)
	}
	return nil
}

func upsertWatermark(ctx context.Context, ex execer, sourceID int64, timestamp string) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(TableLastProcessed).
		Cols("id", "last_processed").
		Values(sourceID, timestamp).
		SQL("ON CONFLICT (id) DO UPDATE SET last_processed = MAX(last_processed, excluded.last_processed)")
	query, args := ib.Build()

	_, err := ex.ExecContext(ctx, query, args...)
	return err
}

func createWatermark(ctx context.Context, ex execer, sourceID int64, timestamp string) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(TableLastProcessed).
		Cols("id", "last_processed").
		Values(sourceID, timestamp).
		SQL("ON CONFLICT (id) DO NOTHING")
	query, args := ib.Build()

	_, err := ex.ExecContext(ctx, query, args...)
	return err
}
