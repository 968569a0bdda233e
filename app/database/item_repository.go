package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/samber/lo"
)

// SQLite caps bound parameters per statement; five columns per row keeps
// each chunk well below the limit.
const insertChunkSize = 200

var recordColumns = []string{"id", "name", "pubDate", "title", "description", "link"}

// ItemRepository handles the historical and current item tables.
type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Ingest commits one source's batch atomically: the bootstrap watermark row
// (if any), the items into both tables, then the advanced watermark. It
// returns the number of items inserted.
func (r *ItemRepository) Ingest(ctx context.Context, batch Batch) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageError("begin transaction", err)
	}
	defer tx.Rollback()

	if batch.BootstrapWatermark != "" {
		if err := createWatermark(ctx, tx, batch.SourceID, batch.BootstrapWatermark); err != nil {
			return 0, storageError("create bootstrap watermark", err)
		}
	}

	for _, chunk := range lo.Chunk(batch.Items, insertChunkSize) {
		if err := insertItems(ctx, tx, TableHistorical, batch.SourceName, chunk); err != nil {
			return 0, storageError("insert historical items", err)
		}
		if err := insertItems(ctx, tx, tableCurrent, batch.SourceName, chunk); err != nil {
			return 0, storageError("insert current items", err)
		}
	}

	if err := upsertWatermark(ctx, tx, batch.SourceID, batch.Watermark); err != nil {
		return 0, storageError("advance watermark", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageError("commit transaction", err)
	}

	return len(batch.Items), nil
}

func insertItems(ctx context.Context, tx *sql.Tx, table, name string, items []feed.Item) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(table).Cols("name", "pubDate", "title", "description", "link")
	for _, item := range items {
		ib.Values(name, item.PubDate, item.Title, item.Description, item.Link)
	}
	query, args := ib.Build()

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteCurrentBefore removes current rows published strictly before cutoff.
// Rows with an empty pubDate sort first and are removed as well.
func (r *ItemRepository) DeleteCurrentBefore(ctx context.Context, cutoff string) (int64, error) {
	del := sqlbuilder.SQLite.NewDeleteBuilder()
	del.DeleteFrom(tableCurrent).Where(del.LessThan("pubDate", cutoff))
	query, args := del.Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageError("delete expired current items", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError("count deleted current items", err)
	}

	return n, nil
}

func (r *ItemRepository) ListCurrent(ctx context.Context) ([]Record, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(recordColumns...).From(tableCurrent).OrderBy("id").Asc()
	return r.queryRecords(ctx, sb)
}

func (r *ItemRepository) ListCurrentByName(ctx context.Context, name string) ([]Record, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(recordColumns...).From(tableCurrent).Where(sb.Equal("name", name)).OrderBy("id").Asc()
	return r.queryRecords(ctx, sb)
}

func (r *ItemRepository) ListHistorical(ctx context.Context, limit, offset int) ([]Record, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(recordColumns...).From(TableHistorical).OrderBy("id").Asc().Limit(limit).Offset(offset)
	return r.queryRecords(ctx, sb)
}

func (r *ItemRepository) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	counts := []struct {
		table string
		dest  *int64
	}{
		{TableHistorical, &stats.Historical},
		{tableCurrent, &stats.Current},
		{TableLastProcessed, &stats.Sources},
	}

	for _, c := range counts {
		n, err := countRows(ctx, r.db, c.table)
		if err != nil {
			return Stats{}, storageError(fmt.Sprintf("count %s rows", c.table), err)
		}
		*c.dest = n
	}

	return stats, nil
}

func (r *ItemRepository) queryRecords(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]Record, error) {
	query, args := sb.Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("query items", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.PubDate, &rec.Title, &rec.Description, &rec.Link); err != nil {
			return nil, storageError("scan item row", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate item rows", err)
	}

	return records, nil
}

func countRows(ctx context.Context, db *DB, table string) (int64, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From(table)
	query, args := sb.Build()

	var n int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
