package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
)

// AdminRepository backs the operator commands. Table names come from the
// command line and are checked against Tables before reaching SQL.
type AdminRepository struct {
	db *DB
}

func NewAdminRepository(db *DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func quoteTable(name string) (string, error) {
	if !lo.Contains(Tables, name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return `"` + name + `"`, nil
}

// Rows returns the column names and up to limit rows of table. A limit of
// zero returns every row.
func (r *AdminRepository) Rows(ctx context.Context, table string, limit int) ([]string, [][]any, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return nil, nil, err
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("*").From(quoted).OrderBy("id").Asc()
	if limit > 0 {
		sb.Limit(limit)
	}
	query, args := sb.Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, storageError("query "+table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, storageError("read columns of "+table, err)
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := lo.Map(values, func(_ any, i int) any { return &values[i] })
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, storageError("scan "+table+" row", err)
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageError("iterate "+table+" rows", err)
	}

	return columns, result, nil
}

func (r *AdminRepository) Count(ctx context.Context, table string) (int64, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return 0, err
	}

	n, err := countRows(ctx, r.db, quoted)
	if err != nil {
		return 0, storageError("count "+table+" rows", err)
	}
	return n, nil
}

func (r *AdminRepository) Schema(ctx context.Context, table string) ([]Column, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoted))
	if err != nil {
		return nil, storageError("read schema of "+table, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			c       Column
			notNull int
			pk      int
			dflt    sql.NullString
		)
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			return nil, storageError("scan schema row", err)
		}
		c.NotNull = notNull != 0
		c.PrimaryKey = pk != 0
		if dflt.Valid {
			c.Default = &dflt.String
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate schema rows", err)
	}

	return columns, nil
}

// Clean deletes every row of table and returns how many were removed.
func (r *AdminRepository) Clean(ctx context.Context, table string) (int64, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return 0, err
	}

	del := sqlbuilder.SQLite.NewDeleteBuilder()
	del.DeleteFrom(quoted)
	query, args := del.Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageError("clean "+table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError("count cleaned "+table+" rows", err)
	}
	return n, nil
}
