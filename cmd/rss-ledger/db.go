package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/lysyi3m/rss-ledger/app/database"
)

type tableArgs struct {
	Table string `positional-arg-name:"table" description:"historical, current or last_processed" required:"yes"`
}

type dbRowsCommand struct {
	app  *app
	Args struct {
		Table string `positional-arg-name:"table" description:"historical, current or last_processed" required:"yes"`
		Limit int    `positional-arg-name:"n" description:"Number of rows to print"`
	} `positional-args:"yes"`
}

func (c *dbRowsCommand) Execute(_ []string) error {
	if c.Args.Limit < 0 {
		return fmt.Errorf("row count must not be negative, got %d", c.Args.Limit)
	}

	return c.app.withAdmin(func(ctx context.Context, admin *database.AdminRepository) error {
		columns, rows, err := admin.Rows(ctx, c.Args.Table, c.Args.Limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(c.app.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(columns, "\t"))
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = formatCell(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		return w.Flush()
	})
}

type dbCountCommand struct {
	app  *app
	Args tableArgs `positional-args:"yes"`
}

func (c *dbCountCommand) Execute(_ []string) error {
	return c.app.withAdmin(func(ctx context.Context, admin *database.AdminRepository) error {
		n, err := admin.Count(ctx, c.Args.Table)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.app.stdout, "Total number of rows in the table '%s': %d\n", c.Args.Table, n)
		return nil
	})
}

type dbSchemaCommand struct {
	app  *app
	Args tableArgs `positional-args:"yes"`
}

func (c *dbSchemaCommand) Execute(_ []string) error {
	return c.app.withAdmin(func(ctx context.Context, admin *database.AdminRepository) error {
		columns, err := admin.Schema(ctx, c.Args.Table)
		if err != nil {
			return err
		}

		for _, col := range columns {
			dflt := "NULL"
			if col.Default != nil {
				dflt = *col.Default
			}
			fmt.Fprintf(c.app.stdout, "Column: %s, Type: %s, Not Null: %t, Default: %s, Primary Key: %t\n",
				col.Name, col.Type, col.NotNull, dflt, col.PrimaryKey)
		}
		return nil
	})
}

type dbCleanCommand struct {
	app  *app
	Args tableArgs `positional-args:"yes"`
}

func (c *dbCleanCommand) Execute(_ []string) error {
	return c.app.withAdmin(func(ctx context.Context, admin *database.AdminRepository) error {
		n, err := admin.Clean(ctx, c.Args.Table)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.app.stdout, "All rows in table '%s' have been removed (%d).\n", c.Args.Table, n)
		return nil
	})
}

func (a *app) withAdmin(fn func(ctx context.Context, admin *database.AdminRepository) error) error {
	db, store, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(context.Background(), store.AdminRepository)
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

type versionCommand struct {
	app *app
}

func (c *versionCommand) Execute(_ []string) error {
	fmt.Fprintln(c.app.stdout, c.app.cfg.Version)
	return nil
}
