package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/rss-ledger/app/cfg"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	parser := newParser(a)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	return 0
}

func newParser(a *app) *flags.Parser {
	parser := flags.NewParser(&a.opts, flags.Default)
	parser.Name = "rss-ledger"

	// Every command runs with validated configuration and a configured logger.
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		c, err := a.opts.Resolve()
		if err != nil {
			return err
		}
		a.cfg = c
		slog.SetDefault(cfg.NewLogger(a.stderr, c))

		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	parser.AddCommand("ingest",
		"Run one ingestion cycle",
		"Fetch every configured source once, store new items, then sweep the current table.",
		&ingestCommand{app: a})

	parser.AddCommand("serve",
		"Serve the read API",
		"Serve the read-only HTTP API, optionally re-running ingestion on an interval.",
		&serveCommand{app: a})

	dbCmd, _ := parser.AddCommand("db",
		"Inspect or clean tables",
		"Operator utility over the historical, current and last_processed tables.",
		&struct{}{})
	dbCmd.AddCommand("rows", "Print table rows", "Print the first n rows of a table, or every row when n is omitted.", &dbRowsCommand{app: a})
	dbCmd.AddCommand("count", "Count table rows", "Print the number of rows in a table.", &dbCountCommand{app: a})
	dbCmd.AddCommand("schema", "Show table schema", "Print the columns of a table.", &dbSchemaCommand{app: a})
	dbCmd.AddCommand("clean", "Remove all rows", "Delete every row of a table.", &dbCleanCommand{app: a})

	parser.AddCommand("version",
		"Print the version",
		"Print the build version.",
		&versionCommand{app: a})

	return parser
}
