package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/librarium/bookshelf/internal/config"
)

// options are the global flags shared by every command.
type options struct {
	databasePath string
	databaseDSN  string
	driver       string
}

// apply overlays flags on top of the environment-derived config.
func (o *options) apply(cfg *config.Config) {
	if o.databasePath != "" {
		cfg.Database.Path = o.databasePath
	}
	if o.databaseDSN != "" {
		cfg.Database.DSN = o.databaseDSN
	}
	if o.driver != "" {
		cfg.Database.Driver = config.DatabaseDriver(o.driver)
	}
}

// loadConfig is swapped in tests.
var loadConfig = config.NewConfig

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the HTTP server.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "bookshelf",
		Short: "Bookshelf - book catalogue API",
		Long: `Bookshelf serves a JSON API for books, users, read-book history and
per-book comments with ratings.

Configuration comes from environment variables (DATABASE_DRIVER,
DATABASE_PATH, DATABASE_DSN, PORT, ...). The flags below override them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.databasePath, "db", "", "SQLite database path (overrides DATABASE_PATH)")
	root.PersistentFlags().StringVar(&opts.databaseDSN, "dsn", "", "PostgreSQL DSN (overrides DATABASE_DSN)")
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "Database driver: sqlite or postgres (overrides DATABASE_DRIVER)")

	serve := newServeCommand(opts, version)
	root.AddCommand(serve)
	root.AddCommand(newSeedCommand(opts))
	root.AddCommand(newRecomputeRatingsCommand(opts))

	// Bare invocation behaves like "serve"
	root.RunE = serve.RunE

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	if err := run(version, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(version string, args []string, out io.Writer) error {
	root := NewRootCommand(version)
	root.SetArgs(args)
	root.SetOut(out)
	return root.Execute()
}
