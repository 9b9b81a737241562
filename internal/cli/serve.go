package cli

import (
	"github.com/spf13/cobra"

	"github.com/librarium/bookshelf/internal/entrypoint"
)

// runServer is swapped in tests.
var runServer = entrypoint.Run

func newServeCommand(opts *options, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			opts.apply(cfg)
			runServer(cfg, version)
			return nil
		},
	}
}
