package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librarium/bookshelf/internal/database"
)

func newSeedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the test user and Test Book if they are missing",
		Long: `Create the "test" user (email test@test, password test) and the
"Test Book" sample record. Existing rows are left untouched, so the command
can be run any number of times.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			opts.apply(cfg)

			db, err := database.NewDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Seed(cmd.Context(), cfg.Auth.BcryptCost); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seed data is in place")
			return nil
		},
	}
}
