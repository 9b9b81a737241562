package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librarium/bookshelf/internal/database"
	"github.com/librarium/bookshelf/internal/rating"
)

func newRecomputeRatingsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-ratings",
		Short: "Recompute every book's rating from its comments",
		Long: `Set each book's rating to the mean of its comment ratings, or 0 when it
has none. Useful after rows were edited outside the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			opts.apply(cfg)

			db, err := database.NewDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			updated, err := rating.NewReconciler(db.DB).RecomputeAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recomputed ratings for %d books\n", updated)
			return nil
		},
	}
}
