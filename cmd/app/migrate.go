package main

import (
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Applies the embedded SQL migrations for mysql and postgres, or creates the tables
directly for sqlite. --steps moves that many versions up (positive) or down (negative).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := repository.Migrate(a.cfg.DB, a.db, migrateSteps); err != nil {
			return err
		}
		a.logger.Info("Migrations applied",
			zap.String("driver", a.cfg.DB.Driver),
			zap.Int("steps", migrateSteps))
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of versions to move; 0 applies all pending")
}
