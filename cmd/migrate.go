package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"twin-sync/core/database"
)

// migrateCmd creates or updates the service tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db, models()...); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logg.Info("Database migrated", zap.String("driver", cfg.Database.Driver), zap.Int("tables", len(models())))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
