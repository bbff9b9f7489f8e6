package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cppla/blogly/config"
	"github.com/cppla/blogly/utils"
)

func newMigrateCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := config.Migrate(db); err != nil {
				return err
			}
			utils.Sugar.Infow("schema migrated", "driver", cfg.DBDriver)
			cmd.Println("migration complete")
			return nil
		},
	}
}
