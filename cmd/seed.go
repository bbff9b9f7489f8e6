package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cppla/blogly/config"
	"github.com/cppla/blogly/store"
	"github.com/cppla/blogly/utils"
)

func newSeedCommand(load configLoader) *cobra.Command {
	var migrate bool

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the sample users, tags and posts",
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

			if migrate {
				if err := config.Migrate(db); err != nil {
					return err
				}
			}
			if err := store.New(db).Seed(cmd.Context()); err != nil {
				return err
			}
			utils.Sugar.Infow("sample data loaded", "driver", cfg.DBDriver)
			cmd.Println("seed complete")
			return nil
		},
	}
	seedCmd.Flags().BoolVar(&migrate, "migrate", true, "create missing tables before seeding")
	return seedCmd
}
