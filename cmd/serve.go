package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/blogly/routes"
	"github.com/cppla/blogly/store"
	"github.com/cppla/blogly/utils"
)

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = utils.Logger.Sync() }()

			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			rc, err := utils.NewRedisClient(cmd.Context(), cfg)
			if err != nil {
				// flashes still work from memory on a single instance
				utils.Logger.Warn("redis unavailable, keeping flash notices in memory", zap.Error(err))
			}
			if rc != nil {
				defer rc.Close()
			}
			flashes := utils.NewFlashStore(rc, 0)

			r, err := routes.SetupRouter(cfg, store.New(db), flashes)
			if err != nil {
				return err
			}

			utils.Logger.Info("starting server",
				zap.String("port", cfg.AppPort),
				zap.String("db_driver", cfg.DBDriver),
				zap.String("flash_backend", flashes.Backend()),
			)
			return utils.NewServer(":"+cfg.AppPort, r).ListenAndServe()
		},
	}
}
