package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cppla/blogly/config"
	"github.com/cppla/blogly/utils"
)

// NewRootCommand builds the blogly command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "blogly",
		Short: "Server-rendered blog of users, posts and tags",
		Long: `Blogly serves HTML pages for creating, editing and deleting users,
their posts, and the tags attached to those posts.

Configuration is read from a JSON file and overridden by environment variables.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the JSON config file")

	load := func() (config.AppConfig, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return config.AppConfig{}, err
		}
		if err := utils.InitLogger(cfg); err != nil {
			return config.AppConfig{}, fmt.Errorf("init logger: %w", err)
		}
		return cfg, nil
	}

	rootCmd.AddCommand(newServeCommand(load))
	rootCmd.AddCommand(newMigrateCommand(load))
	rootCmd.AddCommand(newSeedCommand(load))
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type configLoader func() (config.AppConfig, error)

// openDatabase connects and returns a closer for the underlying pool.
func openDatabase(cfg config.AppConfig) (*gorm.DB, func(), error) {
	db, err := config.InitDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closer, nil
}
