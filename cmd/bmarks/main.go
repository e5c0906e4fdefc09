// Package main provides the bmarks CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmarks/internal/config"
	"github.com/nikbrunner/bmarks/internal/logger"
	"github.com/nikbrunner/bmarks/internal/remote"
	"github.com/nikbrunner/bmarks/internal/storage"
)

// flagConfigDir is set by the --config-dir flag.
var flagConfigDir string

// env is built by bootstrap before any command runs.
var env *appEnv

type appEnv struct {
	cfg  *config.Config
	log  logger.Logger
	repo *storage.SQLiteStorage
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if env != nil {
		if err != nil {
			env.log.Error("command failed", logger.Error(err))
		}
		env.close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bmarks",
	Short: "Terminal bookmark manager with tags and fuzzy search",
	Long: `bmarks keeps bookmarks in a local SQLite database.

Run without arguments to open the interactive browser. Bookmarks carry
tags; filter by tags, search titles and links, and sync from Tagpacker.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bootstrap,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: ~/.config/bmarks)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cullCmd)
}

// bootstrap loads config, opens the log and the database.
func bootstrap(cmd *cobra.Command, args []string) error {
	dir := flagConfigDir
	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File, cfg.Log.Pretty)
	if err != nil {
		return err
	}

	repo, err := storage.NewSQLiteStorage(cfg.Database.Path, storage.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Logger:       log,
	})
	if err != nil {
		log.Error("open database", logger.String("path", cfg.Database.Path), logger.Error(err))
		_ = log.Sync()
		return err
	}

	env = &appEnv{cfg: cfg, log: log, repo: repo}
	log.Debug("bootstrapped",
		logger.String("command", cmd.CommandPath()),
		logger.String("db", repo.Path()),
	)
	return nil
}

// source builds the remote bookmark source, or fails when no user id is configured.
func (e *appEnv) source() (remote.Source, error) {
	if err := e.cfg.RequireUserID(); err != nil {
		return nil, err
	}
	src, err := remote.NewTagpacker(e.cfg.Tagpacker.BaseURL, e.cfg.Tagpacker.UserID, e.cfg.Tagpacker.Timeout)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func (e *appEnv) close() {
	if err := e.repo.Close(); err != nil {
		e.log.Warn("close database", logger.Error(err))
	}
	_ = e.log.Sync()
}
