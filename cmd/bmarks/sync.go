package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmarks/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import all links of the configured Tagpacker user",
	Long: `Fetch the public links of tagpacker.user_id and store them in one
transaction. Set the user id in config.yaml or BMARKS_TAGPACKER_USER_ID.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	src, err := env.source()
	if err != nil {
		return err
	}

	log := env.log.With(logger.String("run_id", uuid.NewString()))
	start := time.Now()

	links, err := src.FetchLinks(cmd.Context())
	if err != nil {
		log.Error("sync fetch failed", logger.Error(err))
		return err
	}

	created, err := env.repo.BatchCreate(cmd.Context(), links)
	if err != nil {
		log.Error("sync store failed", logger.Error(err))
		return err
	}

	log.Info("sync finished",
		logger.Int("fetched", len(links)),
		logger.Int("created", len(created)),
		logger.Duration("took", time.Since(start)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d bookmarks\n", len(created))
	return nil
}
