package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmarks/internal/culler"
	"github.com/nikbrunner/bmarks/internal/logger"
)

var flagCullDelete bool

var cullCmd = &cobra.Command{
	Use:   "cull",
	Short: "Check all links and report dead ones",
	Long: `Request every bookmark URL and report the ones that are gone.
404s on excluded domains (cull.exclude_domains) are reported as possibly
private instead. With --delete, dead bookmarks are removed.`,
	Args: cobra.NoArgs,
	RunE: runCull,
}

func init() {
	cullCmd.Flags().BoolVar(&flagCullDelete, "delete", false, "delete dead bookmarks")
}

func runCull(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	bookmarks, err := env.repo.FetchAll(ctx, nil)
	if err != nil {
		return err
	}

	results := culler.CheckURLs(ctx, bookmarks, culler.Options{
		Concurrency:    env.cfg.Cull.Concurrency,
		Timeout:        env.cfg.Cull.Timeout,
		ExcludeDomains: env.cfg.Cull.ExcludeDomains,
		OnProgress: func(completed, total int) {
			fmt.Fprintf(errOut, "\rChecking %d/%d", completed, total)
		},
	})
	if len(results) > 0 {
		fmt.Fprintln(errOut)
	}

	for _, r := range results {
		if r.Status == culler.Healthy {
			continue
		}
		detail := r.Error
		if r.StatusCode != 0 {
			detail = fmt.Sprintf("HTTP %d", r.StatusCode)
		}
		fmt.Fprintf(out, "%-10s %s  %s\n", r.Status, r.Bookmark.URL, detail)
	}

	dead := culler.FilterDead(results)
	fmt.Fprintf(out, "%d checked, %d dead\n", len(results), len(dead))

	if !flagCullDelete {
		return nil
	}
	for _, r := range dead {
		if err := env.repo.Delete(ctx, r.Bookmark.ID); err != nil {
			return err
		}
		env.log.Info("culled bookmark", logger.Int64("id", r.Bookmark.ID), logger.String("url", r.Bookmark.URL))
	}
	fmt.Fprintf(out, "Deleted %d dead bookmarks\n", len(dead))
	return nil
}
