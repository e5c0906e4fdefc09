package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmarks/internal/browser"
	"github.com/nikbrunner/bmarks/internal/logger"
	"github.com/nikbrunner/bmarks/internal/remote"
	"github.com/nikbrunner/bmarks/internal/session"
	"github.com/nikbrunner/bmarks/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Without a user id the app still runs; F5 then reports the missing source.
	var src remote.Source
	if s, err := env.source(); err == nil {
		src = s
	} else {
		env.log.Info("sync disabled", logger.Error(err))
	}

	s, err := session.New(ctx, session.Params{
		Repo:   env.repo,
		Source: src,
		Open:   browser.Open,
		Yank:   clipboard.WriteAll,
		Logger: env.log,
	})
	if err != nil {
		return fmt.Errorf("loading bookmarks: %w", err)
	}

	app := tui.NewApp(tui.AppParams{
		Context: ctx,
		Session: s,
		Logger:  env.log,
	})
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
