package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmarks/internal/browser"
	"github.com/nikbrunner/bmarks/internal/logger"
	"github.com/nikbrunner/bmarks/internal/model"
	"github.com/nikbrunner/bmarks/internal/picker"
	"github.com/nikbrunner/bmarks/internal/search"
)

// openURL is swapped in tests.
var openURL = browser.Open

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search bookmarks and open the match",
	Long: `Search titles and links of all bookmarks. A single match opens
directly in the browser; several matches open a picker.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	bookmarks, err := env.repo.FetchAll(cmd.Context(), nil)
	if err != nil {
		return err
	}

	results := search.FuzzySearchBookmarks(bookmarks, query)
	if len(results) == 0 {
		fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
		return nil
	}

	var selected model.Bookmark
	if len(results) == 1 {
		selected = results[0].Bookmark
		fmt.Fprintf(out, "Opening: %s\n", selected.DisplayTitle())
	} else {
		finalModel, err := tea.NewProgram(picker.New(results, query)).Run()
		if err != nil {
			return fmt.Errorf("running picker: %w", err)
		}

		p := finalModel.(picker.Picker)
		if p.Cancelled() {
			return nil
		}
		b, ok := p.SelectedBookmark()
		if !ok {
			return nil
		}
		selected = b
	}

	env.log.Info("opening bookmark",
		logger.Int64("id", selected.ID),
		logger.String("url", selected.URL),
	)
	return openURL(selected.URL)
}
