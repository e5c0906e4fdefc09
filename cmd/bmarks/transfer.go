package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmarks/internal/exporter"
	"github.com/nikbrunner/bmarks/internal/importer"
	"github.com/nikbrunner/bmarks/internal/logger"
)

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import bookmarks from a browser HTML export",
	Long: `Import a Netscape bookmark file as exported by Firefox or Chrome.
Folder names and the TAGS attribute become tags. The import is
all-or-nothing: one invalid link rejects the whole file.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export bookmarks as a browser HTML file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func runImport(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	items, err := importer.ParseHTMLBookmarks(file)
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}

	created, err := env.repo.BatchCreate(cmd.Context(), items)
	if err != nil {
		return err
	}

	env.log.Info("imported bookmarks",
		logger.String("file", args[0]),
		logger.Int("count", len(created)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks\n", len(created))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	var outputPath string
	if len(args) == 1 {
		outputPath = args[0]
	} else {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			return fmt.Errorf("getting default export path: %w", err)
		}
	}

	bookmarks, err := env.repo.FetchAll(cmd.Context(), nil)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(bookmarks)), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(bookmarks), outputPath)
	return nil
}
