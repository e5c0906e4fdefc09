package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmarks/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports bookmarks to Netscape bookmark HTML format.
// Tags are written to the TAGS attribute, comma separated.
func ExportHTML(bookmarks []model.Bookmark) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, bookmark := range bookmarks {
		writeBookmark(&b, bookmark)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeBookmark(b *strings.Builder, bookmark model.Bookmark) {
	var tagsAttr string
	if len(bookmark.Tags) > 0 {
		tagsAttr = fmt.Sprintf(" TAGS=\"%s\"", html.EscapeString(strings.Join(bookmark.TagNames(), ",")))
	}

	var title string
	if bookmark.Title != nil {
		title = *bookmark.Title
	}

	fmt.Fprintf(b,
		"    <DT><A HREF=\"%s\"%s>%s</A>\n",
		html.EscapeString(bookmark.URL),
		tagsAttr,
		html.EscapeString(title),
	)
}
