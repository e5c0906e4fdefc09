package exporter_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nikbrunner/bmarks/internal/exporter"
	"github.com/nikbrunner/bmarks/internal/importer"
	"github.com/nikbrunner/bmarks/internal/model"
)

func strPtr(s string) *string { return &s }

func TestExportHTML_Empty(t *testing.T) {
	result := exporter.ExportHTML(nil)

	if !strings.Contains(result, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("missing DOCTYPE")
	}
	if !strings.Contains(result, "<DL><p>") || !strings.Contains(result, "</DL><p>") {
		t.Error("missing bookmark list")
	}
	if strings.Contains(result, "<A ") {
		t.Error("expected no bookmarks")
	}
}

func TestExportHTML_SingleBookmark(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: 1, Title: strPtr("Example"), URL: "https://example.com", Tags: []model.Tag{}},
	}

	result := exporter.ExportHTML(bookmarks)

	want := `<DT><A HREF="https://example.com">Example</A>`
	if !strings.Contains(result, want) {
		t.Errorf("expected %q in output:\n%s", want, result)
	}
}

func TestExportHTML_Tags(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: 1, Title: strPtr("Go"), URL: "https://go.dev", Tags: []model.Tag{{ID: 1, Name: "go"}, {ID: 2, Name: "lang"}}},
	}

	result := exporter.ExportHTML(bookmarks)

	if !strings.Contains(result, `TAGS="go,lang"`) {
		t.Errorf("expected TAGS attribute, got:\n%s", result)
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: 1, Title: strPtr(`Tom & Jerry's <Show>`), URL: "https://example.com/?a=1&b=2"},
	}

	result := exporter.ExportHTML(bookmarks)

	if !strings.Contains(result, "Tom &amp; Jerry&#39;s &lt;Show&gt;") {
		t.Errorf("title not escaped:\n%s", result)
	}
	if !strings.Contains(result, "https://example.com/?a=1&amp;b=2") {
		t.Errorf("url not escaped:\n%s", result)
	}
}

func TestExportHTML_RoundTripsThroughImporter(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: 1, Title: strPtr("Go"), URL: "https://go.dev", Tags: []model.Tag{{ID: 1, Name: "go"}}},
		{ID: 2, URL: "https://example.com/?q=a&b=c", Tags: []model.Tag{}},
	}

	parsed, err := importer.ParseHTMLBookmarks(strings.NewReader(exporter.ExportHTML(bookmarks)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(parsed))
	}

	if parsed[0].URL != "https://go.dev" || *parsed[0].Title != "Go" {
		t.Errorf("first bookmark mismatch: %+v", parsed[0])
	}
	if !reflect.DeepEqual(parsed[0].Tags, []string{"go"}) {
		t.Errorf("expected tags [go], got %v", parsed[0].Tags)
	}
	if parsed[1].URL != "https://example.com/?q=a&b=c" {
		t.Errorf("url did not round-trip: %q", parsed[1].URL)
	}
	if parsed[1].Title != nil {
		t.Errorf("expected untitled, got %q", *parsed[1].Title)
	}
}
