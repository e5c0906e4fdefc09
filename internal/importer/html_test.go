package importer_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nikbrunner/bmarks/internal/importer"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(bookmarks))
	}

	b := bookmarks[0]
	if b.Title == nil || *b.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %v", b.Title)
	}
	if b.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", b.URL)
	}
	if len(b.Tags) != 0 {
		t.Errorf("expected no tags at root, got %v", b.Tags)
	}
}

func TestParseHTML_NestedFoldersBecomeTags(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string][]string{
		"https://react.dev":  {"Development", "React"},
		"https://github.com": {"Development"},
		"https://google.com": {},
	}

	if len(bookmarks) != len(want) {
		t.Fatalf("expected %d bookmarks, got %d", len(want), len(bookmarks))
	}
	for _, b := range bookmarks {
		if !reflect.DeepEqual(b.Tags, want[b.URL]) {
			t.Errorf("%s: expected tags %v, got %v", b.URL, want[b.URL], b.Tags)
		}
	}
}

func TestParseHTML_TagsAttribute(t *testing.T) {
	html := `<DL><p>
    <DT><H3>Go</H3>
    <DL><p>
        <DT><A HREF="https://go.dev" TAGS="go, lang,,Go">Go</A>
    </DL><p>
</DL><p>`

	bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(bookmarks))
	}

	want := []string{"Go", "go", "lang"}
	if !reflect.DeepEqual(bookmarks[0].Tags, want) {
		t.Errorf("expected tags %v, got %v", want, bookmarks[0].Tags)
	}
}

func TestParseHTML_EmptyTitleIsUntitled(t *testing.T) {
	html := `<DL><p><DT><A HREF="https://example.com"></A></DL><p>`

	bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(bookmarks))
	}
	if bookmarks[0].Title != nil {
		t.Errorf("expected nil title, got %q", *bookmarks[0].Title)
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookmarks) != 0 {
		t.Errorf("expected 0 bookmarks, got %d", len(bookmarks))
	}
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<DL><p>
    <DT><A>No URL</A>
    <DT><A HREF="https://valid.com">Valid</A>
</DL><p>`

	bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark (skip missing href), got %d", len(bookmarks))
	}
	if bookmarks[0].URL != "https://valid.com" {
		t.Errorf("expected valid.com, got %q", bookmarks[0].URL)
	}
}
