package model

import (
	"net/url"
	"strings"

	bmerrors "github.com/nikbrunner/bmarks/internal/errors"
)

// Bookmark represents a saved URL with its tags.
type Bookmark struct {
	ID    int64   `json:"id" db:"id"`
	Title *string `json:"title" db:"title"` // nil = untitled
	URL   string  `json:"url" db:"url"`
	Tags  []Tag   `json:"tags"` // nil = not loaded, empty = loaded without tags
}

// NewBookmarkParams holds parameters for creating a bookmark during a batch import.
// Tags are names; missing tags are created on demand.
type NewBookmarkParams struct {
	Title *string
	URL   string
	Tags  []string
}

// DisplayTitle returns the title, falling back to the URL for untitled bookmarks.
func (b Bookmark) DisplayTitle() string {
	if b.Title == nil || *b.Title == "" {
		return b.URL
	}
	return *b.Title
}

// TagIDs returns the ids of the bookmark's loaded tags.
func (b Bookmark) TagIDs() []int64 {
	ids := make([]int64, len(b.Tags))
	for i, t := range b.Tags {
		ids[i] = t.ID
	}
	return ids
}

// TagNames returns the names of the bookmark's loaded tags.
func (b Bookmark) TagNames() []string {
	names := make([]string, len(b.Tags))
	for i, t := range b.Tags {
		names[i] = t.Name
	}
	return names
}

// OptionalString returns nil for blank strings, a pointer to s otherwise.
func OptionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// ValidateURL checks that raw is an absolute URL and returns it unchanged.
// The string is stored verbatim so it round-trips exactly.
func ValidateURL(raw string) (string, error) {
	if raw == "" {
		return "", bmerrors.NewValidation("url.validate", "url is empty")
	}
	if strings.TrimSpace(raw) != raw {
		return "", bmerrors.NewValidation("url.validate", "url has surrounding whitespace: "+raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", &bmerrors.Error{Code: bmerrors.CodeValidation, Op: "url.validate", Message: "invalid url", Err: err}
	}
	if !parsed.IsAbs() {
		return "", bmerrors.NewValidation("url.validate", "url is not absolute: "+raw)
	}
	if parsed.Host == "" && parsed.Opaque == "" {
		return "", bmerrors.NewValidation("url.validate", "url has no host: "+raw)
	}

	return raw, nil
}
