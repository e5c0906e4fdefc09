package storage

import (
	"context"
	"strings"

	"github.com/nikbrunner/bmarks/internal/model"
)

// BookmarkRepository persists bookmarks and their tag links.
type BookmarkRepository interface {
	// FetchAll returns every bookmark with its tags attached, ordered by id.
	// A non-empty tagFilter keeps bookmarks carrying at least one of the ids.
	FetchAll(ctx context.Context, tagFilter []int64) ([]model.Bookmark, error)
	// Create inserts one bookmark linked to existing tags.
	Create(ctx context.Context, title *string, url string, tags []model.Tag) (model.Bookmark, error)
	// BatchCreate inserts all items atomically, creating missing tags by name.
	BatchCreate(ctx context.Context, items []model.NewBookmarkParams) ([]model.Bookmark, error)
	// Delete removes a bookmark. Unknown ids are ignored.
	Delete(ctx context.Context, id int64) error
}

// TagRepository persists tags.
type TagRepository interface {
	FetchAllTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, name string) (model.Tag, error)
	GetTag(ctx context.Context, id int64) (model.Tag, error)
	GetTagByName(ctx context.Context, name string) (model.Tag, error)
	DeleteTag(ctx context.Context, id int64) (model.Tag, error)
}

// Repository is the full persistence surface used by the application.
type Repository interface {
	BookmarkRepository
	TagRepository
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats holds row counts of the store.
type Stats struct {
	Bookmarks int `db:"bookmarks" json:"bookmarks"`
	Tags      int `db:"tags" json:"tags"`
	Links     int `db:"links" json:"links"` // bookmark-tag junction rows
}

// uniqueNames returns names without blanks or repeats, in first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// uniqueTagIDs returns the ids of tags without repeats, in first-seen order.
func uniqueTagIDs(tags []model.Tag) []int64 {
	seen := make(map[int64]bool, len(tags))
	out := make([]int64, 0, len(tags))
	for _, t := range tags {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t.ID)
	}
	return out
}

// validateBatch checks every URL before anything is written.
func validateBatch(items []model.NewBookmarkParams) error {
	for _, item := range items {
		if _, err := model.ValidateURL(item.URL); err != nil {
			return err
		}
	}
	return nil
}
