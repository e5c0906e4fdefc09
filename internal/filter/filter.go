// Package filter narrows bookmark lists by tag.
//
// A bookmark matches a non-empty set of required tag ids when it carries at
// least one of them (logical OR). An empty set disables filtering.
package filter

import "github.com/nikbrunner/bmarks/internal/model"

// Matches reports whether tags intersects required.
// A bookmark without tags never matches a non-empty filter.
func Matches(tags []model.Tag, required []int64) bool {
	for _, t := range tags {
		for _, id := range required {
			if t.ID == id {
				return true
			}
		}
	}
	return false
}

// Bookmarks returns the bookmarks matching required, preserving order.
// An empty filter returns bookmarks unchanged.
func Bookmarks(bookmarks []model.Bookmark, required []int64) []model.Bookmark {
	if len(required) == 0 {
		return bookmarks
	}

	result := make([]model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if Matches(b.Tags, required) {
			result = append(result, b)
		}
	}
	return result
}

// IDs returns the ids of tags, in order.
func IDs(tags []model.Tag) []int64 {
	ids := make([]int64, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
