// Package search ranks bookmarks against a fuzzy query.
//
// Every call builds a throwaway index over the given corpus; nothing is
// cached between calls.
package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/sahilm/fuzzy"

	bmerrors "github.com/nikbrunner/bmarks/internal/errors"
	"github.com/nikbrunner/bmarks/internal/model"
)

// MaxResults caps the number of bookmarks returned by Search.
const MaxResults = 15

// Field selects which bookmark attribute is matched.
type Field int

const (
	FieldTitle Field = iota
	FieldURL
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldURL:
		return "url"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// entry is one indexed bookmark. Keys are uint32, so ids must fit.
type entry struct {
	key  uint32
	text string
}

// index implements fuzzy.Source.
type index []entry

func (ix index) String(i int) string {
	return ix[i].text
}

func (ix index) Len() int {
	return len(ix)
}

// Search returns the bookmarks of corpus whose field matches query, best
// match first, at most MaxResults. An empty query returns corpus unchanged.
// Untitled bookmarks never match FieldTitle.
func Search(corpus []model.Bookmark, query string, field Field) ([]model.Bookmark, error) {
	if query == "" {
		return corpus, nil
	}

	ix, byKey, err := buildIndex(corpus, field)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, ix)
	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}

	results := make([]model.Bookmark, 0, len(matches))
	for _, m := range matches {
		results = append(results, byKey[ix[m.Index].key])
	}
	return results, nil
}

func buildIndex(corpus []model.Bookmark, field Field) (index, map[uint32]model.Bookmark, error) {
	ix := make(index, 0, len(corpus))
	byKey := make(map[uint32]model.Bookmark, len(corpus))

	for _, b := range corpus {
		if b.ID < 0 || b.ID > math.MaxUint32 {
			return nil, nil, bmerrors.NewValidation("search.index", fmt.Sprintf("bookmark id %d out of index range", b.ID))
		}

		var text string
		switch field {
		case FieldTitle:
			if b.Title == nil {
				continue
			}
			text = *b.Title
		case FieldURL:
			text = b.URL
		default:
			return nil, nil, bmerrors.NewValidation("search.index", "unknown field "+field.String())
		}

		key := uint32(b.ID)
		ix = append(ix, entry{key: key, text: text})
		byKey[key] = b
	}

	return ix, byKey, nil
}

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       model.Bookmark
	Field          Field
	MatchedIndexes []int // rune positions in the matched field
	Score          int
}

// bookmarkTexts implements fuzzy.Source over one field of a bookmark slice.
type bookmarkTexts struct {
	bookmarks []model.Bookmark
	field     Field
}

func (bt bookmarkTexts) String(i int) string {
	if bt.field == FieldURL {
		return bt.bookmarks[i].URL
	}
	return bt.bookmarks[i].DisplayTitle()
}

func (bt bookmarkTexts) Len() int {
	return len(bt.bookmarks)
}

// FuzzySearchBookmarks searches bookmarks by title and URL.
// Each bookmark appears once, with its better scoring field.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(bookmarks []model.Bookmark, query string) []SearchResult {
	if query == "" {
		return nil
	}

	best := make(map[int]SearchResult)
	for _, field := range []Field{FieldTitle, FieldURL} {
		for _, m := range fuzzy.FindFrom(query, bookmarkTexts{bookmarks: bookmarks, field: field}) {
			if prev, ok := best[m.Index]; ok && prev.Score >= m.Score {
				continue
			}
			best[m.Index] = SearchResult{
				Bookmark:       bookmarks[m.Index],
				Field:          field,
				MatchedIndexes: m.MatchedIndexes,
				Score:          m.Score,
			}
		}
	}

	order := make([]int, 0, len(best))
	for i := range best {
		order = append(order, i)
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := best[order[a]], best[order[b]]
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return order[a] < order[b]
	})

	results := make([]SearchResult, len(order))
	for i, idx := range order {
		results[i] = best[idx]
	}
	return results
}
