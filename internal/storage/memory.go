package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	bmerrors "github.com/nikbrunner/bmarks/internal/errors"
	"github.com/nikbrunner/bmarks/internal/filter"
	"github.com/nikbrunner/bmarks/internal/model"
)

type memBookmark struct {
	id     int64
	title  *string
	url    string
	tagIDs []int64
}

// MemoryStorage is an in-memory Repository with the same semantics as
// SQLiteStorage. It is used in tests and previews.
type MemoryStorage struct {
	mu         sync.Mutex
	bookmarks  []memBookmark
	tags       []model.Tag
	nextBookID int64
	nextTagID  int64
}

var _ Repository = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextBookID: 1, nextTagID: 1}
}

// Close is a no-op.
func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) FetchAll(_ context.Context, tagFilter []int64) ([]model.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]model.Bookmark, 0, len(m.bookmarks))
	for _, b := range m.bookmarks {
		all = append(all, m.materialize(b))
	}
	return filter.Bookmarks(all, tagFilter), nil
}

func (m *MemoryStorage) Create(_ context.Context, title *string, url string, tags []model.Tag) (model.Bookmark, error) {
	const op = "bookmarks.create"

	if _, err := model.ValidateURL(url); err != nil {
		return model.Bookmark{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := uniqueTagIDs(tags)
	stored := make([]model.Tag, 0, len(ids))
	for _, id := range ids {
		t, ok := m.tagByID(id)
		if !ok {
			return model.Bookmark{}, bmerrors.NewNotFound(op, fmt.Sprintf("tag %d", id))
		}
		stored = append(stored, t)
	}

	b := memBookmark{id: m.nextBookID, title: title, url: url, tagIDs: ids}
	m.nextBookID++
	m.bookmarks = append(m.bookmarks, b)

	out := model.Bookmark{ID: b.id, Title: title, URL: url}
	if tags != nil {
		out.Tags = stored
	}
	return out, nil
}

// BatchCreate stages all changes on copies and swaps them in only when
// every item succeeded.
func (m *MemoryStorage) BatchCreate(_ context.Context, items []model.NewBookmarkParams) ([]model.Bookmark, error) {
	if err := validateBatch(items); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bookmarks := append([]memBookmark(nil), m.bookmarks...)
	tags := append([]model.Tag(nil), m.tags...)
	nextBookID, nextTagID := m.nextBookID, m.nextTagID

	created := make([]model.Bookmark, 0, len(items))
	for _, item := range items {
		b := memBookmark{id: nextBookID, title: item.Title, url: item.URL}
		nextBookID++

		out := model.Bookmark{ID: b.id, Title: item.Title, URL: item.URL, Tags: []model.Tag{}}
		for _, name := range uniqueNames(item.Tags) {
			t, ok := findTagByName(tags, name)
			if !ok {
				t = model.Tag{ID: nextTagID, Name: name}
				nextTagID++
				tags = append(tags, t)
			}
			b.tagIDs = append(b.tagIDs, t.ID)
			out.Tags = append(out.Tags, t)
		}

		bookmarks = append(bookmarks, b)
		created = append(created, out)
	}

	m.bookmarks, m.tags = bookmarks, tags
	m.nextBookID, m.nextTagID = nextBookID, nextTagID
	return created, nil
}

func (m *MemoryStorage) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.bookmarks {
		if b.id == id {
			m.bookmarks = append(m.bookmarks[:i:i], m.bookmarks[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStorage) FetchAllTags(_ context.Context) ([]model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := append([]model.Tag{}, m.tags...)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (m *MemoryStorage) CreateTag(_ context.Context, name string) (model.Tag, error) {
	const op = "tags.create"

	if strings.TrimSpace(name) == "" {
		return model.Tag{}, bmerrors.NewValidation(op, "tag name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := findTagByName(m.tags, name); ok {
		return model.Tag{}, bmerrors.NewAlreadyExists(op, fmt.Sprintf("tag %q", name))
	}

	t := model.Tag{ID: m.nextTagID, Name: name}
	m.nextTagID++
	m.tags = append(m.tags, t)
	return t, nil
}

func (m *MemoryStorage) GetTag(_ context.Context, id int64) (model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tagByID(id)
	if !ok {
		return model.Tag{}, bmerrors.NewNotFound("tags.get", fmt.Sprintf("tag %d", id))
	}
	return t, nil
}

func (m *MemoryStorage) GetTagByName(_ context.Context, name string) (model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := findTagByName(m.tags, name)
	if !ok {
		return model.Tag{}, bmerrors.NewNotFound("tags.get_by_name", fmt.Sprintf("tag %q", name))
	}
	return t, nil
}

func (m *MemoryStorage) DeleteTag(_ context.Context, id int64) (model.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tags {
		if t.ID != id {
			continue
		}
		m.tags = append(m.tags[:i:i], m.tags[i+1:]...)
		for j := range m.bookmarks {
			m.bookmarks[j].tagIDs = removeID(m.bookmarks[j].tagIDs, id)
		}
		return t, nil
	}
	return model.Tag{}, bmerrors.NewNotFound("tags.delete", fmt.Sprintf("tag %d", id))
}

func (m *MemoryStorage) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{Bookmarks: len(m.bookmarks), Tags: len(m.tags)}
	for _, b := range m.bookmarks {
		st.Links += len(b.tagIDs)
	}
	return st, nil
}

// materialize attaches tags ordered by id, as the SQL join does.
func (m *MemoryStorage) materialize(b memBookmark) model.Bookmark {
	out := model.Bookmark{ID: b.id, Title: b.title, URL: b.url, Tags: []model.Tag{}}
	for _, id := range b.tagIDs {
		if t, ok := m.tagByID(id); ok {
			out.Tags = append(out.Tags, t)
		}
	}
	sort.Slice(out.Tags, func(i, j int) bool { return out.Tags[i].ID < out.Tags[j].ID })
	return out
}

func (m *MemoryStorage) tagByID(id int64) (model.Tag, bool) {
	for _, t := range m.tags {
		if t.ID == id {
			return t, true
		}
	}
	return model.Tag{}, false
}

func findTagByName(tags []model.Tag, name string) (model.Tag, bool) {
	for _, t := range tags {
		if t.Name == name {
			return t, true
		}
	}
	return model.Tag{}, false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
