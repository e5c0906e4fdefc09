package session_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	bmerrors "github.com/nikbrunner/bmarks/internal/errors"
	"github.com/nikbrunner/bmarks/internal/model"
	"github.com/nikbrunner/bmarks/internal/session"
	"github.com/nikbrunner/bmarks/internal/storage"
)

type fakeSource struct {
	links []model.NewBookmarkParams
	err   error
}

func (f *fakeSource) FetchLinks(context.Context) ([]model.NewBookmarkParams, error) {
	return f.links, f.err
}

// flakyRepo fails FetchAll while broken is set. With breakAfterWrite, every
// successful write sets broken, so the reload that follows it fails.
type flakyRepo struct {
	storage.Repository
	broken          bool
	breakAfterWrite bool
}

func (r *flakyRepo) Create(ctx context.Context, title *string, url string, tags []model.Tag) (model.Bookmark, error) {
	b, err := r.Repository.Create(ctx, title, url, tags)
	r.wrote(err)
	return b, err
}

func (r *flakyRepo) BatchCreate(ctx context.Context, items []model.NewBookmarkParams) ([]model.Bookmark, error) {
	bs, err := r.Repository.BatchCreate(ctx, items)
	r.wrote(err)
	return bs, err
}

func (r *flakyRepo) Delete(ctx context.Context, id int64) error {
	err := r.Repository.Delete(ctx, id)
	r.wrote(err)
	return err
}

func (r *flakyRepo) wrote(err error) {
	if err == nil && r.breakAfterWrite {
		r.broken = true
	}
}

func (r *flakyRepo) FetchAll(ctx context.Context, tagFilter []int64) ([]model.Bookmark, error) {
	if r.broken {
		return nil, bmerrors.NewStore("bookmarks.fetch_all", errors.New("database is locked"))
	}
	return r.Repository.FetchAll(ctx, tagFilter)
}

func strPtr(s string) *string { return &s }

// seed creates tags go and rust plus three bookmarks: go, rust, untagged.
func seed(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	repo := storage.NewMemoryStorage()
	_, err := repo.BatchCreate(context.Background(), []model.NewBookmarkParams{
		{Title: strPtr("Go"), URL: "https://go.dev", Tags: []string{"go"}},
		{Title: strPtr("Rust"), URL: "https://rust-lang.org", Tags: []string{"rust"}},
		{URL: "https://example.com"},
	})
	assert.NilError(t, err)
	return repo
}

func newSession(t *testing.T, p session.Params) *session.Session {
	t.Helper()
	s, err := session.New(context.Background(), p)
	assert.NilError(t, err)
	return s
}

func dispatch(t *testing.T, s *session.Session, intents ...session.Intent) {
	t.Helper()
	for _, in := range intents {
		assert.NilError(t, s.Dispatch(context.Background(), in))
	}
}

func typeText(t *testing.T, s *session.Session, text string) {
	t.Helper()
	dispatch(t, s, session.EditText{Key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}})
}

func bookmarkURLs(l session.List[model.Bookmark]) []string {
	urls := make([]string, len(l.Items))
	for i, b := range l.Items {
		urls[i] = b.URL
	}
	return urls
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

// selectTag moves the tag cursor onto name, assuming Field == Tags.
func selectTag(t *testing.T, s *session.Session, tags session.List[model.Tag], name string) {
	t.Helper()
	for i, tag := range tags.Items {
		if tag.Name == name {
			for j := 0; j <= i; j++ {
				dispatch(t, s, session.Down{})
			}
			return
		}
	}
	t.Fatalf("tag %q not loaded", name)
}

func TestNew_StartsScrollingWithEverythingLoaded(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})

	assert.Equal(t, s.Mode(), session.Mode(session.Scrolling{}))
	assert.Equal(t, s.Bookmarks().Len(), 3)
	assert.DeepEqual(t, tagNames(s.Tags().Items), []string{"go", "rust"})
	assert.Equal(t, len(s.Filter()), 0)
}

func TestToggleMode_SearchFiltersByTitle(t *testing.T) {
	repo := storage.NewMemoryStorage()
	var items []model.NewBookmarkParams
	for i := 0; i < 20; i++ {
		items = append(items, model.NewBookmarkParams{
			Title: strPtr(fmt.Sprintf("foo %d", i)),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		})
	}
	items = append(items, model.NewBookmarkParams{Title: strPtr("bar"), URL: "https://bar.example"})
	_, err := repo.BatchCreate(context.Background(), items)
	assert.NilError(t, err)

	s := newSession(t, session.Params{Repo: repo})
	dispatch(t, s, session.Down{}, session.ToggleMode{})

	m, ok := s.Mode().(*session.Search)
	assert.Assert(t, ok, "expected Search, got %T", s.Mode())
	assert.Equal(t, m.Field, session.FieldTitle)
	assert.Equal(t, m.Title.Value(), "")
	assert.Equal(t, m.Link.Value(), "")

	typeText(t, s, "foo")

	m = s.Mode().(*session.Search)
	assert.Equal(t, m.Title.Value(), "foo")
	assert.Equal(t, s.Bookmarks().Len(), 15)
	for _, b := range s.Bookmarks().Items {
		assert.Check(t, strings.HasPrefix(*b.Title, "foo"))
	}
	_, selected := s.Bookmarks().Selected()
	assert.Assert(t, !selected, "typing clears the selection")
	assert.Equal(t, len(s.Corpus()), 21, "corpus is untouched by search")
}

func TestSearch_LinkFieldIncludesUntitled(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{}, session.AdvanceField{})

	typeText(t, s, "example")

	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()), []string{"https://example.com"})
}

func TestSearch_ClearingQueryRestoresCorpus(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{})

	typeText(t, s, "go")
	assert.Equal(t, s.Bookmarks().Len(), 1)

	dispatch(t, s,
		session.EditText{Key: tea.KeyMsg{Type: tea.KeyBackspace}},
		session.EditText{Key: tea.KeyMsg{Type: tea.KeyBackspace}},
	)
	assert.Equal(t, s.Bookmarks().Len(), 3)
}

func TestToggleMode_IgnoredInCreate(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})

	dispatch(t, s, session.ToggleCreate{}, session.ToggleMode{})
	_, ok := s.Mode().(*session.Create)
	assert.Assert(t, ok, "toggle mode must not leave Create")

	dispatch(t, s, session.ToggleCreate{})
	assert.Equal(t, s.Mode(), session.Mode(session.Scrolling{}))

	dispatch(t, s, session.ToggleMode{}, session.ToggleMode{})
	assert.Equal(t, s.Mode(), session.Mode(session.Scrolling{}))
}

func TestToggleCreate_FromSearchOffersLoadedTags(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})

	dispatch(t, s, session.ToggleMode{}, session.ToggleCreate{})

	c, ok := s.Mode().(*session.Create)
	assert.Assert(t, ok)
	assert.DeepEqual(t, tagNames(c.Tags.Items), []string{"go", "rust"})
	assert.Equal(t, len(c.Selected), 0)
	assert.Equal(t, c.Field, session.FieldTitle)
}

func TestAdvanceField_Cycles(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{})

	want := []session.Field{session.FieldLink, session.FieldTags, session.FieldTitle}
	for _, w := range want {
		dispatch(t, s, session.AdvanceField{})
		m := s.Mode().(*session.Search)
		assert.Equal(t, m.Field, w)
		assert.Equal(t, m.Title.Focused(), w == session.FieldTitle)
		assert.Equal(t, m.Link.Focused(), w == session.FieldLink)
	}
}

func TestCreate_SelectingTagTwiceKeepsDuplicates(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleCreate{}, session.AdvanceField{}, session.AdvanceField{})

	c := s.Mode().(*session.Create)
	assert.Equal(t, c.Field, session.FieldTags)
	selectTag(t, s, c.Tags, "rust")

	dispatch(t, s, session.Confirm{}, session.Confirm{})

	c = s.Mode().(*session.Create)
	assert.DeepEqual(t, tagNames(c.Selected), []string{"rust", "rust"})
}

func TestCreate_ConfirmStoresBookmark(t *testing.T) {
	repo := seed(t)
	s := newSession(t, session.Params{Repo: repo})
	dispatch(t, s, session.ToggleCreate{})

	typeText(t, s, "Zig")
	dispatch(t, s, session.AdvanceField{})
	typeText(t, s, "https://ziglang.org")
	dispatch(t, s, session.AdvanceField{})
	selectTag(t, s, s.Mode().(*session.Create).Tags, "go")
	dispatch(t, s, session.Confirm{}, session.AdvanceField{}, session.Confirm{})

	assert.Equal(t, s.Mode(), session.Mode(session.Scrolling{}))
	assert.Equal(t, s.Bookmarks().Len(), 4)

	created := s.Bookmarks().Items[3]
	assert.Equal(t, *created.Title, "Zig")
	assert.Equal(t, created.URL, "https://ziglang.org")
	assert.DeepEqual(t, created.TagNames(), []string{"go"})
}

func TestCreate_ReloadFailureLeavesCreate(t *testing.T) {
	base := seed(t)
	repo := &flakyRepo{Repository: base, breakAfterWrite: true}
	s := newSession(t, session.Params{Repo: repo})
	dispatch(t, s, session.ToggleCreate{}, session.AdvanceField{})
	typeText(t, s, "https://ziglang.org")

	err := s.Dispatch(context.Background(), session.Confirm{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeStore), "got %v", err)

	assert.Equal(t, s.Mode(), session.Mode(session.Scrolling{}))
	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()),
		[]string{"https://go.dev", "https://rust-lang.org", "https://example.com", "https://ziglang.org"})

	// A second Enter must not store the bookmark again.
	repo.broken = false
	dispatch(t, s, session.Confirm{})
	st, _ := base.Stats(context.Background())
	assert.Equal(t, st.Bookmarks, 4)
}

func TestCreate_ReloadFailureRespectsFilter(t *testing.T) {
	base := seed(t)
	repo := &flakyRepo{Repository: base}
	s := newSession(t, session.Params{Repo: repo})
	dispatch(t, s, session.ToggleMode{}, session.AdvanceField{}, session.AdvanceField{})
	selectTag(t, s, s.Tags(), "rust")
	dispatch(t, s, session.Confirm{}, session.ToggleCreate{}, session.AdvanceField{})
	typeText(t, s, "https://ziglang.org")

	repo.breakAfterWrite = true
	err := s.Dispatch(context.Background(), session.Confirm{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeStore), "got %v", err)

	assert.Equal(t, s.Mode(), session.Mode(session.Scrolling{}))
	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()), []string{"https://rust-lang.org"})
}

func TestCreate_InvalidURLStaysInCreate(t *testing.T) {
	repo := seed(t)
	s := newSession(t, session.Params{Repo: repo})
	dispatch(t, s, session.ToggleCreate{}, session.AdvanceField{})
	typeText(t, s, "not a url")

	err := s.Dispatch(context.Background(), session.Confirm{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeValidation), "got %v", err)

	c, ok := s.Mode().(*session.Create)
	assert.Assert(t, ok)
	assert.Equal(t, c.Link.Value(), "not a url")

	st, _ := repo.Stats(context.Background())
	assert.Equal(t, st.Bookmarks, 3)
}

func TestSearch_ConfirmTagAppliesFilter(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{}, session.AdvanceField{}, session.AdvanceField{})
	selectTag(t, s, s.Tags(), "go")

	dispatch(t, s, session.Confirm{})
	assert.DeepEqual(t, tagNames(s.Filter()), []string{"go"})
	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()), []string{"https://go.dev"})

	dispatch(t, s, session.Confirm{})
	assert.Check(t, is.DeepEqual(tagNames(s.Filter()), []string{"go"}), "filter is a set")

	dispatch(t, s, session.Down{}, session.Confirm{})
	assert.DeepEqual(t, tagNames(s.Filter()), []string{"go", "rust"})
	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()), []string{"https://go.dev", "https://rust-lang.org"})

	dispatch(t, s, session.RemoveFilter{})
	assert.DeepEqual(t, tagNames(s.Filter()), []string{"go"})
	assert.Equal(t, s.Bookmarks().Len(), 1)
}

func TestSearch_ConfirmWithoutSelectionIsNoop(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{}, session.Confirm{})

	assert.Equal(t, len(s.Filter()), 0)
	assert.Equal(t, s.Bookmarks().Len(), 3)
}

func TestConfirm_StoreFailureLeavesStateUnchanged(t *testing.T) {
	repo := &flakyRepo{Repository: seed(t)}
	s := newSession(t, session.Params{Repo: repo})
	dispatch(t, s, session.ToggleMode{}, session.AdvanceField{}, session.AdvanceField{}, session.Down{})

	repo.broken = true
	err := s.Dispatch(context.Background(), session.Confirm{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeStore), "got %v", err)

	assert.Equal(t, len(s.Filter()), 0)
	assert.Equal(t, s.Bookmarks().Len(), 3)
	_, ok := s.Mode().(*session.Search)
	assert.Assert(t, ok)
}

func TestDelete_OnlyInScrolling(t *testing.T) {
	repo := seed(t)
	s := newSession(t, session.Params{Repo: repo})

	dispatch(t, s, session.ToggleMode{}, session.Delete{}, session.ToggleMode{})
	assert.Equal(t, s.Bookmarks().Len(), 3)

	dispatch(t, s, session.Down{}, session.Delete{})
	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()), []string{"https://rust-lang.org", "https://example.com"})

	st, _ := repo.Stats(context.Background())
	assert.Equal(t, st, storage.Stats{Bookmarks: 2, Tags: 2, Links: 1})
}

func TestDelete_ReloadFailureDropsRow(t *testing.T) {
	base := seed(t)
	repo := &flakyRepo{Repository: base, breakAfterWrite: true}
	s := newSession(t, session.Params{Repo: repo})

	dispatch(t, s, session.Down{})
	err := s.Dispatch(context.Background(), session.Delete{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeStore), "got %v", err)

	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()), []string{"https://rust-lang.org", "https://example.com"})
	st, _ := base.Stats(context.Background())
	assert.Equal(t, st.Bookmarks, 2)
}

func TestDelete_KeepsFilter(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{}, session.AdvanceField{}, session.AdvanceField{})
	selectTag(t, s, s.Tags(), "go")
	dispatch(t, s, session.Confirm{}, session.Down{}, session.Confirm{}, session.AdvanceField{})
	assert.Equal(t, s.Bookmarks().Len(), 2)

	dispatch(t, s, session.ToggleMode{}, session.Down{}, session.Delete{})

	assert.DeepEqual(t, bookmarkURLs(s.Bookmarks()), []string{"https://rust-lang.org"})
}

func TestReset_ClearsFilterKeepsMode(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{}, session.AdvanceField{}, session.AdvanceField{})
	selectTag(t, s, s.Tags(), "rust")
	dispatch(t, s, session.Confirm{})
	assert.Equal(t, s.Bookmarks().Len(), 1)

	dispatch(t, s, session.Reset{})

	assert.Equal(t, len(s.Filter()), 0)
	assert.Equal(t, s.Bookmarks().Len(), 3)
	_, selected := s.Tags().Selected()
	assert.Assert(t, !selected)
	_, ok := s.Mode().(*session.Search)
	assert.Assert(t, ok, "reset does not change the mode")
}

func TestReset_RefreshesCreateTags(t *testing.T) {
	repo := seed(t)
	s := newSession(t, session.Params{Repo: repo})
	dispatch(t, s, session.ToggleCreate{}, session.AdvanceField{}, session.AdvanceField{})
	selectTag(t, s, s.Mode().(*session.Create).Tags, "rust")
	dispatch(t, s, session.Confirm{})

	_, err := repo.CreateTag(context.Background(), "zig")
	assert.NilError(t, err)
	dispatch(t, s, session.Reset{})

	c, ok := s.Mode().(*session.Create)
	assert.Assert(t, ok, "reset does not change the mode")
	assert.DeepEqual(t, tagNames(c.Tags.Items), []string{"go", "rust", "zig"})
	assert.DeepEqual(t, tagNames(c.Selected), []string{"rust"})
	assert.Equal(t, c.Field, session.FieldTags)
}

func TestSync_ImportsAndReloads(t *testing.T) {
	source := &fakeSource{links: []model.NewBookmarkParams{
		{Title: strPtr("Cargo"), URL: "https://doc.rust-lang.org/cargo", Tags: []string{"rust", "tools"}},
	}}
	s := newSession(t, session.Params{Repo: seed(t), Source: source})

	dispatch(t, s, session.Sync{})

	assert.Equal(t, s.Bookmarks().Len(), 4)
	assert.DeepEqual(t, tagNames(s.Tags().Items), []string{"go", "rust", "tools"})
}

func TestSync_RemoteFailureWritesNothing(t *testing.T) {
	repo := seed(t)
	source := &fakeSource{err: bmerrors.NewRemote("tagpacker.fetch_links", errors.New("timeout"))}
	s := newSession(t, session.Params{Repo: repo, Source: source})

	err := s.Dispatch(context.Background(), session.Sync{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeRemote), "got %v", err)

	assert.Equal(t, s.Bookmarks().Len(), 3)
	st, _ := repo.Stats(context.Background())
	assert.Equal(t, st, storage.Stats{Bookmarks: 3, Tags: 2, Links: 2})
}

func TestSync_ReloadFailureKeepsImported(t *testing.T) {
	source := &fakeSource{links: []model.NewBookmarkParams{
		{Title: strPtr("Cargo"), URL: "https://doc.rust-lang.org/cargo", Tags: []string{"rust"}},
	}}
	base := seed(t)
	repo := &flakyRepo{Repository: base, breakAfterWrite: true}
	s := newSession(t, session.Params{Repo: repo, Source: source})

	err := s.Dispatch(context.Background(), session.Sync{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeStore), "got %v", err)

	assert.Equal(t, s.Bookmarks().Len(), 4)
	assert.Equal(t, s.Bookmarks().Items[3].URL, "https://doc.rust-lang.org/cargo")
}

func TestSync_WithoutSource(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})

	err := s.Dispatch(context.Background(), session.Sync{})
	assert.Assert(t, bmerrors.Is(err, bmerrors.CodeValidation), "got %v", err)
}

func TestNavigation_WrapsAndLeftUnselects(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})

	dispatch(t, s, session.Up{})
	assert.Equal(t, selected(s.Bookmarks()), 0)
	dispatch(t, s, session.Up{})
	assert.Equal(t, selected(s.Bookmarks()), 2)
	dispatch(t, s, session.Down{})
	assert.Equal(t, selected(s.Bookmarks()), 0)

	dispatch(t, s, session.Left{})
	assert.Equal(t, selected(s.Bookmarks()), -1)
}

func TestNavigation_SearchMovesTagsOnlyOnTagsField(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleMode{}, session.Down{})
	assert.Equal(t, selected(s.Tags()), -1)
	assert.Equal(t, selected(s.Bookmarks()), -1)

	dispatch(t, s, session.AdvanceField{}, session.AdvanceField{}, session.Down{}, session.Down{})
	assert.Equal(t, selected(s.Tags()), 1)

	dispatch(t, s, session.Left{})
	assert.Equal(t, selected(s.Tags()), -1)
}

func TestLeft_MovesCursorInTextField(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})
	dispatch(t, s, session.ToggleCreate{})
	typeText(t, s, "ac")

	dispatch(t, s, session.Left{})
	typeText(t, s, "b")

	assert.Equal(t, s.Mode().(*session.Create).Title.Value(), "abc")
}

func TestScrolling_ConfirmOpensAndYankCopies(t *testing.T) {
	var opened, yanked []string
	s := newSession(t, session.Params{
		Repo: seed(t),
		Open: func(url string) error { opened = append(opened, url); return nil },
		Yank: func(url string) error { yanked = append(yanked, url); return nil },
	})

	dispatch(t, s, session.Confirm{}, session.Yank{})
	assert.Equal(t, len(opened), 0, "nothing selected")

	dispatch(t, s, session.Down{}, session.Down{}, session.Confirm{}, session.Yank{})
	assert.DeepEqual(t, opened, []string{"https://rust-lang.org"})
	assert.DeepEqual(t, yanked, []string{"https://rust-lang.org"})
}

func TestScrolling_OpenErrorIsReturned(t *testing.T) {
	s := newSession(t, session.Params{
		Repo: seed(t),
		Open: func(string) error { return errors.New("no browser") },
	})
	dispatch(t, s, session.Down{})

	err := s.Dispatch(context.Background(), session.Confirm{})
	assert.Check(t, is.ErrorContains(err, "no browser"))
}

func TestQuitAndHelp(t *testing.T) {
	s := newSession(t, session.Params{Repo: seed(t)})

	dispatch(t, s, session.ToggleHelp{})
	assert.Assert(t, s.ShowHelp())
	dispatch(t, s, session.ToggleHelp{})
	assert.Assert(t, !s.ShowHelp())

	assert.Assert(t, !s.ShouldQuit())
	dispatch(t, s, session.Quit{})
	assert.Assert(t, s.ShouldQuit())
}
