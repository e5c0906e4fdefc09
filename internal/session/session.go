// Package session holds the interactive state of bmarks and the single
// transition function that changes it.
//
// Every intent either completes its store round trips and then assigns the
// new state, or fails and leaves the state exactly as it was. Once a write
// has committed, a failed reload still moves on: the written rows are
// patched into the loaded list and the reload error is returned.
package session

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	bmerrors "github.com/nikbrunner/bmarks/internal/errors"
	"github.com/nikbrunner/bmarks/internal/filter"
	"github.com/nikbrunner/bmarks/internal/logger"
	"github.com/nikbrunner/bmarks/internal/model"
	"github.com/nikbrunner/bmarks/internal/remote"
	"github.com/nikbrunner/bmarks/internal/search"
	"github.com/nikbrunner/bmarks/internal/storage"
)

// Params holds the collaborators of a Session.
type Params struct {
	Repo   storage.Repository
	Source remote.Source // nil disables Sync
	Open   func(url string) error
	Yank   func(url string) error
	Logger logger.Logger
}

// Session is the application state machine.
type Session struct {
	repo   storage.Repository
	source remote.Source
	open   func(string) error
	yank   func(string) error
	log    logger.Logger

	corpus    []model.Bookmark     // loaded with the current filter
	bookmarks List[model.Bookmark] // displayed subset of corpus
	tags      List[model.Tag]
	filter    []model.Tag
	mode      Mode
	showHelp  bool
	quit      bool
}

// New loads all bookmarks and tags and starts in Scrolling.
func New(ctx context.Context, p Params) (*Session, error) {
	s := &Session{
		repo:   p.Repo,
		source: p.Source,
		open:   p.Open,
		yank:   p.Yank,
		log:    p.Logger,
		mode:   Scrolling{},
	}
	if s.log == nil {
		s.log = logger.Nop()
	}

	bookmarks, tags, err := s.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.corpus = bookmarks
	s.bookmarks = NewList(bookmarks)
	s.tags = NewList(tags)

	return s, nil
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Bookmarks returns the displayed bookmark list.
func (s *Session) Bookmarks() List[model.Bookmark] { return s.bookmarks }

// Corpus returns the bookmarks loaded with the current filter.
func (s *Session) Corpus() []model.Bookmark { return s.corpus }

// Tags returns the loaded tag list.
func (s *Session) Tags() List[model.Tag] { return s.tags }

// Filter returns the active tag filter.
func (s *Session) Filter() []model.Tag { return s.filter }

// ShowHelp reports whether key help is shown.
func (s *Session) ShowHelp() bool { return s.showHelp }

// ShouldQuit reports whether a Quit intent was dispatched.
func (s *Session) ShouldQuit() bool { return s.quit }

// Dispatch applies one intent. On error the state is unchanged, unless a
// write committed before the error; see the package doc.
func (s *Session) Dispatch(ctx context.Context, in Intent) error {
	var err error

	switch in := in.(type) {
	case Quit:
		s.quit = true
	case ToggleHelp:
		s.showHelp = !s.showHelp
	case ToggleMode:
		s.toggleMode()
	case ToggleCreate:
		s.toggleCreate()
	case EditText:
		err = s.editText(in.Key)
	case Confirm:
		err = s.confirm(ctx)
	case Delete:
		err = s.delete(ctx)
	case Reset:
		err = s.reset(ctx)
	case Sync:
		err = s.sync(ctx)
	case Up:
		s.navigate(-1)
	case Down:
		s.navigate(1)
	case Left:
		err = s.left()
	case AdvanceField:
		s.advanceField()
	case Yank:
		err = s.yankSelected()
	case RemoveFilter:
		err = s.removeFilter(ctx)
	default:
		err = fmt.Errorf("unknown intent %T", in)
	}

	if err != nil {
		s.log.Warn("intent failed",
			logger.String("intent", fmt.Sprintf("%T", in)),
			logger.String("mode", s.mode.Name()),
			logger.Error(err),
		)
	}
	return err
}

func (s *Session) toggleMode() {
	switch s.mode.(type) {
	case *Search:
		s.mode = Scrolling{}
	case Scrolling:
		s.mode = NewSearch()
	}
}

func (s *Session) toggleCreate() {
	if _, ok := s.mode.(*Create); ok {
		s.mode = Scrolling{}
		return
	}
	s.mode = NewCreate(s.tags.Items)
}

func (s *Session) editText(key tea.KeyMsg) error {
	switch m := s.mode.(type) {
	case *Search:
		next := *m
		var query string
		var field search.Field
		switch next.Field {
		case FieldTitle:
			next.Title, _ = next.Title.Update(key)
			query, field = next.Title.Value(), search.FieldTitle
		case FieldLink:
			next.Link, _ = next.Link.Update(key)
			query, field = next.Link.Value(), search.FieldURL
		default:
			return nil
		}

		results, err := search.Search(s.corpus, query, field)
		if err != nil {
			return err
		}
		s.mode = &next
		s.bookmarks = NewList(results)

	case *Create:
		next := *m
		switch next.Field {
		case FieldTitle:
			next.Title, _ = next.Title.Update(key)
		case FieldLink:
			next.Link, _ = next.Link.Update(key)
		default:
			return nil
		}
		s.mode = &next
	}
	return nil
}

func (s *Session) confirm(ctx context.Context) error {
	switch m := s.mode.(type) {
	case *Search:
		tag, ok := s.tags.SelectedItem()
		if !ok {
			return nil
		}
		nextFilter := s.filter
		if !model.ContainsTag(s.filter, tag.ID) {
			nextFilter = append(append([]model.Tag(nil), s.filter...), tag)
		}
		bookmarks, err := s.repo.FetchAll(ctx, filter.IDs(nextFilter))
		if err != nil {
			return err
		}
		s.filter = nextFilter
		s.corpus = bookmarks
		s.bookmarks = NewList(bookmarks)

	case *Create:
		if m.Field == FieldTags {
			tag, ok := m.Tags.SelectedItem()
			if !ok {
				return nil
			}
			next := *m
			next.Selected = append(append([]model.Tag(nil), m.Selected...), tag)
			s.mode = &next
			return nil
		}
		return s.createBookmark(ctx, m)

	case Scrolling:
		b, ok := s.bookmarks.SelectedItem()
		if !ok || s.open == nil {
			return nil
		}
		return s.open(b.URL)
	}
	return nil
}

func (s *Session) createBookmark(ctx context.Context, c *Create) error {
	link, err := model.ValidateURL(c.Link.Value())
	if err != nil {
		return err
	}

	created, err := s.repo.Create(ctx, model.OptionalString(c.Title.Value()), link, c.Selected)
	if err != nil {
		return err
	}

	s.log.Info("bookmark created", logger.Int64("id", created.ID), logger.String("url", created.URL))

	// The row is committed; leave Create even if the reload fails so a
	// second Enter cannot store it twice.
	s.mode = Scrolling{}
	bookmarks, tags, err := s.load(ctx, s.filter)
	if err != nil {
		s.keepCreated([]model.Bookmark{created})
		return fmt.Errorf("reload after create: %w", err)
	}

	s.corpus = bookmarks
	s.bookmarks = NewList(bookmarks)
	s.tags = NewList(tags)
	return nil
}

func (s *Session) delete(ctx context.Context) error {
	if _, ok := s.mode.(Scrolling); !ok {
		return nil
	}
	b, ok := s.bookmarks.SelectedItem()
	if !ok {
		return nil
	}

	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return err
	}
	s.log.Info("bookmark deleted", logger.Int64("id", b.ID))

	bookmarks, err := s.repo.FetchAll(ctx, filter.IDs(s.filter))
	if err != nil {
		s.dropDeleted(b.ID)
		return fmt.Errorf("reload after delete: %w", err)
	}

	s.corpus = bookmarks
	s.bookmarks = NewList(bookmarks)
	return nil
}

func (s *Session) reset(ctx context.Context) error {
	bookmarks, tags, err := s.load(ctx, nil)
	if err != nil {
		return err
	}
	s.filter = nil
	s.corpus = bookmarks
	s.bookmarks = NewList(bookmarks)
	s.tags = NewList(tags)
	s.refreshCreateTags(tags)
	return nil
}

func (s *Session) sync(ctx context.Context) error {
	if s.source == nil {
		return bmerrors.NewValidation("session.sync", "no remote source configured")
	}

	runID := uuid.NewString()
	log := s.log.With(logger.String("sync_id", runID))
	start := time.Now()

	links, err := s.source.FetchLinks(ctx)
	if err != nil {
		return err
	}
	log.Debug("remote links fetched", logger.Int("links", len(links)))

	created, err := s.repo.BatchCreate(ctx, links)
	if err != nil {
		return err
	}

	log.Info("sync finished",
		logger.Int("created", len(created)),
		logger.Duration("took", time.Since(start)),
	)

	bookmarks, tags, err := s.load(ctx, s.filter)
	if err != nil {
		s.keepCreated(created)
		return fmt.Errorf("reload after sync: %w", err)
	}

	s.corpus = bookmarks
	s.bookmarks = NewList(bookmarks)
	s.tags = NewList(tags)
	s.refreshCreateTags(tags)
	return nil
}

// keepCreated adds committed bookmarks that pass the current filter to the
// loaded list when the reload after a write failed.
func (s *Session) keepCreated(created []model.Bookmark) {
	corpus := append([]model.Bookmark(nil), s.corpus...)
	corpus = append(corpus, filter.Bookmarks(created, filter.IDs(s.filter))...)
	s.corpus = corpus
	s.bookmarks = NewList(corpus)
}

// dropDeleted removes a deleted bookmark from the loaded list when the reload
// after the delete failed.
func (s *Session) dropDeleted(id int64) {
	corpus := make([]model.Bookmark, 0, len(s.corpus))
	for _, b := range s.corpus {
		if b.ID != id {
			corpus = append(corpus, b)
		}
	}
	s.corpus = corpus
	s.bookmarks = NewList(corpus)
}

// refreshCreateTags swaps the available tags of an open Create form for the
// reloaded ones. Picked tags that no longer exist are dropped.
func (s *Session) refreshCreateTags(tags []model.Tag) {
	c, ok := s.mode.(*Create)
	if !ok {
		return
	}
	next := *c
	next.Tags = NewList(tags)
	next.Selected = nil
	for _, t := range c.Selected {
		if model.ContainsTag(tags, t.ID) {
			next.Selected = append(next.Selected, t)
		}
	}
	s.mode = &next
}

// activeTagList returns the tag list that navigation acts on, if any.
func (s *Session) activeTagList() *List[model.Tag] {
	switch m := s.mode.(type) {
	case *Search:
		if m.Field == FieldTags {
			return &s.tags
		}
	case *Create:
		if m.Field == FieldTags {
			return &m.Tags
		}
	}
	return nil
}

func (s *Session) navigate(delta int) {
	var move func()
	if _, ok := s.mode.(Scrolling); ok {
		move = s.bookmarks.Next
		if delta < 0 {
			move = s.bookmarks.Previous
		}
	} else if tags := s.activeTagList(); tags != nil {
		move = tags.Next
		if delta < 0 {
			move = tags.Previous
		}
	}
	if move != nil {
		move()
	}
}

func (s *Session) left() error {
	switch m := s.mode.(type) {
	case Scrolling:
		s.bookmarks.Unselect()
	case *Search:
		if m.Field == FieldTags {
			s.tags.Unselect()
			return nil
		}
		return s.editText(tea.KeyMsg{Type: tea.KeyLeft})
	case *Create:
		if m.Field != FieldTags {
			return s.editText(tea.KeyMsg{Type: tea.KeyLeft})
		}
	}
	return nil
}

func (s *Session) advanceField() {
	switch m := s.mode.(type) {
	case *Search:
		next := *m
		next.Field = next.Field.Next()
		focus(next.Field, &next.Title, &next.Link)
		s.mode = &next
	case *Create:
		next := *m
		next.Field = next.Field.Next()
		focus(next.Field, &next.Title, &next.Link)
		s.mode = &next
	}
}

func (s *Session) yankSelected() error {
	if _, ok := s.mode.(Scrolling); !ok || s.yank == nil {
		return nil
	}
	b, ok := s.bookmarks.SelectedItem()
	if !ok {
		return nil
	}
	return s.yank(b.URL)
}

func (s *Session) removeFilter(ctx context.Context) error {
	if len(s.filter) == 0 {
		return nil
	}

	nextFilter := append([]model.Tag(nil), s.filter[:len(s.filter)-1]...)
	bookmarks, err := s.repo.FetchAll(ctx, filter.IDs(nextFilter))
	if err != nil {
		return err
	}

	s.filter = nextFilter
	s.corpus = bookmarks
	s.bookmarks = NewList(bookmarks)
	return nil
}

// load fetches bookmarks with the given filter and all tags.
func (s *Session) load(ctx context.Context, tagFilter []model.Tag) ([]model.Bookmark, []model.Tag, error) {
	bookmarks, err := s.repo.FetchAll(ctx, filter.IDs(tagFilter))
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.repo.FetchAllTags(ctx)
	if err != nil {
		return nil, nil, err
	}
	return bookmarks, tags, nil
}
