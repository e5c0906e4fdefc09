package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	bmerrors "github.com/nikbrunner/bmarks/internal/errors"
	"github.com/nikbrunner/bmarks/internal/logger"
	"github.com/nikbrunner/bmarks/internal/model"
)

const currentSchemaVersion = 1

// Pragmas go in the DSN so every pooled connection enforces cascades.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Options configures a SQLiteStorage.
type Options struct {
	MaxOpenConns int // <= 0 leaves the driver default
	Logger       logger.Logger
}

// SQLiteStorage implements Repository using a SQLite database.
type SQLiteStorage struct {
	db   *sqlx.DB
	path string
	log  logger.Logger
}

var _ Repository = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (and migrates) the database at path.
func NewSQLiteStorage(path string, opts Options) (*SQLiteStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sqlx.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	s := NewSQLiteStorageFromDB(db, opts.Logger)
	s.path = path
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// NewSQLiteStorageFromDB wraps an already open, already migrated database.
func NewSQLiteStorageFromDB(db *sqlx.DB, log logger.Logger) *SQLiteStorage {
	if log == nil {
		log = logger.Nop()
	}
	return &SQLiteStorage{db: db, log: log}
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.Get(&version, "SELECT version FROM schema_version LIMIT 1")
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT,
			url TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS bmarks_tags (
			bookmark_id INTEGER NOT NULL,
			tag_id INTEGER NOT NULL,
			PRIMARY KEY (bookmark_id, tag_id),
			FOREIGN KEY (bookmark_id) REFERENCES bookmarks(id) ON DELETE CASCADE,
			FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_bmarks_tags_tag_id ON bmarks_tags(tag_id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// bookmarkTagRow is one row of the bookmark/tag join.
type bookmarkTagRow struct {
	ID      int64          `db:"id"`
	Title   sql.NullString `db:"title"`
	URL     string         `db:"url"`
	TagID   sql.NullInt64  `db:"tag_id"`
	TagName sql.NullString `db:"tag_name"`
}

// FetchAll returns all bookmarks with their tags, optionally filtered by tag ids.
// Matching bookmarks carry all of their tags, not only the matching ones.
func (s *SQLiteStorage) FetchAll(ctx context.Context, tagFilter []int64) ([]model.Bookmark, error) {
	const op = "bookmarks.fetch_all"

	query := sq.Select("b.id", "b.title", "b.url", "t.id AS tag_id", "t.name AS tag_name").
		From("bookmarks b").
		LeftJoin("bmarks_tags bt ON bt.bookmark_id = b.id").
		LeftJoin("tags t ON t.id = bt.tag_id").
		OrderBy("b.id", "t.id")

	if len(tagFilter) > 0 {
		subSQL, subArgs, err := sq.Select("bookmark_id").
			From("bmarks_tags").
			Where(sq.Eq{"tag_id": tagFilter}).
			ToSql()
		if err != nil {
			return nil, bmerrors.NewStore(op, err)
		}
		query = query.Where("b.id IN ("+subSQL+")", subArgs...)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, bmerrors.NewStore(op, err)
	}

	var rows []bookmarkTagRow
	if err := s.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, bmerrors.NewStore(op, err)
	}

	return groupRows(rows), nil
}

// groupRows folds join rows, sorted by bookmark id, into bookmarks.
func groupRows(rows []bookmarkTagRow) []model.Bookmark {
	bookmarks := make([]model.Bookmark, 0, len(rows))
	for _, r := range rows {
		if len(bookmarks) == 0 || bookmarks[len(bookmarks)-1].ID != r.ID {
			b := model.Bookmark{ID: r.ID, URL: r.URL, Tags: []model.Tag{}}
			if r.Title.Valid {
				title := r.Title.String
				b.Title = &title
			}
			bookmarks = append(bookmarks, b)
		}
		if r.TagID.Valid {
			last := &bookmarks[len(bookmarks)-1]
			last.Tags = append(last.Tags, model.Tag{ID: r.TagID.Int64, Name: r.TagName.String})
		}
	}
	return bookmarks
}

// Create inserts a bookmark linked to the given tags in one transaction.
// Every tag must exist. Repeated tags are linked once.
func (s *SQLiteStorage) Create(ctx context.Context, title *string, url string, tags []model.Tag) (model.Bookmark, error) {
	const op = "bookmarks.create"

	if _, err := model.ValidateURL(url); err != nil {
		return model.Bookmark{}, err
	}

	b := model.Bookmark{Title: title, URL: url}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		stored := make([]model.Tag, 0, len(tags))
		for _, id := range uniqueTagIDs(tags) {
			var t model.Tag
			if err := tx.GetContext(ctx, &t, "SELECT id, name FROM tags WHERE id = ?", id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return bmerrors.NewNotFound(op, fmt.Sprintf("tag %d", id))
				}
				return err
			}
			stored = append(stored, t)
		}

		id, err := insertBookmark(ctx, tx, title, url)
		if err != nil {
			return err
		}
		b.ID = id

		for _, t := range stored {
			if err := insertLink(ctx, tx, id, t.ID); err != nil {
				return err
			}
		}
		if tags != nil {
			b.Tags = stored
		}
		return nil
	})
	if err != nil {
		return model.Bookmark{}, asStoreError(op, err)
	}

	s.log.Debug("bookmark created", logger.Int64("id", b.ID), logger.Int("tags", len(b.Tags)))
	return b, nil
}

// BatchCreate inserts all items in one transaction. Tags are resolved by
// name and created when missing; a name is created once per batch and reused.
// Any failure rolls the whole batch back.
func (s *SQLiteStorage) BatchCreate(ctx context.Context, items []model.NewBookmarkParams) ([]model.Bookmark, error) {
	const op = "bookmarks.batch_create"

	if err := validateBatch(items); err != nil {
		return nil, err
	}

	created := make([]model.Bookmark, 0, len(items))
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		cache := make(map[string]model.Tag)

		for _, item := range items {
			id, err := insertBookmark(ctx, tx, item.Title, item.URL)
			if err != nil {
				return err
			}

			b := model.Bookmark{ID: id, Title: item.Title, URL: item.URL, Tags: []model.Tag{}}
			for _, name := range uniqueNames(item.Tags) {
				t, ok := cache[name]
				if !ok {
					t, err = getOrCreateTag(ctx, tx, name)
					if err != nil {
						return err
					}
					cache[name] = t
				}
				if err := insertLink(ctx, tx, id, t.ID); err != nil {
					return err
				}
				b.Tags = append(b.Tags, t)
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, bmerrors.NewStore(op, err)
	}

	s.log.Debug("batch committed", logger.Int("bookmarks", len(created)))
	return created, nil
}

// Delete removes a bookmark and, by cascade, its tag links.
func (s *SQLiteStorage) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id); err != nil {
		return bmerrors.NewStore("bookmarks.delete", err)
	}
	return nil
}

// FetchAllTags returns all tags ordered by name.
func (s *SQLiteStorage) FetchAllTags(ctx context.Context) ([]model.Tag, error) {
	tags := []model.Tag{}
	if err := s.db.SelectContext(ctx, &tags, "SELECT id, name FROM tags ORDER BY name"); err != nil {
		return nil, bmerrors.NewStore("tags.fetch_all", err)
	}
	return tags, nil
}

// CreateTag inserts a new tag. Duplicate names are rejected.
func (s *SQLiteStorage) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	const op = "tags.create"

	if strings.TrimSpace(name) == "" {
		return model.Tag{}, bmerrors.NewValidation(op, "tag name is empty")
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Tag{}, bmerrors.NewAlreadyExists(op, fmt.Sprintf("tag %q", name))
		}
		return model.Tag{}, bmerrors.NewStore(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Tag{}, bmerrors.NewStore(op, err)
	}

	return model.Tag{ID: id, Name: name}, nil
}

// GetTag returns the tag with the given id.
func (s *SQLiteStorage) GetTag(ctx context.Context, id int64) (model.Tag, error) {
	const op = "tags.get"

	var t model.Tag
	if err := s.db.GetContext(ctx, &t, "SELECT id, name FROM tags WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tag{}, bmerrors.NewNotFound(op, fmt.Sprintf("tag %d", id))
		}
		return model.Tag{}, bmerrors.NewStore(op, err)
	}
	return t, nil
}

// GetTagByName returns the tag with the given name.
func (s *SQLiteStorage) GetTagByName(ctx context.Context, name string) (model.Tag, error) {
	const op = "tags.get_by_name"

	var t model.Tag
	if err := s.db.GetContext(ctx, &t, "SELECT id, name FROM tags WHERE name = ?", name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tag{}, bmerrors.NewNotFound(op, fmt.Sprintf("tag %q", name))
		}
		return model.Tag{}, bmerrors.NewStore(op, err)
	}
	return t, nil
}

// DeleteTag removes a tag and, by cascade, its bookmark links.
// It returns the deleted tag.
func (s *SQLiteStorage) DeleteTag(ctx context.Context, id int64) (model.Tag, error) {
	const op = "tags.delete"

	var t model.Tag
	if err := s.db.GetContext(ctx, &t, "DELETE FROM tags WHERE id = ? RETURNING id, name", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tag{}, bmerrors.NewNotFound(op, fmt.Sprintf("tag %d", id))
		}
		return model.Tag{}, bmerrors.NewStore(op, err)
	}
	return t, nil
}

// Stats returns row counts of the bookmark, tag and link tables.
func (s *SQLiteStorage) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `
		SELECT
			(SELECT COUNT(*) FROM bookmarks) AS bookmarks,
			(SELECT COUNT(*) FROM tags) AS tags,
			(SELECT COUNT(*) FROM bmarks_tags) AS links
	`)
	if err != nil {
		return Stats{}, bmerrors.NewStore("stats", err)
	}
	return st, nil
}

// withTx runs fn in a transaction, committing on success and rolling back
// on error or panic.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Warn("rollback failed", logger.Error(rbErr))
			}
			s.log.Debug("transaction rolled back", logger.Error(err))
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

func insertBookmark(ctx context.Context, tx *sqlx.Tx, title *string, url string) (int64, error) {
	res, err := tx.ExecContext(ctx, "INSERT INTO bookmarks (title, url) VALUES (?, ?)", title, url)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertLink(ctx context.Context, tx *sqlx.Tx, bookmarkID, tagID int64) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO bmarks_tags (bookmark_id, tag_id) VALUES (?, ?)", bookmarkID, tagID)
	return err
}

func getOrCreateTag(ctx context.Context, tx *sqlx.Tx, name string) (model.Tag, error) {
	var t model.Tag
	err := tx.GetContext(ctx, &t, "SELECT id, name FROM tags WHERE name = ?", name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, err
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		return model.Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Tag{}, err
	}
	return model.Tag{ID: id, Name: name}, nil
}

// asStoreError keeps typed errors and wraps everything else as STORE.
func asStoreError(op string, err error) error {
	var e *bmerrors.Error
	if errors.As(err, &e) {
		return err
	}
	return bmerrors.NewStore(op, err)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
