package session

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/bmarks/internal/model"
)

const (
	titleCharLimit = 256
	linkCharLimit  = 2048
)

// Field is the input focused in Search and Create.
type Field int

const (
	FieldTitle Field = iota
	FieldLink
	FieldTags
)

// Next returns the field after f: Title, Link, Tags, then Title again.
func (f Field) Next() Field {
	switch f {
	case FieldTitle:
		return FieldLink
	case FieldLink:
		return FieldTags
	default:
		return FieldTitle
	}
}

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldLink:
		return "link"
	case FieldTags:
		return "tags"
	}
	return "unknown"
}

// Mode is the interaction state. It is one of Scrolling, *Search or *Create.
type Mode interface {
	Name() string
	mode()
}

// Scrolling browses the bookmark list. It is the initial mode.
type Scrolling struct{}

func (Scrolling) Name() string { return "scrolling" }
func (Scrolling) mode()        {}

// Search narrows the bookmark list by title, link or tag.
type Search struct {
	Field Field
	Title textinput.Model
	Link  textinput.Model
}

func (*Search) Name() string { return "search" }
func (*Search) mode()        {}

// Create composes a new bookmark.
type Create struct {
	Field    Field
	Title    textinput.Model
	Link     textinput.Model
	Tags     List[model.Tag] // available tags
	Selected []model.Tag     // accumulated, not deduplicated
}

func (*Create) Name() string { return "create" }
func (*Create) mode()        {}

// NewSearch returns a fresh Search with the title field focused.
func NewSearch() *Search {
	s := &Search{
		Field: FieldTitle,
		Title: newInput("Title", titleCharLimit),
		Link:  newInput("https://...", linkCharLimit),
	}
	focus(s.Field, &s.Title, &s.Link)
	return s
}

// NewCreate returns a fresh Create offering tags.
func NewCreate(tags []model.Tag) *Create {
	c := &Create{
		Field: FieldTitle,
		Title: newInput("Title", titleCharLimit),
		Link:  newInput("https://...", linkCharLimit),
		Tags:  NewList(tags),
	}
	focus(c.Field, &c.Title, &c.Link)
	return c
}

func newInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	return input
}

// focus gives keyboard focus to the input of field, if it has one.
func focus(field Field, title, link *textinput.Model) {
	title.Blur()
	link.Blur()
	switch field {
	case FieldTitle:
		title.Focus()
	case FieldLink:
		link.Focus()
	}
}
