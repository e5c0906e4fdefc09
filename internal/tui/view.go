package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmarks/internal/model"
	"github.com/nikbrunner/bmarks/internal/session"
	"github.com/nikbrunner/bmarks/internal/tui/layout"
)

func (a App) renderView() string {
	if a.session.ShowHelp() {
		return a.renderHelpOverlay()
	}

	var body string
	switch m := a.session.Mode().(type) {
	case *session.Search:
		body = a.renderSearch(m)
	case *session.Create:
		body = a.renderCreate(m)
	default:
		paneHeight := layout.CalculatePaneHeight(a.height, false, a.layout.Pane)
		width := layout.CalculateFullWidth(a.width, a.layout.Pane)
		body = a.renderBookmarkPane(width, paneHeight, true)
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			a.renderHeader(),
			body,
			a.renderStatusLine(),
			a.renderHints(a.contextualHints()),
		),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the app name, the mode and the active tag filter.
func (a App) renderHeader() string {
	var header strings.Builder
	header.WriteString(a.styles.Header.Render("bmarks"))
	header.WriteString(" " + a.styles.Mode.Render("["+a.session.Mode().Name()+"]"))

	if f := a.session.Filter(); len(f) > 0 {
		header.WriteString("  " + a.styles.FilterTag.Render(layout.TagChips(tagNames(f))))
	}
	return header.String()
}

func (a App) renderSearch(m *session.Search) string {
	form := a.renderForm(m.Field, m.Title, m.Link)
	paneHeight := layout.CalculatePaneHeight(a.height, true, a.layout.Pane)
	split := layout.CalculateSplit(a.width, a.layout.Pane)

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		a.renderTagPane("tags", a.session.Tags(), split.TagWidth, paneHeight, m.Field == session.FieldTags),
		a.renderBookmarkPane(split.ListWidth, paneHeight, false),
	)
	return lipgloss.JoinVertical(lipgloss.Left, form, columns)
}

func (a App) renderCreate(m *session.Create) string {
	form := a.renderForm(m.Field, m.Title, m.Link)
	paneHeight := layout.CalculatePaneHeight(a.height, true, a.layout.Pane)
	split := layout.CalculateSplit(a.width, a.layout.Pane)

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		a.renderTagPane("tags", m.Tags, split.TagWidth, paneHeight, m.Field == session.FieldTags),
		a.renderSelectedPane(m.Selected, split.ListWidth, paneHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, form, columns)
}

// renderForm renders the title and link inputs, highlighting the focused one.
func (a App) renderForm(field session.Field, title, link textinput.Model) string {
	label := func(name string, f session.Field) string {
		if field == f {
			return a.styles.LabelActive.Render(name)
		}
		return a.styles.Label.Render(name)
	}

	title.Width = a.layout.Input.Width
	link.Width = a.layout.Input.Width

	lines := []string{
		label("title", session.FieldTitle) + title.View(),
		label("link", session.FieldLink) + link.View(),
	}
	width := layout.CalculateFullWidth(a.width, a.layout.Pane)
	style := a.styles.Pane
	if field != session.FieldTags {
		style = a.styles.PaneActive
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (a App) renderBookmarkPane(width, height int, active bool) string {
	var content strings.Builder

	bookmarks := a.session.Bookmarks()
	visibleHeight := layout.CalculateVisibleHeight(height, 0)
	itemWidth := layout.CalculateItemWidth(width, a.layout.Pane)

	if bookmarks.Len() == 0 {
		if len(a.session.Filter()) > 0 {
			content.WriteString(a.styles.Empty.Render("(no bookmarks with these tags)"))
		} else {
			content.WriteString(a.styles.Empty.Render("(empty)"))
		}
	} else {
		selected, hasSelection := bookmarks.Selected()
		if !hasSelection {
			selected = -1
		}
		offset := layout.CalculateViewportOffset(selected, bookmarks.Len(), visibleHeight)

		for i, b := range bookmarks.Items {
			if i < offset {
				continue
			}
			if i >= offset+visibleHeight {
				break
			}
			content.WriteString(a.renderBookmark(b, active && i == selected, itemWidth) + "\n")
		}
	}

	style := a.styles.Pane
	if active {
		style = a.styles.PaneActive
	}
	return style.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderBookmark renders one row: the title (or URL when untitled) with the
// bookmark's tags kept visible at the end.
func (a App) renderBookmark(b model.Bookmark, isCursor bool, maxWidth int) string {
	marker := "  "
	if isCursor {
		marker = "> "
	}

	line := layout.BookmarkRow(marker, b.DisplayTitle(), b.TagNames(), maxWidth, a.layout.Text)

	if isCursor {
		// Pad to fill width for highlight
		if pad := maxWidth - layout.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		return a.styles.ItemSelected.Render(line)
	}
	return a.styles.Item.Render(line)
}

func (a App) renderTagPane(title string, tags session.List[model.Tag], width, height int, active bool) string {
	var content strings.Builder
	content.WriteString(a.styles.Title.Render(title) + "\n")

	visibleHeight := layout.CalculateVisibleHeight(height, 1)
	itemWidth := layout.CalculateItemWidth(width, a.layout.Pane)

	if tags.Len() == 0 {
		content.WriteString(a.styles.Empty.Render("(no tags)"))
	} else {
		selected, hasSelection := tags.Selected()
		if !hasSelection {
			selected = -1
		}
		start := layout.CalculateViewportOffset(selected, tags.Len(), visibleHeight)
		end := min(start+visibleHeight, tags.Len())

		for i := start; i < end; i++ {
			t := tags.Items[i]
			marker := "  "
			if model.ContainsTag(a.session.Filter(), t.ID) {
				marker = "* "
			}
			line := layout.Fit(marker+t.Name, itemWidth, a.layout.Text)
			if active && i == selected {
				content.WriteString(a.styles.ItemSelected.Render(line) + "\n")
			} else {
				content.WriteString(a.styles.Item.Render(line) + "\n")
			}
		}
	}

	style := a.styles.Pane
	if active {
		style = a.styles.PaneActive
	}
	return style.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderSelectedPane lists the tags picked for the bookmark being created.
func (a App) renderSelectedPane(selected []model.Tag, width, height int) string {
	var content strings.Builder
	content.WriteString(a.styles.Title.Render("selected") + "\n")

	if len(selected) == 0 {
		content.WriteString(a.styles.Empty.Render("(none)"))
	} else {
		chips := layout.TagChips(tagNames(selected))
		line := layout.Fit(chips, layout.CalculateItemWidth(width, a.layout.Pane), a.layout.Text)
		content.WriteString(a.styles.Tag.Render(line))
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(content.String())
}

// renderStatusLine shows the last error, or a summary of what is listed.
func (a App) renderStatusLine() string {
	if a.err != nil {
		return a.styles.Error.Render("✗ " + a.err.Error())
	}

	count := a.session.Bookmarks().Len()
	status := fmt.Sprintf("%d bookmarks", count)
	if count == 1 {
		status = "1 bookmark"
	}
	if b, ok := a.session.Bookmarks().SelectedItem(); ok {
		status += "  " + a.styles.URL.Render(b.URL)
	}
	return a.styles.Empty.Render(status)
}

// renderHelpOverlay renders every binding in two columns, top-left aligned.
func (a App) renderHelpOverlay() string {
	width := layout.HelpWidth(a.width, a.layout.Help)
	colWidth := (width - 2) / 2

	column := func(title string, bindings ...key.Binding) string {
		var col strings.Builder
		col.WriteString(a.styles.Title.Render(title) + "\n")
		for _, b := range bindings {
			h := b.Help()
			col.WriteString(fmt.Sprintf("%-6s %s\n", h.Key, h.Desc))
		}
		return lipgloss.NewStyle().Width(colWidth).Render(strings.TrimRight(col.String(), "\n"))
	}

	left := column("global",
		a.keys.ToggleSearch, a.keys.Create, a.keys.NextField, a.keys.Confirm,
		a.keys.Up, a.keys.Down, a.keys.Left,
		a.keys.Sync, a.keys.Reset, a.keys.Help, a.keys.Quit,
	)
	right := column("scrolling",
		a.keys.ScrollDown, a.keys.ScrollUp, a.keys.Yank,
		a.keys.Delete, a.keys.RemoveFilter,
	)

	cols := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	footer := a.styles.Help.Render("[F1] close  [esc] quit")

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, cols, footer)),
	)
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
