package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Width returns the number of terminal cells s occupies. Styling escape
// sequences take no room.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Fit cuts s to at most width cells. A cut string ends in cfg.Ellipsis, or
// is cut bare when the ellipsis alone would not fit.
func Fit(s string, width int, cfg TextConfig) string {
	if width <= 0 {
		return ""
	}
	if Width(cfg.Ellipsis) >= width {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, cfg.Ellipsis)
}

// TagChips renders tag names the way they appear in rows and the header:
// "#go #rust".
func TagChips(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "#" + strings.Join(names, " #")
}

// BookmarkRow lays out a bookmark line within width cells: the cursor
// marker, the title and the tag chips. The chips stay whole while the title
// keeps at least cfg.MinTitleWidth cells; below that they are dropped and
// the title gets the line.
func BookmarkRow(marker, title string, tags []string, width int, cfg TextConfig) string {
	const gap = "  "

	chips := TagChips(tags)
	if chips == "" {
		return Fit(marker+title, width, cfg)
	}

	full := marker + title + gap + chips
	if Width(full) <= width {
		return full
	}

	room := width - Width(marker) - Width(gap) - Width(chips)
	if room >= cfg.MinTitleWidth && room > 0 {
		return marker + Fit(title, room, cfg) + gap + chips
	}
	return Fit(marker+title, width, cfg)
}
