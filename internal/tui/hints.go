package tui

import (
	"strings"

	"github.com/nikbrunner/bmarks/internal/session"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "Tab", "Enter")
	Desc string // Short description (e.g., "next", "open")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (arrows, Tab)
	Edit   []Hint // Edit hints (create, delete)
	Action []Hint // Action hints (Enter, yank, sync)
	System []Hint // System hints (F1, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar.
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// contextualHints returns the hints for the current mode.
func (a App) contextualHints() HintSet {
	if a.session.ShowHelp() {
		return HintSet{
			System: []Hint{{Key: "F1", Desc: "close"}},
		}
	}

	switch m := a.session.Mode().(type) {
	case *session.Search:
		return searchModeHints(m.Field)
	case *session.Create:
		return createModeHints(m.Field)
	default:
		return a.scrollingHints()
	}
}

func (a App) scrollingHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "←", Desc: "unselect"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
			{Key: "y", Desc: "yank"},
			{Key: "`", Desc: "search"},
			{Key: "F5", Desc: "sync"},
		},
		Edit: []Hint{
			{Key: "F3", Desc: "add"},
			{Key: "Del", Desc: "del"},
		},
		System: []Hint{
			{Key: "F1", Desc: "help"},
			{Key: "Esc", Desc: "quit"},
		},
	}
	if len(a.session.Filter()) > 0 {
		hints.Action = append(hints.Action, Hint{Key: "⌫", Desc: "drop filter"})
	}
	return hints
}

func searchModeHints(field session.Field) HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "next field"},
		},
		System: []Hint{
			{Key: "`", Desc: "back"},
			{Key: "F12", Desc: "reset"},
		},
	}
	if field == session.FieldTags {
		hints.Nav = append(hints.Nav, Hint{Key: "↑/↓", Desc: "tag"})
		hints.Action = []Hint{{Key: "Enter", Desc: "filter"}}
	} else {
		hints.Action = []Hint{{Key: "type", Desc: "search " + field.String()}}
	}
	return hints
}

func createModeHints(field session.Field) HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "next field"},
		},
		System: []Hint{
			{Key: "F3", Desc: "cancel"},
		},
	}
	if field == session.FieldTags {
		hints.Nav = append(hints.Nav, Hint{Key: "↑/↓", Desc: "tag"})
		hints.Action = []Hint{{Key: "Enter", Desc: "add tag"}}
	} else {
		hints.Action = []Hint{{Key: "Enter", Desc: "save"}}
	}
	return hints
}
