package session

import tea "github.com/charmbracelet/bubbletea"

// Intent is a user action fed to Session.Dispatch.
type Intent interface {
	intent()
}

type (
	// ToggleMode switches between Scrolling and Search. Create ignores it.
	ToggleMode struct{}
	// ToggleCreate enters Create, or leaves it for Scrolling.
	ToggleCreate struct{}
	// EditText applies a key to the focused text input.
	EditText struct{ Key tea.KeyMsg }
	// Confirm acts on the current selection.
	Confirm struct{}
	// Delete removes the selected bookmark in Scrolling.
	Delete struct{}
	// Reset clears the tag filter and reloads everything.
	Reset struct{}
	// Sync imports bookmarks from the remote source.
	Sync struct{}
	// Up moves the active selection up.
	Up struct{}
	// Down moves the active selection down.
	Down struct{}
	// Left clears the active selection, or moves the text cursor.
	Left struct{}
	// AdvanceField focuses the next field in Search and Create.
	AdvanceField struct{}
	// Quit asks the driving loop to stop.
	Quit struct{}
	// ToggleHelp shows or hides key help.
	ToggleHelp struct{}
	// Yank copies the selected bookmark's URL in Scrolling.
	Yank struct{}
	// RemoveFilter drops the most recently added tag filter.
	RemoveFilter struct{}
)

func (ToggleMode) intent()   {}
func (ToggleCreate) intent() {}
func (EditText) intent()     {}
func (Confirm) intent()      {}
func (Delete) intent()       {}
func (Reset) intent()        {}
func (Sync) intent()         {}
func (Up) intent()           {}
func (Down) intent()         {}
func (Left) intent()         {}
func (AdvanceField) intent() {}
func (Quit) intent()         {}
func (ToggleHelp) intent()   {}
func (Yank) intent()         {}
func (RemoveFilter) intent() {}
