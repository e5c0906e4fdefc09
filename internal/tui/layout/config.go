package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Help  HelpConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status line (1) + hints (1) = 6
	HeightReduction int

	// FormHeight is the extra height taken by the input form in search and create mode.
	// Two input lines plus the form border.
	FormHeight int

	// MinHeight is the minimum pane height.
	MinHeight int

	// SplitWidthOffset is subtracted before splitting the width between the tag
	// pane and the bookmark pane. Accounts for borders and app padding.
	SplitWidthOffset int

	// TagPanePercent is the share of the split width given to the tag pane.
	TagPanePercent int

	// MinTagPaneWidth is the minimum width of the tag pane.
	MinTagPaneWidth int

	// ContentPadding is subtracted from pane width for item rendering.
	// Accounts for pane border/padding on each side.
	ContentPadding int
}

// HelpConfig holds help overlay configuration.
type HelpConfig struct {
	// WidthPercent is the overlay width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum overlay width in characters.
	MinWidth int

	// MaxWidth is the maximum overlay width in characters.
	MaxWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Width is the display width of the title and link inputs.
	Width int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string

	// MinTitleWidth is the fewest title cells a bookmark row keeps before
	// its tag chips are dropped.
	MinTitleWidth int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:  6, // app padding (1) + header (1) + pane borders (2) + status (1) + hints (1)
			FormHeight:       4,
			MinHeight:        3,
			SplitWidthOffset: 8,
			TagPanePercent:   30,
			MinTagPaneWidth:  16,
			ContentPadding:   4,
		},
		Help: HelpConfig{
			WidthPercent: 50,
			MinWidth:     40,
			MaxWidth:     72,
		},
		Input: InputConfig{
			Width: 50,
		},
		Text: TextConfig{
			Ellipsis:      "...",
			MinTitleWidth: 12,
		},
	}
}
