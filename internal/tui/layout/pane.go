package layout

// SplitLayout holds the widths of the tag pane and the bookmark pane.
type SplitLayout struct {
	TagWidth  int
	ListWidth int
}

// CalculatePaneHeight computes the content height for panes.
// withForm: whether the search/create input form is shown above the panes.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, withForm bool, cfg PaneConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if withForm {
		height -= cfg.FormHeight
	}
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculateSplit divides the terminal width between the tag pane on the left
// and the bookmark pane on the right.
func CalculateSplit(terminalWidth int, cfg PaneConfig) SplitLayout {
	usable := terminalWidth - cfg.SplitWidthOffset
	if usable < 2*cfg.MinTagPaneWidth {
		usable = 2 * cfg.MinTagPaneWidth
	}

	tagWidth := usable * cfg.TagPanePercent / 100
	if tagWidth < cfg.MinTagPaneWidth {
		tagWidth = cfg.MinTagPaneWidth
	}

	return SplitLayout{
		TagWidth:  tagWidth,
		ListWidth: usable - tagWidth,
	}
}

// CalculateFullWidth computes the bookmark pane width when it spans the screen.
func CalculateFullWidth(terminalWidth int, cfg PaneConfig) int {
	width := terminalWidth - cfg.SplitWidthOffset/2
	if width < cfg.MinTagPaneWidth {
		return cfg.MinTagPaneWidth
	}
	return width
}

// CalculateItemWidth computes the width available for item content.
func CalculateItemWidth(paneWidth int, cfg PaneConfig) int {
	return paneWidth - cfg.ContentPadding
}

// CalculateVisibleHeight computes the visible item count in a pane.
func CalculateVisibleHeight(paneHeight, headerLines int) int {
	height := paneHeight - headerLines
	if height < 1 {
		return 1
	}
	return height
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport. A negative selection means
// nothing is selected and the list is shown from the top.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight || selected < 0 {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
