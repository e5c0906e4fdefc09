package layout

// HelpWidth computes the help overlay width: cfg.WidthPercent of the
// terminal, clamped to [cfg.MinWidth, cfg.MaxWidth] and kept two cells
// clear of each terminal edge.
func HelpWidth(terminalWidth int, cfg HelpConfig) int {
	width := terminalWidth * cfg.WidthPercent / 100
	width = max(cfg.MinWidth, min(width, cfg.MaxWidth))
	return max(1, min(width, terminalWidth-4))
}
