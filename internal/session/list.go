package session

// List is a slice of items with an optional selected row.
// Navigation wraps at both ends.
type List[T any] struct {
	Items    []T
	selected int // -1 = none
}

// NewList returns a List over items with nothing selected.
func NewList[T any](items []T) List[T] {
	return List[T]{Items: items, selected: -1}
}

// Selected returns the selected index, if any.
func (l List[T]) Selected() (int, bool) {
	if l.selected < 0 || l.selected >= len(l.Items) {
		return 0, false
	}
	return l.selected, true
}

// SelectedItem returns the selected item, if any.
func (l List[T]) SelectedItem() (T, bool) {
	i, ok := l.Selected()
	if !ok {
		var zero T
		return zero, false
	}
	return l.Items[i], true
}

// Len returns the number of items.
func (l List[T]) Len() int {
	return len(l.Items)
}

// Next selects the following row, wrapping to the first.
// With nothing selected it selects the first row.
func (l *List[T]) Next() {
	if len(l.Items) == 0 {
		return
	}
	i, ok := l.Selected()
	switch {
	case !ok:
		l.selected = 0
	case i >= len(l.Items)-1:
		l.selected = 0
	default:
		l.selected = i + 1
	}
}

// Previous selects the preceding row, wrapping to the last.
// With nothing selected it selects the first row.
func (l *List[T]) Previous() {
	if len(l.Items) == 0 {
		return
	}
	i, ok := l.Selected()
	switch {
	case !ok:
		l.selected = 0
	case i == 0:
		l.selected = len(l.Items) - 1
	default:
		l.selected = i - 1
	}
}

// Unselect clears the selection.
func (l *List[T]) Unselect() {
	l.selected = -1
}
