package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultWindowSize is the number of page buttons shown at once.
const DefaultWindowSize = 10

// ErrInvalidWindowSize is returned for a non-positive window size.
var ErrInvalidWindowSize = errors.New("window size must be positive")

// Direction selects which way a step or shift moves.
type Direction int

const (
	// Forward moves towards higher page indexes.
	Forward Direction = iota + 1

	// Backward moves towards page 0.
	Backward
)

// String returns "forward" or "backward".
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts forward/next and backward/prev/previous.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "next", "n":
		return Forward, nil
	case "backward", "back", "prev", "previous", "p":
		return Backward, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Window is the block of page buttons currently on display.
type Window struct {
	Start int
	Size  int
}

// NewWindow returns the first window of the given size.
func NewWindow(size int) (Window, error) {
	if size <= 0 {
		return Window{}, fmt.Errorf("%w (got %d)", ErrInvalidWindowSize, size)
	}
	return Window{Start: 0, Size: size}, nil
}

// WindowFor returns the window of the given size that contains page.
// size must be positive.
func WindowFor(page, size int) Window {
	if page < 0 {
		page = 0
	}
	return Window{Start: page - page%size, Size: size}
}

// End returns the first page index after the window.
func (w Window) End() int {
	return w.Start + w.Size
}

// Contains reports whether page has a button in this window.
func (w Window) Contains(page int) bool {
	return page >= w.Start && page < w.End()
}

// HasPrevious reports whether a window exists before this one.
func (w Window) HasPrevious() bool {
	return w.Start > 0
}

// HasNext reports whether pages exist after this window.
func (w Window) HasNext(totalPages int) bool {
	return w.End() < totalPages
}

// Pages lists the page indexes to render, cut off at totalPages.
func (w Window) Pages(totalPages int) []int {
	end := w.End()
	if end > totalPages {
		end = totalPages
	}
	if end <= w.Start {
		return nil
	}
	pages := make([]int, 0, end-w.Start)
	for p := w.Start; p < end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Shift moves the window by one window size. ok is false when the move
// would put the start below zero; the window is then returned unchanged.
func (w Window) Shift(dir Direction) (Window, bool) {
	switch dir {
	case Forward:
		return Window{Start: w.Start + w.Size, Size: w.Size}, true
	case Backward:
		if w.Start-w.Size < 0 {
			return w, false
		}
		return Window{Start: w.Start - w.Size, Size: w.Size}, true
	default:
		return w, false
	}
}

// Step moves one page from current. Stepping backward from a page that is
// a multiple of the window size moves the window back; stepping forward
// onto such a page moves it forward. ok is false when the move would go
// below page 0.
func Step(current int, w Window, dir Direction) (next int, win Window, ok bool) {
	switch dir {
	case Forward:
		next = current + 1
		if next%w.Size == 0 {
			w, _ = w.Shift(Forward)
		}
		return next, w, true
	case Backward:
		if current <= 0 {
			return current, w, false
		}
		if current%w.Size == 0 {
			w, _ = w.Shift(Backward)
		}
		return current - 1, w, true
	default:
		return current, w, false
	}
}
