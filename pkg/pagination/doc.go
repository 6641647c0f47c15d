// Package pagination provides the page-window arithmetic behind the users
// view.
//
// A Window is the contiguous block of page-number buttons shown at once.
// Its start is always a multiple of its size, so moving one window forward
// or backward keeps the buttons aligned:
//
//	w := pagination.Window{Start: 0, Size: 10}
//	next, w, ok := pagination.Step(9, w, pagination.Forward)
//	// next == 10, w.Start == 10, ok == true
//
// Step moves one page and shifts the window when the move crosses a window
// boundary. Shift moves a whole window. Neither ever produces a negative
// page or window start.
package pagination
