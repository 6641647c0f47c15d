package viewmodel

import (
	"github.com/Sternrassler/users-pagination/pkg/client"
	"github.com/Sternrassler/users-pagination/pkg/pagination"
)

// State is the variant of a ViewState.
type State string

const (
	// StateLoading means a request is pending and nothing can be shown yet.
	StateLoading State = "APP_LOADING"

	// StateLoaded means Response holds a page to show.
	StateLoaded State = "APP_LOADED"

	// StateError means the last request failed; Err holds the cause.
	StateError State = "APP_ERROR"
)

// ViewState is one snapshot of the users view.
// Response is set only for StateLoaded and Err only for StateError.
type ViewState struct {
	State    State
	Response *client.PageResponse
	Err      error

	// Pending marks a Loaded view that presents the previous response
	// while a newer request is in flight.
	Pending bool

	CurrentPage int
	Window      pagination.Window
}

// Page returns the loaded page, or nil outside StateLoaded.
func (v ViewState) Page() *client.Page {
	if v.State != StateLoaded || v.Response == nil {
		return nil
	}
	return v.Response.Data
}

// Users returns the rows of the loaded page.
func (v ViewState) Users() []client.User {
	if p := v.Page(); p != nil {
		return p.Content
	}
	return nil
}

// PageNumbers lists the page buttons of the current window that exist.
func (v ViewState) PageNumbers() []int {
	p := v.Page()
	if p == nil {
		return nil
	}
	return v.Window.Pages(p.TotalPages)
}

// HasPreviousWindow reports whether the "previous window" control applies.
func (v ViewState) HasPreviousWindow() bool {
	return v.Window.HasPrevious()
}

// HasNextWindow reports whether the "next window" control applies.
func (v ViewState) HasNextWindow() bool {
	p := v.Page()
	return p != nil && v.Window.HasNext(p.TotalPages)
}
