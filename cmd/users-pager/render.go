package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Sternrassler/users-pagination/pkg/viewmodel"
)

// render writes a full view: the users table followed by the page bar.
func render(w io.Writer, v viewmodel.ViewState) {
	switch v.State {
	case viewmodel.StateLoading:
		fmt.Fprintln(w, "Loading users...")
		return
	case viewmodel.StateError:
		fmt.Fprintf(w, "Error: %v\n", v.Err)
		fmt.Fprintln(w, "Type reload to try again.")
		return
	}

	page := v.Page()
	if page == nil {
		return
	}

	if len(page.Content) == 0 {
		fmt.Fprintln(w, "No users found.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tEMAIL\tPHONE\tADDRESS\tSTATUS\tBADGE")
		for _, u := range page.Content {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				u.Name, u.Email, u.Phone, u.Address, u.Status, viewmodel.StatusBadge(u.Status))
		}
		tw.Flush()
	}

	first := page.Number*page.Size + 1
	last := first + page.NumberOfElements - 1
	if page.NumberOfElements == 0 {
		first, last = 0, 0
	}
	fmt.Fprintf(w, "Showing %d-%d of %d users\n", first, last, page.TotalElements)
	fmt.Fprintln(w, pageBar(v))
}

// pageBar renders the window of page buttons with 1-based labels, the
// current page in brackets. A current page outside the window is appended.
func pageBar(v viewmodel.ViewState) string {
	var b strings.Builder

	if v.HasPreviousWindow() {
		b.WriteString("« ")
	}
	for i, p := range v.PageNumbers() {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p == v.CurrentPage {
			fmt.Fprintf(&b, "[%d]", p+1)
		} else {
			fmt.Fprintf(&b, "%d", p+1)
		}
	}
	if v.HasNextWindow() {
		b.WriteString(" »")
	}
	if v.Page() != nil && !v.Window.Contains(v.CurrentPage) {
		fmt.Fprintf(&b, " … [%d]", v.CurrentPage+1)
	}

	if page := v.Page(); page != nil {
		fmt.Fprintf(&b, "  (page %d of %d)", v.CurrentPage+1, page.TotalPages)
	}
	return b.String()
}

// renderProgress writes the one-line notice for intermediate views.
// It returns false for views that render writes in full.
func renderProgress(w io.Writer, v viewmodel.ViewState) bool {
	switch {
	case v.State == viewmodel.StateLoading:
		fmt.Fprintln(w, "Loading users...")
		return true
	case v.State == viewmodel.StateLoaded && v.Pending:
		fmt.Fprintf(w, "Loading... (showing page %d)\n", v.CurrentPage+1)
		return true
	default:
		return false
	}
}
