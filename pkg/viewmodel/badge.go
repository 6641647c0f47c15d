package viewmodel

import "github.com/Sternrassler/users-pagination/pkg/client"

// StatusBadge returns the badge classes used to render a user status.
// Unknown statuses get no badge.
func StatusBadge(status client.Status) string {
	switch status {
	case client.StatusActive:
		return "badge text-bg-success"
	case client.StatusBanned:
		return "badge text-bg-warning"
	case client.StatusPending:
		return "badge text-bg-danger"
	default:
		return ""
	}
}
