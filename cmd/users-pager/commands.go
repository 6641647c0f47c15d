package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/users-pagination/pkg/pagination"
)

type commandKind int

const (
	cmdNextPage commandKind = iota + 1
	cmdPrevPage
	cmdGoTo
	cmdWindow
	cmdSearch
	cmdReload
	cmdHelp
	cmdQuit
)

// command is one parsed input line. Page is zero-based.
type command struct {
	kind commandKind
	page int
	dir  pagination.Direction
	text string
}

const helpText = `Commands:
  next, n             next page
  prev, p             previous page
  page N, goto N      jump to page N (1-based)
  window next|prev    next or previous block of pages (wn, wp)
  search TEXT         filter by name; "search" alone clears the filter
  reload, r           fetch the current page again
  help                show this help
  quit, q             exit`

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, fmt.Errorf("empty command")
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "next", "n":
		return command{kind: cmdNextPage}, nil
	case "prev", "p", "previous":
		return command{kind: cmdPrevPage}, nil
	case "page", "goto", "g":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: %s N", verb)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("page must be a number (got %q)", args[0])
		}
		return command{kind: cmdGoTo, page: n - 1}, nil
	case "window", "w":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: window next|prev")
		}
		dir, err := pagination.ParseDirection(args[0])
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdWindow, dir: dir}, nil
	case "wn":
		return command{kind: cmdWindow, dir: pagination.Forward}, nil
	case "wp":
		return command{kind: cmdWindow, dir: pagination.Backward}, nil
	case "search", "s", "/":
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		return command{kind: cmdSearch, text: text}, nil
	case "reload", "r":
		return command{kind: cmdReload}, nil
	case "help", "h", "?":
		return command{kind: cmdHelp}, nil
	case "quit", "q", "exit":
		return command{kind: cmdQuit}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q (type help)", fields[0])
	}
}
