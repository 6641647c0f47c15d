package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Query defaults used when the caller does not ask for anything specific.
const (
	DefaultPage     = 0
	DefaultPageSize = 10
)

// Status is the account state of a listed user.
type Status string

const (
	// StatusActive marks a user in good standing.
	StatusActive Status = "ACTIVE"

	// StatusBanned marks a user that has been banned.
	StatusBanned Status = "BANNED"

	// StatusPending marks a user awaiting confirmation.
	StatusPending Status = "PENDING"
)

// Valid reports whether s is one of the statuses the backend emits.
// Comparison is case-sensitive.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusBanned, StatusPending:
		return true
	default:
		return false
	}
}

// Query holds the parameters of one listing request.
type Query struct {
	// Name filters users whose name contains the value. Empty means no filter.
	Name string

	// Page is the zero-based page index.
	Page int `validate:"gte=0"`

	// Size is the number of users per page.
	Size int `validate:"gt=0"`
}

// DefaultQuery returns the unfiltered first page with the default size.
func DefaultQuery() Query {
	return Query{
		Name: "",
		Page: DefaultPage,
		Size: DefaultPageSize,
	}
}

// PageResponse is the envelope the listing endpoint wraps every page in.
type PageResponse struct {
	TimeStamp  string `json:"timeStamp"`
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Data       *Page  `json:"data" validate:"required"`
}

// Page is one slice of the user listing plus its position in the full set.
type Page struct {
	Content          []User   `json:"content" validate:"dive"`
	Pageable         Pageable `json:"pageable"`
	Last             bool     `json:"last"`
	TotalPages       int      `json:"totalPages" validate:"gte=0"`
	TotalElements    int64    `json:"totalElements" validate:"gte=0"`
	Size             int      `json:"size" validate:"gte=0"`
	Number           int      `json:"number" validate:"gte=0"`
	Sort             Sort     `json:"sort"`
	First            bool     `json:"first"`
	NumberOfElements int      `json:"numberOfElements" validate:"gte=0"`
	Empty            bool     `json:"empty"`
}

// Pageable echoes the paging request the backend served.
type Pageable struct {
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	Sort       Sort  `json:"sort"`
	Offset     int64 `json:"offset"`
	Paged      bool  `json:"paged"`
	Unpaged    bool  `json:"unpaged"`
}

// unpagedMarker is how the backend serializes a request without paging.
const unpagedMarker = "INSTANCE"

// UnmarshalJSON accepts both the object form and the bare "INSTANCE"
// string used for unpaged results.
func (p *Pageable) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var marker string
		if err := json.Unmarshal(trimmed, &marker); err != nil {
			return err
		}
		if marker != unpagedMarker {
			return fmt.Errorf("unexpected pageable value %q", marker)
		}
		*p = Pageable{Unpaged: true}
		return nil
	}

	type plain Pageable
	var v plain
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*p = Pageable(v)
	return nil
}

// Sort describes the ordering applied to the page.
type Sort struct {
	Empty    bool `json:"empty"`
	Sorted   bool `json:"sorted"`
	Unsorted bool `json:"unsorted"`
}

// User is a single row of the listing.
type User struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Status   Status `json:"status" validate:"oneof=ACTIVE BANNED PENDING"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}
