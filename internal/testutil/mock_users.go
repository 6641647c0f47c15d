// Package testutil provides testing utilities for the users pagination client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// UsersPath is the listing path served by MockUsersAPI.
const UsersPath = "/api/v1/users"

// MockUser is one row of the in-memory directory.
type MockUser struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Status   string `json:"status"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

// MockResponse overrides the listing with a fixed reply.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// ListingQuery records the parameters of a received listing request.
type ListingQuery struct {
	Name string
	Page int
	Size int
	Raw  string
}

// MockUsersAPI is an httptest backend serving a paginated user listing
// with the same envelope and page shape as the real service.
type MockUsersAPI struct {
	server *httptest.Server
	mu     sync.RWMutex
	users  []MockUser

	override  *MockResponse
	failures  int
	pageDelay map[int]time.Duration

	// Tracking
	RequestCount      int
	LastQuery         ListingQuery
	LastRequestHeader http.Header
}

// NewMockUsersAPI starts a backend holding users.
func NewMockUsersAPI(users []MockUser) *MockUsersAPI {
	m := &MockUsersAPI{
		users:     users,
		pageDelay: make(map[int]time.Duration),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+UsersPath, m.handleList)
	m.server = httptest.NewServer(mux)

	return m
}

// URL returns the mock server URL.
func (m *MockUsersAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUsersAPI) Close() {
	m.server.Close()
}

// Reset clears tracking counters and overrides.
func (m *MockUsersAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = ListingQuery{}
	m.LastRequestHeader = nil
	m.override = nil
	m.failures = 0
	m.pageDelay = make(map[int]time.Duration)
}

// SetResponse makes every listing request return resp until Reset.
func (m *MockUsersAPI) SetResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.override = &resp
}

// FailNext makes the next n listing requests fail with 500.
func (m *MockUsersAPI) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// SetPageDelay delays responses for one page index.
func (m *MockUsersAPI) SetPageDelay(page int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageDelay[page] = d
}

// GetRequestCount returns the number of listing requests received.
func (m *MockUsersAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastQuery returns the parameters of the last listing request.
func (m *MockUsersAPI) GetLastQuery() ListingQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// GetLastRequestHeader returns the headers of the last listing request.
func (m *MockUsersAPI) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

func (m *MockUsersAPI) handleList(w http.ResponseWriter, r *http.Request) {
	q := parseListingQuery(r)

	m.mu.Lock()
	m.RequestCount++
	m.LastQuery = q
	m.LastRequestHeader = r.Header.Clone()
	override := m.override
	fail := m.failures > 0
	if fail {
		m.failures--
	}
	delay := m.pageDelay[q.Page]
	users := m.users
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if override != nil {
		if override.Delay > 0 {
			time.Sleep(override.Delay)
		}
		for key, value := range override.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(override.StatusCode)
		if override.Body != "" {
			w.Write([]byte(override.Body))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(envelope(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", nil))
		return
	}

	if q.Page < 0 || q.Size <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(envelope(http.StatusBadRequest, "BAD_REQUEST", "Invalid paging parameters", nil))
		return
	}

	page := BuildPage(filterByName(users, q.Name), q.Page, q.Size)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(envelope(http.StatusOK, "OK", "Users retrieved", page))
}

func parseListingQuery(r *http.Request) ListingQuery {
	values := r.URL.Query()
	q := ListingQuery{
		Name: values.Get("name"),
		Page: 0,
		Size: 10,
		Raw:  r.URL.RawQuery,
	}
	if v := values.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Page = n
		} else {
			q.Page = -1
		}
	}
	if v := values.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Size = n
		} else {
			q.Size = 0
		}
	}
	return q
}

func filterByName(users []MockUser, name string) []MockUser {
	if name == "" {
		return users
	}
	needle := strings.ToLower(name)
	out := make([]MockUser, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, u)
		}
	}
	return out
}

func envelope(code int, status, message string, data any) map[string]any {
	body := map[string]any{
		"timeStamp":  time.Now().Format("2006-01-02T15:04:05.000000"),
		"statusCode": code,
		"status":     status,
		"message":    message,
	}
	if data != nil {
		body["data"] = data
	}
	return body
}

// BuildPage slices users into the page shape returned by the backend.
func BuildPage(users []MockUser, page, size int) map[string]any {
	total := len(users)
	totalPages := (total + size - 1) / size

	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := users[start:end]
	if content == nil {
		content = []MockUser{}
	}

	sort := map[string]bool{"empty": true, "sorted": false, "unsorted": true}

	return map[string]any{
		"content": content,
		"pageable": map[string]any{
			"pageNumber": page,
			"pageSize":   size,
			"sort":       sort,
			"offset":     page * size,
			"paged":      true,
			"unpaged":    false,
		},
		"last":             page+1 >= totalPages,
		"totalPages":       totalPages,
		"totalElements":    total,
		"size":             size,
		"number":           page,
		"sort":             sort,
		"first":            page == 0,
		"numberOfElements": len(content),
		"empty":            len(content) == 0,
	}
}

// GenerateUsers returns n users cycling through all statuses.
func GenerateUsers(n int) []MockUser {
	statuses := []string{"ACTIVE", "BANNED", "PENDING"}
	users := make([]MockUser, n)
	for i := range users {
		users[i] = MockUser{
			Name:     fmt.Sprintf("User %03d", i+1),
			Address:  fmt.Sprintf("%d Main Street", i+1),
			Status:   statuses[i%len(statuses)],
			Phone:    fmt.Sprintf("555-%04d", i+1),
			Email:    fmt.Sprintf("user%03d@example.com", i+1),
			ImageURL: fmt.Sprintf("https://randomuser.me/api/portraits/lego/%d.jpg", i%10),
		}
	}
	return users
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"statusCode": 500, "status": "INTERNAL_SERVER_ERROR", "message": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"statusCode": 429, "status": "TOO_MANY_REQUESTS", "message": "Slow down"}`,
		Headers:    map[string]string{"Content-Type": "application/json", "Retry-After": "1"},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>maintenance</html>`,
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}
