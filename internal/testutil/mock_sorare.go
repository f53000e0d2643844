// Package testutil provides a scriptable mock of the Sorare GraphQL
// endpoint for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// CapturedRequest is one decoded request received by the mock.
type CapturedRequest struct {
	Query     string
	Variables map[string]any
}

// IsBatch reports whether the request carries aliased sub-queries instead of
// variables.
func (r CapturedRequest) IsBatch() bool {
	return len(r.Variables) == 0 && strings.Contains(r.Query, "p0:")
}

// Slug returns the playerSlug variable of a single-player request.
func (r CapturedRequest) Slug() string {
	s, _ := r.Variables["playerSlug"].(string)
	return s
}

// Cursor returns the to variable of a single-player request, empty if absent.
func (r CapturedRequest) Cursor() string {
	s, _ := r.Variables["to"].(string)
	return s
}

// Handler produces the HTTP status and JSON body for one request.
type Handler func(req CapturedRequest) (status int, body string)

// MockSorare is a configurable mock GraphQL server.
type MockSorare struct {
	server *httptest.Server

	mu       sync.Mutex
	handler  Handler
	requests []CapturedRequest
}

// NewMockSorare creates a mock server whose default handler answers every
// request with an empty single-player page.
func NewMockSorare() *MockSorare {
	mock := &MockSorare{
		handler: func(CapturedRequest) (int, string) {
			return http.StatusOK, SinglePageBody()
		},
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		req := CapturedRequest{Query: payload.Query, Variables: payload.Variables}

		mock.mu.Lock()
		mock.requests = append(mock.requests, req)
		handler := mock.handler
		mock.mu.Unlock()

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSorare) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSorare) Close() {
	m.server.Close()
}

// SetHandler replaces the response handler.
func (m *MockSorare) SetHandler(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Requests returns a copy of all captured requests so far.
func (m *MockSorare) Requests() []CapturedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CapturedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests received so far.
func (m *MockSorare) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Entry is one tokenPrices element of a scripted response body.
type Entry map[string]any

// Sale builds a completed-auction entry: deal id present.
func Sale(date string, usdCents float64) Entry {
	return Entry{
		"amounts": map[string]any{"usdCents": usdCents},
		"date":    date,
		"deal":    map[string]any{"id": "auction-" + date},
	}
}

// Observation builds a non-sale price entry: no deal identifier, so it must
// never reach a merged history.
func Observation(date string, usdCents float64) Entry {
	return Entry{
		"amounts": map[string]any{"usdCents": usdCents},
		"date":    date,
		"deal":    nil,
	}
}

// SinglePageBody builds a single-player response body holding the entries.
func SinglePageBody(entries ...Entry) string {
	body := map[string]any{
		"data": map[string]any{
			"tokens": map[string]any{"tokenPrices": entriesOrEmpty(entries)},
		},
	}
	return mustJSON(body)
}

// BatchPageBody builds a batched response body: pages[i] answers alias p<i>.
func BatchPageBody(pages ...[]Entry) string {
	data := make(map[string]any, len(pages))
	for i, entries := range pages {
		data[fmt.Sprintf("p%d", i)] = map[string]any{
			"tokenPrices": entriesOrEmpty(entries),
		}
	}
	return mustJSON(map[string]any{"data": data})
}

// ComplexityErrorBody builds the budget-rejection response.
func ComplexityErrorBody() string {
	return mustJSON(map[string]any{
		"errors": []map[string]any{
			{"message": "Query has complexity of 612, which exceeds max complexity of 500"},
		},
	})
}

// APIErrorBody builds a non-budget error response with a null data field.
func APIErrorBody(message string) string {
	return mustJSON(map[string]any{
		"data":   nil,
		"errors": []map[string]any{{"message": message}},
	})
}

func entriesOrEmpty(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	return entries
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
