// Package testutil provides testing utilities for the employee client.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines one scripted answer of the mock API.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration

	// ETag, when set, is sent with the response and a request carrying a
	// matching If-None-Match gets 304 Not Modified instead.
	ETag string
}

// RecordedRequest is a request the mock API received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// MockAPI is a scriptable employee API for tests. Responses are registered
// per "METHOD path"; a sequence is replayed in order and its last response
// repeats once the sequence is used up.
type MockAPI struct {
	server *httptest.Server

	mu        sync.Mutex
	sequences map[string][]MockResponse
	served    map[string]int
	requests  []RecordedRequest
}

// NewMockAPI creates and starts a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		sequences: make(map[string][]MockResponse),
		served:    make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears scripted responses and recorded requests.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences = make(map[string][]MockResponse)
	m.served = make(map[string]int)
	m.requests = nil
}

// SetResponse configures a single response for method and path.
func (m *MockAPI) SetResponse(method, path string, resp MockResponse) {
	m.SetSequence(method, path, resp)
}

// SetSequence configures successive responses for method and path.
func (m *MockAPI) SetSequence(method, path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + " " + path
	m.sequences[key] = responses
	m.served[key] = 0
}

// Requests returns a copy of the recorded requests.
func (m *MockAPI) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// RequestCount returns how many requests hit method and path.
func (m *MockAPI) RequestCount(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.requests {
		if r.Method == method && r.Path == path {
			count++
		}
	}
	return count
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})

	key := r.Method + " " + r.URL.Path
	seq, exists := m.sequences[key]
	var resp MockResponse
	if exists && len(seq) > 0 {
		idx := m.served[key]
		if idx >= len(seq) {
			idx = len(seq) - 1
		}
		resp = seq[idx]
		m.served[key]++
	}
	m.mu.Unlock()

	if !exists || len(seq) == 0 {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Not found"}`))
		return
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if resp.ETag != "" {
		w.Header().Set("ETag", resp.ETag)
		if r.Header.Get("If-None-Match") == resp.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse creates a 200 OK JSON response.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNoContentResponse creates a 204 No Content response.
func NewNoContentResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusNoContent}
}

// NewErrorResponse creates an error response; an empty message omits the body.
func NewErrorResponse(status int, message string) MockResponse {
	resp := MockResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
	if message != "" {
		resp.Body = `{"message": "` + message + `"}`
	}
	return resp
}

// NewServerErrorResponse creates a 500 Internal Server Error response without a message.
func NewServerErrorResponse() MockResponse {
	return NewErrorResponse(http.StatusInternalServerError, "")
}
