package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/repository"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, seed int) (*Server, *httptest.Server) {
	t.Helper()
	s := New(repository.NewMemory(Seed(seed)...))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// newClientRepo talks to the fake API through the real client stack.
func newClientRepo(t *testing.T, ts *httptest.Server) *repository.API {
	t.Helper()
	cfg := client.DefaultConfig(ts.URL + BasePath)
	cfg.Retry = client.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return repository.NewAPI(c)
}

func TestSeed(t *testing.T) {
	seed := Seed(30)
	if len(seed) != 30 {
		t.Fatalf("len = %d, want 30", len(seed))
	}

	names := make(map[string]bool)
	for _, e := range seed {
		if err := e.Validate(); err != nil {
			t.Errorf("seed record invalid: %v", err)
		}
		if e.ID != "" {
			t.Errorf("seed records must not carry IDs, got %q", e.ID)
		}
		names[e.FullName] = true
	}
	if len(names) != 30 {
		t.Errorf("seed names should be unique, got %d distinct", len(names))
	}
}

func TestServer_SearchPaging(t *testing.T) {
	_, ts := newTestServer(t, 25)

	resp, err := http.Get(ts.URL + "/api/employees/search?term=&page=3&pageSize=10")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("listing responses should carry an ETag")
	}

	var page model.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 3 || page.PageSize != 10 || page.TotalRecords != 25 || len(page.Data) != 5 {
		t.Errorf("unexpected page: page=%d size=%d total=%d len=%d", page.Page, page.PageSize, page.TotalRecords, len(page.Data))
	}
}

func TestServer_ConditionalGet(t *testing.T) {
	_, ts := newTestServer(t, 3)

	first, err := http.Get(ts.URL + "/api/employees")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	first.Body.Close()
	etag := first.Header.Get("ETag")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/employees", nil)
	req.Header.Set("If-None-Match", etag)
	second, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET failed: %v", err)
	}
	second.Body.Close()

	if second.StatusCode != http.StatusNotModified {
		t.Errorf("status = %d, want 304", second.StatusCode)
	}
}

func TestServer_InvalidQuery(t *testing.T) {
	_, ts := newTestServer(t, 3)

	resp, err := http.Get(ts.URL + "/api/employees/search?page=abc")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_CRUDThroughClient(t *testing.T) {
	_, ts := newTestServer(t, 0)
	repo := newClientRepo(t, ts)
	ctx := context.Background()

	if err := repo.Create(ctx, model.Employee{FullName: "Ada Lovelace", Position: "Engineer", Salary: 5000}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	page, err := repo.FetchPage(ctx, "lovelace", 1, 10)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.TotalRecords != 1 {
		t.Fatalf("TotalRecords = %d, want 1", page.TotalRecords)
	}
	created := page.Data[0]
	if created.ID == "" {
		t.Fatal("server should assign an id")
	}

	created.Position = "Lead"
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := repo.FetchByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FetchByID failed: %v", err)
	}
	if got.Position != "Lead" {
		t.Errorf("Position = %q, want Lead", got.Position)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FetchByID(ctx, created.ID); !repository.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}

func TestServer_ValidationError(t *testing.T) {
	_, ts := newTestServer(t, 0)
	repo := newClientRepo(t, ts)

	err := repo.Create(context.Background(), model.Employee{FullName: "Ada", Salary: -10})

	apiErr, ok := client.AsAPIError(err)
	if !ok {
		t.Fatalf("Expected *client.APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || !strings.Contains(apiErr.Message, "salary") {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestServer_FailNext(t *testing.T) {
	s, ts := newTestServer(t, 5)
	repo := newClientRepo(t, ts)
	ctx := context.Background()

	s.FailNext(2, http.StatusServiceUnavailable, "")
	page, err := repo.FetchPage(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("read should survive two injected failures: %v", err)
	}
	if len(page.Data) != 5 {
		t.Errorf("len(Data) = %d, want 5", len(page.Data))
	}

	s.FailNext(3, http.StatusInternalServerError, "database offline")
	_, err = repo.FetchPage(ctx, "", 1, 10)
	apiErr, ok := client.AsAPIError(err)
	if !ok || apiErr.Message != "database offline" {
		t.Errorf("Expected the server message after exhausted retries, got %v", err)
	}

	s.FailNext(1, http.StatusInternalServerError, "")
	err = repo.Delete(ctx, "anything")
	apiErr, ok = client.AsAPIError(err)
	if !ok || apiErr.Message != client.MessageUnexpected {
		t.Errorf("Expected the generic unexpected error, got %v", err)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	_, ts := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_Metrics(t *testing.T) {
	_, ts := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_Run(t *testing.T) {
	s := New(repository.NewMemory())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
