package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/comexware/importdesk/internal/models"
	"github.com/comexware/importdesk/internal/service"
	"github.com/comexware/importdesk/internal/store"
)

// stubExecutor serves canned rows or a canned error
type stubExecutor struct {
	items []models.ImportLineItem
	err   error
}

func (s *stubExecutor) ListLineItems(_ context.Context, f store.RowFilter) ([]models.ImportLineItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.ImportLineItem, 0)
	for _, it := range s.items {
		if f.BusinessKey == nil || it.BusinessKey == *f.BusinessKey {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *stubExecutor) ListTransit(context.Context, store.RowFilter) ([]models.TransitRecord, error) {
	return nil, s.err
}

func (s *stubExecutor) ListReceived(context.Context, store.RowFilter) ([]models.ReceivedRecord, error) {
	return nil, s.err
}

func (s *stubExecutor) UpdateLineItem(context.Context, uint64, map[string]interface{}) error {
	return s.err
}

func (s *stubExecutor) Ping(context.Context) error { return s.err }
func (s *stubExecutor) Name() string               { return "direct" }

func newTestServer(ex store.QueryExecutor) *httptest.Server {
	retry := store.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond}
	router := store.NewAccessRouter(ex, nil, false, retry, nil)
	return httptest.NewServer(NewRouter(service.NewProcessService(router, nil)))
}

type errEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *http.Response) errEnvelope {
	t.Helper()
	var env errEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubExecutor{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("every response must carry a request id")
	}
}

func TestListProcesses_EmptyDatasetIsOK(t *testing.T) {
	srv := newTestServer(&stubExecutor{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/processes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("empty dataset must not be an error, got %d", resp.StatusCode)
	}

	var entities []models.ImportProcess
	if err := json.NewDecoder(resp.Body).Decode(&entities); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("expected empty list, got %d entities", len(entities))
	}
}

func TestConnectivityErrorMapsToBadGateway(t *testing.T) {
	srv := newTestServer(&stubExecutor{err: errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/processes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	env := decodeError(t, resp)
	if env.Error.Code != string(store.ClassConnectivity) {
		t.Errorf("expected connectivity code, got %q", env.Error.Code)
	}
}

func TestTransientErrorMapsToServiceUnavailable(t *testing.T) {
	srv := newTestServer(&stubExecutor{err: errors.New("PGRST002: could not query the schema cache")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/processes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestUpdate_UnknownKeyMapsToNotFound(t *testing.T) {
	srv := newTestServer(&stubExecutor{})
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/api/processes/999", strings.NewReader(`{"supplier":"X"}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if env := decodeError(t, resp); env.Error.Code != "not_found" {
		t.Errorf("expected not_found code, got %q", env.Error.Code)
	}
}

func TestUpdate_EmptyPatchMapsToBadRequest(t *testing.T) {
	srv := newTestServer(&stubExecutor{
		items: []models.ImportLineItem{{ID: 1, BusinessKey: 100, CreatedAt: time.Now()}},
	})
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/api/processes/100", strings.NewReader(`{}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env := decodeError(t, resp); env.Error.Code != "empty_patch" {
		t.Errorf("expected empty_patch code, got %q", env.Error.Code)
	}
}

func TestBadKeyMapsToBadRequest(t *testing.T) {
	srv := newTestServer(&stubExecutor{})
	defer srv.Close()

	for _, path := range []string{
		"/api/processes/abc/products",
		"/api/processes/-5/products",
		"/api/transit?key=zero",
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}
