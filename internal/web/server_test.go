package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkallberg/pagesync/internal/config"
	"github.com/mkallberg/pagesync/internal/core"
	"github.com/mkallberg/pagesync/internal/notion"
)

type fakeSyncer struct {
	result  core.SyncResult
	lastRow string
}

func (f *fakeSyncer) SyncRow(_ context.Context, rowID string) core.SyncResult {
	f.lastRow = rowID
	result := f.result
	result.RowID = rowID
	return result
}

func (f *fakeSyncer) Status() core.SyncStatus {
	return core.SyncStatus{LastOutcome: core.OutcomeCreated, HistorySize: 1}
}

func (f *fakeSyncer) History() []core.HistoryEntry {
	return []core.HistoryEntry{{Time: time.Now(), Message: "row row-1 created page page-1"}}
}

func (f *fakeSyncer) Mappings() []core.ColumnMapping {
	return []core.ColumnMapping{
		{SourceColumn: "A", Column: 0, TargetProperty: "Name", Type: core.TypeTitle, Active: true, Required: true},
	}
}

type fakeFetcher struct {
	page *notion.Page
	err  error
}

func (f *fakeFetcher) FetchPage(context.Context, string) (*notion.Page, error) {
	return f.page, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Security: config.SecurityConfig{
			RequireAPIKey: true,
			APIKeys:       []string{"test-key"},
		},
	}
}

func doRequest(t *testing.T, srv *Server, method, path, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	srv := NewServer(&fakeSyncer{}, nil, testConfig())

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestAPIRequiresKey(t *testing.T) {
	srv := NewServer(&fakeSyncer{}, nil, testConfig())

	if rec := doRequest(t, srv, http.MethodGet, "/api/status", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key = %d, want 401", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/api/status", "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("invalid key = %d, want 403", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/api/status", "test-key"); rec.Code != http.StatusOK {
		t.Errorf("valid key = %d, want 200", rec.Code)
	}
}

func TestSyncRowResponses(t *testing.T) {
	tests := []struct {
		name       string
		result     core.SyncResult
		wantStatus int
	}{
		{
			name:       "created",
			result:     core.SyncResult{RunID: "r1", Outcome: core.OutcomeCreated, PageID: "page-1"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "updated",
			result:     core.SyncResult{RunID: "r1", Outcome: core.OutcomeUpdated, PageID: "page-1"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "busy",
			result:     core.SyncResult{RunID: "r1", Outcome: core.OutcomeBusy},
			wantStatus: http.StatusConflict,
		},
		{
			name: "validation failure",
			result: core.SyncResult{RunID: "r1", Outcome: core.OutcomeFailed, Err: &core.SyncError{
				Kind:    core.KindValidation,
				Message: "row failed validation",
				Details: []string{"column A (Name): required value is empty"},
			}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "remote failure",
			result: core.SyncResult{RunID: "r1", Outcome: core.OutcomeFailed, Err: &core.SyncError{
				Kind:    core.KindRetryableRemote,
				Message: "creating page failed",
			}},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "store failure",
			result: core.SyncResult{RunID: "r1", Outcome: core.OutcomeFailed, Err: &core.SyncError{
				Kind:    core.KindStore,
				Message: "reading row failed",
			}},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := &fakeSyncer{result: tt.result}
			srv := NewServer(syncer, nil, testConfig())

			rec := doRequest(t, srv, http.MethodPost, "/api/sync/row-1", "test-key")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if syncer.lastRow != "row-1" {
				t.Errorf("syncer saw row %q, want row-1", syncer.lastRow)
			}

			var resp syncResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Outcome != string(tt.result.Outcome) {
				t.Errorf("outcome = %q, want %q", resp.Outcome, tt.result.Outcome)
			}
			if tt.result.Err != nil && resp.ErrorKind != tt.result.Err.Kind.String() {
				t.Errorf("error kind = %q, want %q", resp.ErrorKind, tt.result.Err.Kind)
			}
		})
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := NewServer(&fakeSyncer{}, nil, testConfig())

	rec := doRequest(t, srv, http.MethodGet, "/api/status", "test-key")
	var status core.SyncStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if status.LastOutcome != core.OutcomeCreated || status.HistorySize != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv := NewServer(&fakeSyncer{}, nil, testConfig())

	rec := doRequest(t, srv, http.MethodGet, "/api/history", "test-key")
	var entries []core.HistoryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

func TestMappingsEndpoint(t *testing.T) {
	srv := NewServer(&fakeSyncer{}, nil, testConfig())

	rec := doRequest(t, srv, http.MethodGet, "/api/mappings", "test-key")
	var mappings []mappingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &mappings); err != nil {
		t.Fatalf("decoding mappings: %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("got %d mappings, want 1", len(mappings))
	}
	if mappings[0].Column != "A" || mappings[0].Type != "title" {
		t.Errorf("mapping = %+v", mappings[0])
	}
}

func TestFetchPageEndpoint(t *testing.T) {
	fetcher := &fakeFetcher{page: &notion.Page{ID: "page-1"}}
	srv := NewServer(&fakeSyncer{}, fetcher, testConfig())

	rec := doRequest(t, srv, http.MethodGet, "/api/pages/page-1", "test-key")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	fetcher.page = nil
	fetcher.err = &notion.APIError{Status: 404, Code: "object_not_found", Message: "not found"}
	rec = doRequest(t, srv, http.MethodGet, "/api/pages/missing", "test-key")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing page status = %d, want 404", rec.Code)
	}
}
