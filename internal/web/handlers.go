package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mkallberg/pagesync/internal/core"
	"github.com/mkallberg/pagesync/internal/logging"
	"github.com/mkallberg/pagesync/internal/notion"
)

// syncResponse is the JSON body of a sync trigger.
type syncResponse struct {
	RunID      string   `json:"runId"`
	RowID      string   `json:"rowId"`
	Outcome    string   `json:"outcome"`
	PageID     string   `json:"pageId,omitempty"`
	DurationMS int64    `json:"durationMs"`
	Error      string   `json:"error,omitempty"`
	ErrorKind  string   `json:"errorKind,omitempty"`
	Details    []string `json:"details,omitempty"`
}

// mappingResponse is the JSON shape of one column mapping.
type mappingResponse struct {
	Column   string `json:"column"`
	Index    int    `json:"index"`
	Property string `json:"property"`
	Type     string `json:"type"`
	Active   bool   `json:"active"`
	Required bool   `json:"required"`
}

func (s *Server) handleSyncRow(w http.ResponseWriter, r *http.Request) {
	rowID := strings.TrimSpace(chi.URLParam(r, "rowID"))
	if rowID == "" {
		writeError(w, http.StatusBadRequest, "row id is required")
		return
	}

	result := s.syncer.SyncRow(r.Context(), rowID)

	resp := syncResponse{
		RunID:      result.RunID,
		RowID:      result.RowID,
		Outcome:    string(result.Outcome),
		PageID:     result.PageID,
		DurationMS: result.Duration.Milliseconds(),
	}
	if result.Err != nil {
		resp.Error = result.Err.Message
		resp.ErrorKind = result.Err.Kind.String()
		resp.Details = result.Err.Details
	}

	writeJSON(w, statusForResult(result), resp)
}

// statusForResult maps a sync outcome to an HTTP status: busy conflicts,
// bad input is unprocessable, remote trouble is a bad gateway, and
// engine-side failures are internal errors.
func statusForResult(result core.SyncResult) int {
	switch result.Outcome {
	case core.OutcomeBusy:
		return http.StatusConflict
	case core.OutcomeCreated, core.OutcomeUpdated:
		return http.StatusOK
	}
	if result.Err == nil {
		return http.StatusInternalServerError
	}
	switch result.Err.Kind {
	case core.KindValidation, core.KindSchema, core.KindConversion:
		return http.StatusUnprocessableEntity
	case core.KindRetryableRemote, core.KindFatalRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.syncer.Status())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.syncer.History()
	if entries == nil {
		entries = []core.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMappings(w http.ResponseWriter, r *http.Request) {
	mappings := s.syncer.Mappings()
	resp := make([]mappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = mappingResponse{
			Column:   m.SourceColumn,
			Index:    m.Column,
			Property: m.TargetProperty,
			Type:     m.Type.String(),
			Active:   m.Active,
			Required: m.Required,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFetchPage(w http.ResponseWriter, r *http.Request) {
	pageID := strings.TrimSpace(chi.URLParam(r, "pageID"))
	if pageID == "" {
		writeError(w, http.StatusBadRequest, "page id is required")
		return
	}

	page, err := s.pages.FetchPage(r.Context(), pageID)
	if err != nil {
		var apiErr *notion.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		logging.FromContext(r.Context()).Error("fetching page failed", "page_id", pageID, "error", err)
		writeError(w, http.StatusBadGateway, "fetching page failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing useful left to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
