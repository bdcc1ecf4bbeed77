package core

// orchestrator.go drives one row through the full pipeline: mapping
// checks, row validation, property conversion, the create-or-update
// decision, and outcome recording.
//
// A Syncer processes one row at a time. Triggers that arrive while a run
// is in flight are dropped, not queued; the caller sees OutcomeBusy and
// can retry later. The guard is an atomic compare-and-swap, so the check
// and the claim are one operation even under overlapping triggers.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mkallberg/pagesync/internal/notion"
)

// RowStore reads rows from the tabular source and writes single cells
// back. Implementations live outside the engine (see internal/store).
type RowStore interface {
	ReadRow(ctx context.Context, rowID string) (RowData, error)
	WriteCell(ctx context.Context, rowID string, slot int, value string) error
}

// PageWriter is the remote side of the pipeline, satisfied by
// *notion.Client. Both calls are already rate-limited and retried by the
// implementation.
type PageWriter interface {
	CreatePage(ctx context.Context, databaseID string, props map[string]notion.Property) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, props map[string]notion.Property) (*notion.Page, error)
}

// Notifier surfaces run outcomes to users. Implementations must not
// fail the run; delivery problems are theirs to log.
type Notifier interface {
	Success(ctx context.Context, message string)
	Failure(ctx context.Context, message string)
}

type noopNotifier struct{}

func (noopNotifier) Success(context.Context, string) {}
func (noopNotifier) Failure(context.Context, string) {}

// Outcome is the terminal state of a sync run.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
	OutcomeBusy    Outcome = "busy"
)

// SyncResult is what every SyncRow call returns; failures are carried in
// Err rather than surfaced as panics or bare errors.
type SyncResult struct {
	RunID    string
	RowID    string
	Outcome  Outcome
	PageID   string
	Err      *SyncError
	Duration time.Duration
}

// SyncStatus is a snapshot of the orchestrator for the status API.
type SyncStatus struct {
	Processing  bool      `json:"processing"`
	LastRunAt   time.Time `json:"lastRunAt"`
	LastOutcome Outcome   `json:"lastOutcome,omitempty"`
	HistorySize int       `json:"historySize"`
}

// SyncerOptions configures a Syncer. DatabaseID, Rows, and Pages are
// required; everything else has a default.
type SyncerOptions struct {
	DatabaseID      string
	Mappings        []ColumnMapping
	PageIDSlot      int // reserved cell index holding the remote page id
	Rows            RowStore
	Pages           PageWriter
	Notifier        Notifier
	Logger          *slog.Logger
	HistoryCapacity int
}

// Syncer synchronizes single rows into Notion pages. Construct with
// NewSyncer and share one instance per service lifetime.
type Syncer struct {
	databaseID string
	mappings   []ColumnMapping
	pageIDSlot int
	rows       RowStore
	pages      PageWriter
	notifier   Notifier
	log        *slog.Logger
	history    *History

	processing atomic.Bool

	mu          sync.Mutex
	lastRunAt   time.Time
	lastOutcome Outcome
}

// NewSyncer validates the options and returns a ready Syncer.
func NewSyncer(opts SyncerOptions) (*Syncer, error) {
	if strings.TrimSpace(opts.DatabaseID) == "" {
		return nil, errors.New("syncer: database id is required")
	}
	if opts.Rows == nil {
		return nil, errors.New("syncer: row store is required")
	}
	if opts.Pages == nil {
		return nil, errors.New("syncer: page writer is required")
	}
	if opts.PageIDSlot < 0 {
		return nil, fmt.Errorf("syncer: page id slot %d is negative", opts.PageIDSlot)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		databaseID: opts.DatabaseID,
		mappings:   opts.Mappings,
		pageIDSlot: opts.PageIDSlot,
		rows:       opts.Rows,
		pages:      opts.Pages,
		notifier:   notifier,
		log:        logger,
		history:    NewHistory(opts.HistoryCapacity),
	}, nil
}

// Mappings returns the configured column mappings.
func (s *Syncer) Mappings() []ColumnMapping {
	return s.mappings
}

// Status returns a snapshot for the status API.
func (s *Syncer) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SyncStatus{
		Processing:  s.processing.Load(),
		LastRunAt:   s.lastRunAt,
		LastOutcome: s.lastOutcome,
		HistorySize: s.history.Len(),
	}
}

// History returns the recorded outcomes, oldest first.
func (s *Syncer) History() []HistoryEntry {
	return s.history.Entries()
}

// SyncRow runs the full pipeline for one row. It never panics outward
// and never returns a bare error: every failure is a tagged *SyncError
// inside the result, also appended to history and sent to the notifier.
func (s *Syncer) SyncRow(ctx context.Context, rowID string) SyncResult {
	runID := uuid.New().String()
	log := s.log.With("run_id", runID, "row_id", rowID)

	if !s.processing.CompareAndSwap(false, true) {
		log.Warn("sync already in progress, dropping trigger")
		return SyncResult{RunID: runID, RowID: rowID, Outcome: OutcomeBusy}
	}
	defer s.processing.Store(false)

	start := time.Now()
	result := s.run(ctx, log, rowID)
	result.RunID = runID
	result.RowID = rowID
	result.Duration = time.Since(start)

	s.mu.Lock()
	s.lastRunAt = time.Now()
	s.lastOutcome = result.Outcome
	s.mu.Unlock()

	s.record(ctx, log, result)
	return result
}

// run executes the pipeline steps and maps every failure to its kind.
func (s *Syncer) run(ctx context.Context, log *slog.Logger, rowID string) SyncResult {
	if vr := ValidateMappings(s.mappings); !vr.Valid {
		return failed(&SyncError{
			Kind:    KindSchema,
			Message: "column mappings are misconfigured",
			Details: vr.Messages(),
		})
	}

	row, err := s.rows.ReadRow(ctx, rowID)
	if err != nil {
		return failed(&SyncError{Kind: KindStore, Message: "reading row failed", Err: err})
	}

	if vr := ValidateRow(row, s.mappings); !vr.Valid {
		return failed(&SyncError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("row %s failed validation", rowID),
			Details: vr.Messages(),
		})
	}

	props, convErr := s.buildProperties(row)
	if convErr != nil {
		return failed(convErr)
	}

	if pageID := s.storedPageID(row); pageID != "" {
		if _, err := s.pages.UpdatePage(ctx, pageID, props); err != nil {
			return failed(&SyncError{Kind: remoteKind(err), Message: "updating page failed", Err: err})
		}
		return SyncResult{Outcome: OutcomeUpdated, PageID: pageID}
	}

	page, err := s.pages.CreatePage(ctx, s.databaseID, props)
	if err != nil {
		return failed(&SyncError{Kind: remoteKind(err), Message: "creating page failed", Err: err})
	}
	// The page exists remotely now; losing the id write must not fail
	// the run, it only costs a duplicate-create on the next sync.
	if err := s.rows.WriteCell(ctx, rowID, s.pageIDSlot, page.ID); err != nil {
		log.Warn("page created but persisting its id failed",
			"page_id", page.ID,
			"slot", s.pageIDSlot,
			"error", err,
		)
	}
	return SyncResult{Outcome: OutcomeCreated, PageID: page.ID}
}

// buildProperties converts the active mappings into the outbound payload.
// Empty optional fields are omitted; any conversion failure aborts the
// row so no partial page is ever written.
func (s *Syncer) buildProperties(row RowData) (map[string]notion.Property, *SyncError) {
	props := make(map[string]notion.Property, len(s.mappings))
	for _, m := range s.mappings {
		if !m.Active {
			continue
		}
		var value any
		if m.Column >= 0 && m.Column < len(row) {
			value = row[m.Column]
		}
		if isEmptyCell(value) && !m.Required {
			continue
		}
		prop, err := Convert(value, m.Type)
		if err != nil {
			return nil, &SyncError{
				Kind:    KindConversion,
				Message: fmt.Sprintf("%s could not be converted", fieldLabel(m)),
				Err:     err,
			}
		}
		props[m.TargetProperty] = prop
	}
	return props, nil
}

// storedPageID reads the reserved cell holding the remote page id.
func (s *Syncer) storedPageID(row RowData) string {
	if s.pageIDSlot >= len(row) {
		return ""
	}
	return strings.TrimSpace(cellString(row[s.pageIDSlot]))
}

// record appends the outcome to history, notifies, and logs.
func (s *Syncer) record(ctx context.Context, log *slog.Logger, result SyncResult) {
	entry := HistoryEntry{
		Time: time.Now(),
		Context: map[string]string{
			"run_id": result.RunID,
			"row_id": result.RowID,
		},
	}

	if result.Err != nil {
		entry.Message = result.Err.Error()
		entry.Context["kind"] = result.Err.Kind.String()
		s.history.Append(entry)
		s.notifier.Failure(ctx, notifyMessage(result.RowID, result.Err))
		log.Error("row sync failed",
			"kind", result.Err.Kind.String(),
			"error", result.Err,
			"duration_ms", result.Duration.Milliseconds(),
		)
		return
	}

	entry.Message = fmt.Sprintf("row %s %s page %s", result.RowID, result.Outcome, result.PageID)
	entry.Context["page_id"] = result.PageID
	s.history.Append(entry)
	s.notifier.Success(ctx, fmt.Sprintf("Row %s synced: %s page %s", result.RowID, result.Outcome, result.PageID))
	log.Info("row sync complete",
		"outcome", string(result.Outcome),
		"page_id", result.PageID,
		"duration_ms", result.Duration.Milliseconds(),
	)
}

func failed(err *SyncError) SyncResult {
	return SyncResult{Outcome: OutcomeFailed, Err: err}
}

// notifyMessage renders a category-appropriate human-readable message
// for the notifier.
func notifyMessage(rowID string, err *SyncError) string {
	switch err.Kind {
	case KindValidation:
		return fmt.Sprintf("Row %s failed validation:\n- %s", rowID, strings.Join(err.Details, "\n- "))
	case KindSchema:
		return fmt.Sprintf("Column mappings are misconfigured:\n- %s", strings.Join(err.Details, "\n- "))
	case KindConversion:
		return fmt.Sprintf("Row %s could not be converted: %s", rowID, err.Message)
	case KindFatalRemote:
		var apiErr *notion.APIError
		if errors.As(err.Err, &apiErr) {
			switch apiErr.Status {
			case 401:
				return "Notion rejected the API token: invalid credentials."
			case 404:
				return "Notion target not found: check the database id and page ids."
			}
		}
		return fmt.Sprintf("Notion rejected the request for row %s: %v", rowID, err.Err)
	case KindRetryableRemote:
		return fmt.Sprintf("Notion is unavailable; gave up after retries for row %s: %v", rowID, err.Err)
	case KindStore:
		return fmt.Sprintf("Row storage failed for row %s: %v", rowID, err.Err)
	case KindConfig:
		return fmt.Sprintf("Configuration problem while syncing row %s: %s", rowID, err.Message)
	default:
		return fmt.Sprintf("Sync failed for row %s: %v", rowID, err)
	}
}
