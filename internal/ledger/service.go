// Package ledger is the single source of truth for per-record validation
// state. Every status write flows through here so the session counters are
// adjusted with the same transition delta the row itself records.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"

	"github.com/google/uuid"
)

// UpsertInput carries validation-rule or operator-correction output for one
// ledger row.
type UpsertInput struct {
	Status     domain.ValidationStatus
	Errors     []string
	Warnings   []string
	FixedData  json.RawMessage
	UserAction string
}

// Page is one ledger page plus the whole-session summary.
type Page struct {
	Records    []domain.ValidationResult `json:"records"`
	TotalCount int                       `json:"total_count"`
	Summary    domain.StatusCounts       `json:"summary"`
}

// ListParams filter and bound a page read.
type ListParams struct {
	PageNumber int
	PageSize   int
	Status     *domain.ValidationStatus
	EntityType *domain.EntityType
}

// Service mediates all ledger reads and writes.
type Service struct {
	sessionRepo repository.SessionRepository
	resultRepo  repository.ValidationResultRepository
}

// NewService creates a ledger service.
func NewService(sessionRepo repository.SessionRepository, resultRepo repository.ValidationResultRepository) *Service {
	return &Service{sessionRepo: sessionRepo, resultRepo: resultRepo}
}

// UpsertStatus records new validation output for a row and keeps the owning
// session's counters in step. Setting UserAction to "skip" forces the row to
// Skipped regardless of the supplied status.
func (s *Service) UpsertStatus(ctx context.Context, recordID uuid.UUID, input UpsertInput) (domain.ValidationResult, error) {
	record, err := s.resultRepo.GetByID(ctx, recordID)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("load ledger row %s: %w", recordID, err)
	}
	// An imported row is frozen: re-statusing or skipping it would desync
	// the imported counter from the importable filter.
	if record.ImportedAt != nil {
		return domain.ValidationResult{}, fmt.Errorf("%w: record %s is already imported", domain.ErrConflict, recordID)
	}

	next := input.Status
	if input.UserAction == domain.UserActionSkip {
		next = domain.StatusSkipped
	}

	prev := record.Status
	record.Status = next
	record.Errors = input.Errors
	record.Warnings = input.Warnings
	if len(input.FixedData) > 0 {
		record.FixedData = input.FixedData
	}
	if input.UserAction != "" {
		record.UserAction = input.UserAction
	}

	updated, err := s.resultRepo.Update(ctx, record)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("update ledger row %s: %w", recordID, err)
	}

	if delta := domain.TransitionDelta(prev, next); delta != (domain.StatusCounts{}) {
		if err := s.sessionRepo.AdjustCounters(ctx, record.SessionID, delta, 0); err != nil {
			return domain.ValidationResult{}, fmt.Errorf("adjust counters for session %s: %w", record.SessionID, err)
		}
	}
	return updated, nil
}

// ListPage returns one page of ledger rows ordered by global row index,
// together with the total row count for the applied filters and the
// whole-session status summary.
func (s *Service) ListPage(ctx context.Context, tenantID, sessionID uuid.UUID, params ListParams) (Page, error) {
	if params.PageNumber < 1 {
		return Page{}, fmt.Errorf("%w: page number must be >= 1", domain.ErrInvalidData)
	}
	if params.PageSize < 1 {
		return Page{}, fmt.Errorf("%w: page size must be positive", domain.ErrInvalidData)
	}

	if _, err := s.sessionRepo.GetByID(ctx, tenantID, sessionID); err != nil {
		return Page{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	records, total, err := s.resultRepo.ListPage(ctx, sessionID, repository.ListPageParams{
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
		Status:     params.Status,
		EntityType: params.EntityType,
	})
	if err != nil {
		return Page{}, fmt.Errorf("list ledger rows for session %s: %w", sessionID, err)
	}

	summary, err := s.resultRepo.SummaryCounts(ctx, sessionID)
	if err != nil {
		return Page{}, fmt.Errorf("summarize session %s: %w", sessionID, err)
	}

	return Page{Records: records, TotalCount: total, Summary: summary}, nil
}

// Summary returns the whole-session status counters without a page read.
func (s *Service) Summary(ctx context.Context, tenantID, sessionID uuid.UUID) (domain.StatusCounts, error) {
	if _, err := s.sessionRepo.GetByID(ctx, tenantID, sessionID); err != nil {
		return domain.StatusCounts{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	summary, err := s.resultRepo.SummaryCounts(ctx, sessionID)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("summarize session %s: %w", sessionID, err)
	}
	return summary, nil
}

// Reconcile recomputes the session counters from a full ledger scan and
// rewrites the stored aggregates. It is the repair path for drift between the
// session row and ledger contents.
func (s *Service) Reconcile(ctx context.Context, tenantID, sessionID uuid.UUID) (domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	summary, err := s.resultRepo.SummaryCounts(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("summarize session %s: %w", sessionID, err)
	}
	_, imported, err := s.resultRepo.ImportCounts(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("import counts for session %s: %w", sessionID, err)
	}

	if err := s.sessionRepo.ReplaceCounters(ctx, sessionID, summary, imported); err != nil {
		return domain.Session{}, fmt.Errorf("store reconciled counters for session %s: %w", sessionID, err)
	}

	session.TotalRecords = summary.Total
	session.ValidRecords = summary.Valid
	session.WarningRecords = summary.Warning
	session.ErrorRecords = summary.Error
	session.FixedRecords = summary.Fixed
	session.SkippedRecords = summary.Skipped
	session.ImportedRecords = imported
	return session, nil
}
