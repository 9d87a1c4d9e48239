// Package progress derives import progress and a time-remaining estimate from
// session state and ledger counts. Pure read-side computation; nothing here
// writes or blocks.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"

	"github.com/google/uuid"
)

// Snapshot is the progress view of one session at a point in time.
type Snapshot struct {
	SessionID          uuid.UUID            `json:"session_id"`
	Status             domain.SessionStatus `json:"status"`
	ImportableCount    int                  `json:"importable_count"`
	ImportedCount      int                  `json:"imported_count"`
	ProgressPercentage int                  `json:"progress_percentage"`
	// EstimatedRemaining is nil unless an import is running with at least
	// one stamped row to extrapolate from.
	EstimatedRemaining *time.Duration `json:"estimated_remaining,omitempty"`
}

// Compute builds a snapshot from already-loaded counts. The estimate is a
// plain linear extrapolation from importStartedAt, recomputed fresh on every
// call.
func Compute(session domain.Session, importable, imported int, now time.Time) Snapshot {
	snapshot := Snapshot{
		SessionID:       session.ID,
		Status:          session.Status,
		ImportableCount: importable,
		ImportedCount:   imported,
	}

	if importable > 0 {
		snapshot.ProgressPercentage = 100 * imported / importable
	}

	if session.Status != domain.SessionImporting || session.ImportStartedAt == nil || imported <= 0 {
		return snapshot
	}

	elapsed := now.Sub(*session.ImportStartedAt).Seconds()
	if elapsed <= 0 {
		return snapshot
	}
	rate := float64(imported) / elapsed
	if rate <= 0 {
		return snapshot
	}

	remaining := time.Duration(float64(importable-imported) / rate * float64(time.Second))
	snapshot.EstimatedRemaining = &remaining
	return snapshot
}

// Service answers progress queries against live session and ledger state.
type Service struct {
	sessionRepo repository.SessionRepository
	resultRepo  repository.ValidationResultRepository
	now         func() time.Time
}

// NewService creates a progress service.
func NewService(sessionRepo repository.SessionRepository, resultRepo repository.ValidationResultRepository) *Service {
	return &Service{sessionRepo: sessionRepo, resultRepo: resultRepo, now: time.Now}
}

// Snapshot computes the current progress view for a session.
func (s *Service) Snapshot(ctx context.Context, tenantID, sessionID uuid.UUID) (Snapshot, error) {
	session, err := s.sessionRepo.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	importable, imported, err := s.resultRepo.ImportCounts(ctx, sessionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("import counts for session %s: %w", sessionID, err)
	}
	return Compute(session, importable, imported, s.now()), nil
}
