package validate

import (
	"context"
	"fmt"
	"log"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"
	"github.com/cataloghq/erp-migration/internal/session"

	"github.com/google/uuid"
)

// batchSize bounds how many Pending rows one pass loads and updates.
const batchSize = 500

// Service drives a full validation run over a session's Pending rows.
type Service struct {
	sessions    *session.Service
	sessionRepo repository.SessionRepository
	resultRepo  repository.ValidationResultRepository
	rules       RuleSet
}

// NewService creates a validation service.
func NewService(sessions *session.Service, sessionRepo repository.SessionRepository, resultRepo repository.ValidationResultRepository, rules RuleSet) *Service {
	return &Service{
		sessions:    sessions,
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
		rules:       rules,
	}
}

// Run moves the session through Validating, evaluates every Pending row in
// batches, and finishes at Validated. A storage failure mid-run moves the
// session to Failed instead.
func (s *Service) Run(ctx context.Context, tenantID, sessionID uuid.UUID) (domain.Session, error) {
	if _, err := s.sessions.BeginValidation(ctx, tenantID, sessionID); err != nil {
		return domain.Session{}, err
	}

	if err := s.processPending(ctx, sessionID); err != nil {
		if _, failErr := s.sessions.Fail(ctx, tenantID, sessionID, err.Error()); failErr != nil {
			log.Printf("session %s: could not record validation failure: %v", sessionID, failErr)
		}
		return domain.Session{}, err
	}

	return s.sessions.CompleteValidation(ctx, tenantID, sessionID)
}

func (s *Service) processPending(ctx context.Context, sessionID uuid.UUID) error {
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("validation cancelled: %w", err)
		}

		batch, err := s.resultRepo.ListPending(ctx, sessionID, batchSize)
		if err != nil {
			return fmt.Errorf("load pending rows: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		var delta domain.StatusCounts
		for _, row := range batch {
			outcome := s.rules.Evaluate(row.EntityType, row.OriginalData)

			row.Status = outcome.Status
			row.Errors = outcome.Errors
			row.Warnings = outcome.Warnings
			if _, err := s.resultRepo.Update(ctx, row); err != nil {
				return fmt.Errorf("store row %s: %w", row.ID, err)
			}
			delta.Apply(domain.StatusPending, outcome.Status)
		}

		if err := s.sessionRepo.AdjustCounters(ctx, sessionID, delta, 0); err != nil {
			return fmt.Errorf("adjust counters: %w", err)
		}

		processed += len(batch)
		log.Printf("session %s: validated %d rows", sessionID, processed)
	}
	return nil
}
