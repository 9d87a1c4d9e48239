// Package session owns the migration session lifecycle: creation, the state
// machine transitions, and the guards that tie transitions to ledger state.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"

	"github.com/google/uuid"
)

// DefaultTTL bounds how long an unfinished session may linger before the
// cleanup sweep expires it.
const DefaultTTL = 7 * 24 * time.Hour

// Service drives session lifecycle transitions.
type Service struct {
	sessionRepo repository.SessionRepository
	resultRepo  repository.ValidationResultRepository
	ttl         time.Duration
	now         func() time.Time
}

// NewService creates a session service. A zero ttl falls back to DefaultTTL.
func NewService(sessionRepo repository.SessionRepository, resultRepo repository.ValidationResultRepository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Create opens a new session in the Created state.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, sourceType domain.SourceType, sourceName string, entities []domain.EntityType) (domain.Session, error) {
	if len(entities) == 0 {
		return domain.Session{}, fmt.Errorf("%w: session needs at least one entity type", domain.ErrInvalidData)
	}
	session := domain.NewSession(tenantID, sourceType, sourceName, entities)
	expires := s.now().Add(s.ttl)
	session.ExpiresAt = &expires
	created, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

// Get loads a session scoped to its tenant.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.sessionRepo.GetByID(ctx, tenantID, id)
}

// List returns every session for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Session, error) {
	return s.sessionRepo.List(ctx, tenantID)
}

// MarkUploaded moves Created to Uploaded once ingestion has populated the
// ledger. It refuses to fire on an empty session.
func (s *Service) MarkUploaded(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.transition(ctx, tenantID, id, domain.SessionUploaded, func(session domain.Session) error {
		if session.TotalRecords == 0 {
			return fmt.Errorf("%w: session %s has no ingested records", domain.ErrConflict, id)
		}
		return nil
	})
}

// BeginValidation moves Uploaded to Validating.
func (s *Service) BeginValidation(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.transition(ctx, tenantID, id, domain.SessionValidating, nil)
}

// CompleteValidation moves Validating to Validated once no ledger row remains
// Pending, stamping validatedAt.
func (s *Service) CompleteValidation(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.transition(ctx, tenantID, id, domain.SessionValidated, func(session domain.Session) error {
		pending, err := s.resultRepo.ListPending(ctx, id, 1)
		if err != nil {
			return fmt.Errorf("check pending rows: %w", err)
		}
		if len(pending) > 0 {
			return fmt.Errorf("%w: session %s still has rows awaiting validation", domain.ErrConflict, id)
		}
		return nil
	})
}

// StartImport moves Validated or Failed to Importing. importStartedAt is
// stamped on first entry only, so a retry keeps the original rate baseline.
func (s *Service) StartImport(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.transition(ctx, tenantID, id, domain.SessionImporting, nil)
}

// Complete moves Importing to Completed once every import-eligible row has
// been stamped.
func (s *Service) Complete(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.transition(ctx, tenantID, id, domain.SessionCompleted, func(session domain.Session) error {
		remaining, err := s.resultRepo.ListImportPending(ctx, id, 1)
		if err != nil {
			return fmt.Errorf("check import-pending rows: %w", err)
		}
		if len(remaining) > 0 {
			return fmt.Errorf("%w: session %s still has importable rows", domain.ErrConflict, id)
		}
		return nil
	})
}

// Fail moves the session to Failed carrying the unrecoverable error message.
func (s *Service) Fail(ctx context.Context, tenantID, id uuid.UUID, message string) (domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	failed, err := session.WithError(message, s.now())
	if err != nil {
		return domain.Session{}, err
	}
	updated, err := s.sessionRepo.Update(ctx, failed)
	if err != nil {
		return domain.Session{}, fmt.Errorf("store session %s: %w", id, err)
	}
	return updated, nil
}

// Cancel abandons a session that has not started importing.
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.transition(ctx, tenantID, id, domain.SessionCancelled, nil)
}

// ExpireStale marks lapsed sessions Expired and deletes their rows past the
// retention cutoff. Returns the number of sessions swept.
func (s *Service) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, cutoff)
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, next domain.SessionStatus, guard func(domain.Session) error) (domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if guard != nil {
		if err := guard(session); err != nil {
			return domain.Session{}, err
		}
	}
	moved, err := session.WithStatus(next, s.now())
	if err != nil {
		return domain.Session{}, err
	}
	updated, err := s.sessionRepo.Update(ctx, moved)
	if err != nil {
		return domain.Session{}, fmt.Errorf("store session %s: %w", id, err)
	}
	return updated, nil
}
