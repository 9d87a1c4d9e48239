// Package importer drains import-eligible ledger rows into the destination
// catalog through a bounded worker pool, stamping each row exactly once.
package importer

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/mapping"
	"github.com/cataloghq/erp-migration/internal/repository"
	"github.com/cataloghq/erp-migration/internal/session"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds commit concurrency when no override is configured.
const DefaultWorkers = 4

// batchSize bounds how many rows one polling pass claims.
const batchSize = 500

// Committer writes one record to the destination catalog. Implementations
// must be safe for concurrent use.
type Committer interface {
	Commit(ctx context.Context, row domain.ValidationResult) error
}

// Service runs the import loop for a session.
type Service struct {
	sessions    *session.Service
	sessionRepo repository.SessionRepository
	resultRepo  repository.ValidationResultRepository
	committer   Committer
	catalog     mapping.Catalog
	engine      mapping.Engine
	workers     int
	now         func() time.Time
}

// NewService creates an importer. workers <= 0 falls back to DefaultWorkers.
func NewService(sessions *session.Service, sessionRepo repository.SessionRepository, resultRepo repository.ValidationResultRepository, committer Committer, catalog mapping.Catalog, aliases mapping.AliasDictionary, workers int) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Service{
		sessions:    sessions,
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
		committer:   committer,
		catalog:     catalog,
		engine:      mapping.NewEngine(aliases),
		workers:     workers,
		now:         time.Now,
	}
}

// Run moves the session into Importing and drains import-eligible rows in
// batches until none remain, then completes the session. A commit failure
// moves the session to Failed; Run can be called again to retry the rows that
// were never stamped. The session status is re-checked before every batch, so
// an external Fail stops the loop within one polling interval.
func (s *Service) Run(ctx context.Context, tenantID, sessionID uuid.UUID) (domain.Session, error) {
	if _, err := s.sessions.StartImport(ctx, tenantID, sessionID); err != nil {
		return domain.Session{}, err
	}

	if err := s.drain(ctx, tenantID, sessionID); err != nil {
		if _, failErr := s.sessions.Fail(ctx, tenantID, sessionID, err.Error()); failErr != nil {
			log.Printf("session %s: could not record import failure: %v", sessionID, failErr)
		}
		return domain.Session{}, err
	}

	return s.sessions.Complete(ctx, tenantID, sessionID)
}

func (s *Service) drain(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import cancelled: %w", err)
		}

		current, err := s.sessionRepo.GetByID(ctx, tenantID, sessionID)
		if err != nil {
			return fmt.Errorf("reload session: %w", err)
		}
		if current.Status != domain.SessionImporting {
			return fmt.Errorf("%w: session %s left Importing (now %s)",
				domain.ErrConflict, sessionID, current.Status)
		}

		batch, err := s.resultRepo.ListImportPending(ctx, sessionID, batchSize)
		if err != nil {
			return fmt.Errorf("load importable rows: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		imported, err := s.commitBatch(ctx, batch)
		if imported > 0 {
			if adjErr := s.sessionRepo.AdjustCounters(ctx, sessionID, domain.StatusCounts{}, imported); adjErr != nil {
				return fmt.Errorf("adjust imported count: %w", adjErr)
			}
		}
		if err != nil {
			return err
		}

		log.Printf("session %s: imported %d rows", sessionID, imported)
	}
}

// commitBatch fans the batch out over the worker pool. Rows may be stamped
// out of row-index order; the stamp itself is a compare-and-set, so a row
// that lost the race with a concurrent worker is counted by the winner only.
func (s *Service) commitBatch(ctx context.Context, batch []domain.ValidationResult) (int, error) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	var imported int64
	for _, row := range batch {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			row, err := s.transform(groupCtx, row)
			if err != nil {
				return fmt.Errorf("transform row %d: %w", row.GlobalRowIndex, err)
			}
			if err := s.committer.Commit(groupCtx, row); err != nil {
				return fmt.Errorf("%w: commit row %d: %w", domain.ErrFatal, row.GlobalRowIndex, err)
			}
			stamped, err := s.resultRepo.StampImported(groupCtx, row.ID, s.now())
			if err != nil {
				return fmt.Errorf("stamp row %d: %w", row.GlobalRowIndex, err)
			}
			if stamped {
				atomic.AddInt64(&imported, 1)
			}
			return nil
		})
	}

	err := group.Wait()
	return int(atomic.LoadInt64(&imported)), err
}

// transform rewrites the row's legacy column names onto target field names
// and persists the result before the destination write. Re-running it on a
// retried row recomputes the same output.
func (s *Service) transform(ctx context.Context, row domain.ValidationResult) (domain.ValidationResult, error) {
	targetFields, err := s.catalog.FieldsFor(row.EntityType)
	if err != nil {
		return row, err
	}
	columns, err := mapping.OrderedKeys(row.CorrectedData())
	if err != nil {
		return row, err
	}
	mappings, _ := s.engine.Suggest(columns, targetFields)

	transformed, err := mapping.ApplyMappings(row.CorrectedData(), mappings)
	if err != nil {
		return row, err
	}
	row.TransformedData = transformed

	updated, err := s.resultRepo.Update(ctx, row)
	if err != nil {
		return row, fmt.Errorf("store transformed data: %w", err)
	}
	return updated, nil
}
