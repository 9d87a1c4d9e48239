package repository

import (
	"context"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"

	"github.com/google/uuid"
)

// ListPageParams bounds and filters a ledger page read.
type ListPageParams struct {
	PageNumber int
	PageSize   int
	Status     *domain.ValidationStatus
	EntityType *domain.EntityType
}

// SessionRepository defines the interface for migration session persistence.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) (domain.Session, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.Session, error)
	// Update persists status, error message and timestamps only. Counter
	// columns never travel through it, so a transition write racing a
	// counter adjustment cannot lose the increment.
	Update(ctx context.Context, session domain.Session) (domain.Session, error)
	// AdjustCounters atomically applies a counter delta so concurrent
	// validator and importer writers never double-count a transition.
	AdjustCounters(ctx context.Context, id uuid.UUID, delta domain.StatusCounts, importedDelta int) error
	// ReplaceCounters overwrites every counter column with an absolute
	// recount. Reserved for the reconciliation path.
	ReplaceCounters(ctx context.Context, id uuid.UUID, counts domain.StatusCounts, imported int) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ValidationResultRepository defines the interface for ledger row persistence.
type ValidationResultRepository interface {
	CreateBatch(ctx context.Context, results []domain.ValidationResult) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.ValidationResult, error)
	Update(ctx context.Context, result domain.ValidationResult) (domain.ValidationResult, error)
	ListPage(ctx context.Context, sessionID uuid.UUID, params ListPageParams) ([]domain.ValidationResult, int, error)
	ListPending(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ValidationResult, error)
	ListImportPending(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ValidationResult, error)
	FirstByEntityType(ctx context.Context, sessionID uuid.UUID, entityType domain.EntityType) (domain.ValidationResult, error)
	MaxGlobalRowIndex(ctx context.Context, sessionID uuid.UUID) (int, bool, error)
	SummaryCounts(ctx context.Context, sessionID uuid.UUID) (domain.StatusCounts, error)
	// ImportCounts returns (importable, imported) for the session, where a
	// row is importable when its status is Valid, Warning or Fixed and its
	// user action is not "skip".
	ImportCounts(ctx context.Context, sessionID uuid.UUID) (int, int, error)
	// StampImported sets imported_at exactly once per row. It reports false
	// when another worker already stamped the row.
	StampImported(ctx context.Context, id uuid.UUID, importedAt time.Time) (bool, error)
}
