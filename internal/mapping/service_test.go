package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"

	"github.com/google/uuid"
)

type stubSessionRepo struct {
	getByID func(tenantID, id uuid.UUID) (domain.Session, error)
}

func (s *stubSessionRepo) Create(ctx context.Context, session domain.Session) (domain.Session, error) {
	return session, nil
}

func (s *stubSessionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	return s.getByID(tenantID, id)
}

func (s *stubSessionRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Session, error) {
	return nil, nil
}

func (s *stubSessionRepo) Update(ctx context.Context, session domain.Session) (domain.Session, error) {
	return session, nil
}

func (s *stubSessionRepo) AdjustCounters(ctx context.Context, id uuid.UUID, delta domain.StatusCounts, importedDelta int) error {
	return nil
}

func (s *stubSessionRepo) ReplaceCounters(ctx context.Context, id uuid.UUID, counts domain.StatusCounts, imported int) error {
	return nil
}

func (s *stubSessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubResultRepo struct {
	firstByEntityType func(sessionID uuid.UUID, entityType domain.EntityType) (domain.ValidationResult, error)
}

func (s *stubResultRepo) CreateBatch(ctx context.Context, results []domain.ValidationResult) error {
	return nil
}

func (s *stubResultRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ValidationResult, error) {
	return domain.ValidationResult{}, domain.ErrNotFound
}

func (s *stubResultRepo) Update(ctx context.Context, result domain.ValidationResult) (domain.ValidationResult, error) {
	return result, nil
}

func (s *stubResultRepo) ListPage(ctx context.Context, sessionID uuid.UUID, params repository.ListPageParams) ([]domain.ValidationResult, int, error) {
	return nil, 0, nil
}

func (s *stubResultRepo) ListPending(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ValidationResult, error) {
	return nil, nil
}

func (s *stubResultRepo) ListImportPending(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ValidationResult, error) {
	return nil, nil
}

func (s *stubResultRepo) FirstByEntityType(ctx context.Context, sessionID uuid.UUID, entityType domain.EntityType) (domain.ValidationResult, error) {
	return s.firstByEntityType(sessionID, entityType)
}

func (s *stubResultRepo) MaxGlobalRowIndex(ctx context.Context, sessionID uuid.UUID) (int, bool, error) {
	return 0, false, nil
}

func (s *stubResultRepo) SummaryCounts(ctx context.Context, sessionID uuid.UUID) (domain.StatusCounts, error) {
	return domain.StatusCounts{}, nil
}

func (s *stubResultRepo) ImportCounts(ctx context.Context, sessionID uuid.UUID) (int, int, error) {
	return 0, 0, nil
}

func (s *stubResultRepo) StampImported(ctx context.Context, id uuid.UUID, importedAt time.Time) (bool, error) {
	return false, nil
}

func newTestService(sessions *stubSessionRepo, results *stubResultRepo) *Service {
	return NewService(sessions, results, DefaultCatalog(), DefaultAliases())
}

func TestSuggestForSessionOrdersColumnsByDocument(t *testing.T) {
	tenantID := uuid.New()
	sessionID := uuid.New()

	sessions := &stubSessionRepo{
		getByID: func(gotTenant, gotID uuid.UUID) (domain.Session, error) {
			if gotTenant != tenantID || gotID != sessionID {
				t.Fatalf("unexpected lookup %s/%s", gotTenant, gotID)
			}
			return domain.Session{ID: sessionID, TenantID: tenantID}, nil
		},
	}
	results := &stubResultRepo{
		firstByEntityType: func(_ uuid.UUID, entityType domain.EntityType) (domain.ValidationResult, error) {
			if entityType != domain.EntityTypeProduct {
				t.Fatalf("unexpected entity type %s", entityType)
			}
			return domain.ValidationResult{
				ID:           uuid.New(),
				OriginalData: json.RawMessage(`{"STOK_KODU":"P-1","STOK_ADI":"Widget","BARKOD1":"869000"}`),
			}, nil
		},
	}

	suggestion, err := newTestService(sessions, results).SuggestForSession(context.Background(), tenantID, sessionID, "product")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	wantColumns := []string{"STOK_KODU", "STOK_ADI", "BARKOD1"}
	if len(suggestion.SourceColumns) != len(wantColumns) {
		t.Fatalf("unexpected columns %v", suggestion.SourceColumns)
	}
	for i, col := range wantColumns {
		if suggestion.SourceColumns[i] != col {
			t.Fatalf("column %d: got %q want %q", i, suggestion.SourceColumns[i], col)
		}
	}
	if suggestion.EntityType != domain.EntityTypeProduct {
		t.Fatalf("unexpected entity type %s", suggestion.EntityType)
	}
	if len(suggestion.Mappings) != len(mustFields(t, domain.EntityTypeProduct)) {
		t.Fatalf("expected one mapping per target field, got %d", len(suggestion.Mappings))
	}
}

func mustFields(t *testing.T, entityType domain.EntityType) []TargetField {
	t.Helper()
	fields, err := DefaultCatalog().FieldsFor(entityType)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return fields
}

func TestSuggestForSessionUnknownEntityType(t *testing.T) {
	svc := newTestService(&stubSessionRepo{}, &stubResultRepo{})

	_, err := svc.SuggestForSession(context.Background(), uuid.New(), uuid.New(), "spaceship")
	if !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestSuggestForSessionMissingSession(t *testing.T) {
	sessions := &stubSessionRepo{
		getByID: func(uuid.UUID, uuid.UUID) (domain.Session, error) {
			return domain.Session{}, domain.ErrNotFound
		},
	}

	_, err := newTestService(sessions, &stubResultRepo{}).SuggestForSession(context.Background(), uuid.New(), uuid.New(), "Product")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSuggestForSessionNoSampleRecord(t *testing.T) {
	sessions := &stubSessionRepo{
		getByID: func(uuid.UUID, uuid.UUID) (domain.Session, error) {
			return domain.Session{}, nil
		},
	}
	results := &stubResultRepo{
		firstByEntityType: func(uuid.UUID, domain.EntityType) (domain.ValidationResult, error) {
			return domain.ValidationResult{}, domain.ErrNotFound
		},
	}

	_, err := newTestService(sessions, results).SuggestForSession(context.Background(), uuid.New(), uuid.New(), "Customer")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSuggestForSessionMalformedSample(t *testing.T) {
	sessions := &stubSessionRepo{
		getByID: func(uuid.UUID, uuid.UUID) (domain.Session, error) {
			return domain.Session{}, nil
		},
	}
	results := &stubResultRepo{
		firstByEntityType: func(uuid.UUID, domain.EntityType) (domain.ValidationResult, error) {
			return domain.ValidationResult{
				ID:           uuid.New(),
				OriginalData: json.RawMessage(`["not","an","object"]`),
			}, nil
		},
	}

	_, err := newTestService(sessions, results).SuggestForSession(context.Background(), uuid.New(), uuid.New(), "Product")
	if !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}
