package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"

	"github.com/google/uuid"
)

type memorySessionRepo struct {
	sessions map[uuid.UUID]domain.Session
}

func newMemorySessionRepo(sessions ...domain.Session) *memorySessionRepo {
	repo := &memorySessionRepo{sessions: make(map[uuid.UUID]domain.Session)}
	for _, s := range sessions {
		repo.sessions[s.ID] = s
	}
	return repo
}

func (m *memorySessionRepo) Create(ctx context.Context, session domain.Session) (domain.Session, error) {
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memorySessionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	session, ok := m.sessions[id]
	if !ok || session.TenantID != tenantID {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

func (m *memorySessionRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Session, error) {
	return nil, nil
}

func (m *memorySessionRepo) Update(ctx context.Context, session domain.Session) (domain.Session, error) {
	stored, ok := m.sessions[session.ID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	// Counter columns never travel through Update, as in the SQL repository.
	stored.Status = session.Status
	stored.ErrorMessage = session.ErrorMessage
	stored.ValidatedAt = session.ValidatedAt
	stored.ImportStartedAt = session.ImportStartedAt
	stored.CompletedAt = session.CompletedAt
	stored.ExpiresAt = session.ExpiresAt
	m.sessions[session.ID] = stored
	return stored, nil
}

func (m *memorySessionRepo) AdjustCounters(ctx context.Context, id uuid.UUID, delta domain.StatusCounts, importedDelta int) error {
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.TotalRecords += delta.Total
	m.sessions[id] = session
	return nil
}

func (m *memorySessionRepo) ReplaceCounters(ctx context.Context, id uuid.UUID, counts domain.StatusCounts, imported int) error {
	return nil
}

func (m *memorySessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type memoryResultRepo struct {
	repository.ValidationResultRepository

	rows          []domain.ValidationResult
	onCreateBatch func()
}

func (m *memoryResultRepo) CreateBatch(ctx context.Context, results []domain.ValidationResult) error {
	m.rows = append(m.rows, results...)
	if m.onCreateBatch != nil {
		m.onCreateBatch()
	}
	return nil
}

func (m *memoryResultRepo) MaxGlobalRowIndex(ctx context.Context, sessionID uuid.UUID) (int, bool, error) {
	max := -1
	for _, r := range m.rows {
		if r.SessionID == sessionID && r.GlobalRowIndex > max {
			max = r.GlobalRowIndex
		}
	}
	if max < 0 {
		return 0, false, nil
	}
	return max, true, nil
}

func newCreatedSession() domain.Session {
	return domain.NewSession(uuid.New(), domain.SourceTypeLogo, "stok.csv", []domain.EntityType{domain.EntityTypeProduct, domain.EntityTypeCustomer})
}

func TestIngestCSVCreatesPendingRows(t *testing.T) {
	session := newCreatedSession()
	sessions := newMemorySessionRepo(session)
	results := &memoryResultRepo{}
	svc := NewService(sessions, results)

	csvPayload := []byte("STOK_KODU,STOK_ADI,BARKOD1\nP-1,Widget,869001\nP-2,Gadget,869002\n")

	summary, err := svc.Ingest(context.Background(), Request{
		TenantID:   session.TenantID,
		SessionID:  session.ID,
		EntityType: domain.EntityTypeProduct,
		FileName:   "stok.csv",
		Payload:    csvPayload,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if summary.RowsIngested != 2 {
		t.Fatalf("expected 2 rows, got %d", summary.RowsIngested)
	}
	if len(results.rows) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(results.rows))
	}
	for i, row := range results.rows {
		if row.Status != domain.StatusPending {
			t.Fatalf("row %d: expected Pending, got %s", i, row.Status)
		}
		if row.GlobalRowIndex != i {
			t.Fatalf("row %d: expected index %d, got %d", i, i, row.GlobalRowIndex)
		}
	}
	if string(results.rows[0].OriginalData) != `{"STOK_KODU":"P-1","STOK_ADI":"Widget","BARKOD1":"869001"}` {
		t.Fatalf("unexpected row payload %s", results.rows[0].OriginalData)
	}

	stored := sessions.sessions[session.ID]
	if stored.Status != domain.SessionUploaded {
		t.Fatalf("expected Uploaded session, got %s", stored.Status)
	}
	if stored.TotalRecords != 2 {
		t.Fatalf("expected totalRecords 2, got %d", stored.TotalRecords)
	}
}

func TestIngestSecondFileContinuesRowIndex(t *testing.T) {
	session := newCreatedSession()
	sessions := newMemorySessionRepo(session)
	results := &memoryResultRepo{}
	svc := NewService(sessions, results)

	first := []byte("STOK_KODU,STOK_ADI\nP-1,Widget\nP-2,Gadget\n")
	if _, err := svc.Ingest(context.Background(), Request{
		TenantID: session.TenantID, SessionID: session.ID,
		EntityType: domain.EntityTypeProduct, FileName: "stok.csv", Payload: first,
	}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	second := []byte("CARI_KOD,CARI_ADI\nC-1,Acme\n")
	if _, err := svc.Ingest(context.Background(), Request{
		TenantID: session.TenantID, SessionID: session.ID,
		EntityType: domain.EntityTypeCustomer, FileName: "cari.csv", Payload: second,
	}); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	last := results.rows[len(results.rows)-1]
	if last.GlobalRowIndex != 2 {
		t.Fatalf("expected index to continue at 2, got %d", last.GlobalRowIndex)
	}
	if last.EntityType != domain.EntityTypeCustomer {
		t.Fatalf("expected Customer row, got %s", last.EntityType)
	}
}

func TestIngestSkipsBlankRowsAndPadsShortOnes(t *testing.T) {
	session := newCreatedSession()
	sessions := newMemorySessionRepo(session)
	results := &memoryResultRepo{}
	svc := NewService(sessions, results)

	payload := []byte("KOD,AD,BARKOD\n\nP-1,Widget\n,,\nP-2,Gadget,869002\n")
	summary, err := svc.Ingest(context.Background(), Request{
		TenantID: session.TenantID, SessionID: session.ID,
		EntityType: domain.EntityTypeProduct, FileName: "stok.csv", Payload: payload,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.RowsIngested != 2 {
		t.Fatalf("expected 2 rows after filtering, got %d", summary.RowsIngested)
	}
	if string(results.rows[0].OriginalData) != `{"KOD":"P-1","AD":"Widget","BARKOD":""}` {
		t.Fatalf("unexpected padded payload %s", results.rows[0].OriginalData)
	}
}

func TestIngestTransitionWriteKeepsConcurrentCounterBump(t *testing.T) {
	session := newCreatedSession()
	sessions := newMemorySessionRepo(session)
	results := &memoryResultRepo{}
	svc := NewService(sessions, results)

	// Another upload lands between this one's batch insert and its
	// Created->Uploaded write. The transition must not rewind the total.
	results.onCreateBatch = func() {
		results.onCreateBatch = nil
		if err := sessions.AdjustCounters(context.Background(), session.ID, domain.StatusCounts{Total: 3, Pending: 3}, 0); err != nil {
			t.Fatalf("concurrent adjust: %v", err)
		}
	}

	if _, err := svc.Ingest(context.Background(), Request{
		TenantID: session.TenantID, SessionID: session.ID,
		EntityType: domain.EntityTypeProduct, FileName: "stok.csv",
		Payload: []byte("KOD,AD\nP-1,Widget\nP-2,Gadget\n"),
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	stored := sessions.sessions[session.ID]
	if stored.Status != domain.SessionUploaded {
		t.Fatalf("expected Uploaded session, got %s", stored.Status)
	}
	if stored.TotalRecords != 5 {
		t.Fatalf("transition write lost a counter increment: total=%d, want 5", stored.TotalRecords)
	}
}

func TestIngestRejectsUnsupportedFormat(t *testing.T) {
	session := newCreatedSession()
	svc := NewService(newMemorySessionRepo(session), &memoryResultRepo{})

	_, err := svc.Ingest(context.Background(), Request{
		TenantID: session.TenantID, SessionID: session.ID,
		EntityType: domain.EntityTypeProduct, FileName: "stok.pdf", Payload: []byte("x"),
	})
	if !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestIngestRejectsWrongSessionState(t *testing.T) {
	session := newCreatedSession()
	session.Status = domain.SessionImporting
	svc := NewService(newMemorySessionRepo(session), &memoryResultRepo{})

	_, err := svc.Ingest(context.Background(), Request{
		TenantID: session.TenantID, SessionID: session.ID,
		EntityType: domain.EntityTypeProduct, FileName: "stok.csv", Payload: []byte("KOD\nP-1\n"),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDedupeHeaders(t *testing.T) {
	headers := dedupeHeaders([]string{"KOD", "AD", "kod", "", "AD"})

	want := []string{"KOD", "AD", "kod_2", "COLUMN_4", "AD_2"}
	if fmt.Sprint(headers) != fmt.Sprint(want) {
		t.Fatalf("got %v want %v", headers, want)
	}
}
