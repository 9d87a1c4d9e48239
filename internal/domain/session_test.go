package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionHappyPath(t *testing.T) {
	session := NewSession(uuid.New(), SourceTypeLogo, "export.xlsx", []EntityType{EntityTypeProduct, EntityTypeCustomer})
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	steps := []SessionStatus{SessionUploaded, SessionValidating, SessionValidated, SessionImporting, SessionCompleted}
	for _, next := range steps {
		var err error
		now = now.Add(time.Minute)
		session, err = session.WithStatus(next, now)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	if session.ValidatedAt == nil || session.ImportStartedAt == nil || session.CompletedAt == nil {
		t.Fatalf("missing timestamps: %+v", session)
	}
	if !session.CompletedAt.After(*session.ImportStartedAt) {
		t.Fatal("completedAt should follow importStartedAt")
	}
	if !session.Status.Terminal() {
		t.Fatal("Completed must be terminal")
	}
}

func TestSessionIllegalTransitions(t *testing.T) {
	cases := []struct {
		from SessionStatus
		to   SessionStatus
	}{
		{SessionCreated, SessionValidating},
		{SessionCreated, SessionImporting},
		{SessionUploaded, SessionImporting},
		{SessionImporting, SessionValidated},
		{SessionImporting, SessionCancelled},
		{SessionCompleted, SessionImporting},
		{SessionCancelled, SessionUploaded},
		{SessionExpired, SessionImporting},
		{SessionFailed, SessionValidated},
	}
	for _, tc := range cases {
		session := NewSession(uuid.New(), SourceTypeExcel, "f.xlsx", []EntityType{EntityTypeProduct})
		session.Status = tc.from
		if _, err := session.WithStatus(tc.to, time.Now()); !errors.Is(err, ErrConflict) {
			t.Errorf("%s -> %s: expected ErrConflict, got %v", tc.from, tc.to, err)
		}
	}
}

func TestSessionRetryKeepsImportStartedAt(t *testing.T) {
	session := NewSession(uuid.New(), SourceTypeMikro, "m.csv", []EntityType{EntityTypeStock})
	session.Status = SessionValidated

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session, err := session.WithStatus(SessionImporting, first)
	if err != nil {
		t.Fatalf("start import: %v", err)
	}

	session, err = session.WithError("destination write timed out", first.Add(time.Minute))
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if session.ErrorMessage == "" {
		t.Fatal("expected error message on Failed session")
	}

	session, err = session.WithStatus(SessionImporting, first.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !session.ImportStartedAt.Equal(first) {
		t.Fatalf("retry must keep original importStartedAt, got %v", session.ImportStartedAt)
	}
	if session.ErrorMessage != "" {
		t.Fatal("retry must clear the previous error message")
	}
}

func TestStatusCountsApplyKeepsInvariant(t *testing.T) {
	counts := StatusCounts{Total: 10, Pending: 10}

	transitions := []struct {
		prev ValidationStatus
		next ValidationStatus
	}{
		{StatusPending, StatusValid},
		{StatusPending, StatusValid},
		{StatusPending, StatusWarning},
		{StatusPending, StatusError},
		{StatusError, StatusFixed},
		{StatusValid, StatusSkipped},
		{StatusPending, StatusPending},
	}
	for _, tr := range transitions {
		counts.Apply(tr.prev, tr.next)
		if !counts.Consistent() {
			t.Fatalf("invariant broken after %s -> %s: %+v", tr.prev, tr.next, counts)
		}
	}

	want := StatusCounts{Total: 10, Valid: 1, Warning: 1, Fixed: 1, Skipped: 1, Pending: 6}
	if counts != want {
		t.Fatalf("got %+v want %+v", counts, want)
	}
}

func TestTransitionDeltaMatchesApply(t *testing.T) {
	pairs := []ValidationStatus{StatusPending, StatusValid, StatusWarning, StatusError, StatusFixed, StatusSkipped}
	for _, prev := range pairs {
		for _, next := range pairs {
			applied := StatusCounts{Total: 5, Pending: 5}
			applied.Apply(prev, next)

			viaDelta := StatusCounts{Total: 5, Pending: 5}
			delta := TransitionDelta(prev, next)
			viaDelta.Total += delta.Total
			viaDelta.Valid += delta.Valid
			viaDelta.Warning += delta.Warning
			viaDelta.Error += delta.Error
			viaDelta.Fixed += delta.Fixed
			viaDelta.Skipped += delta.Skipped
			viaDelta.Pending += delta.Pending

			if applied != viaDelta {
				t.Fatalf("%s -> %s: apply %+v != delta %+v", prev, next, applied, viaDelta)
			}
		}
	}
}

func TestImportEligibility(t *testing.T) {
	now := time.Now()
	cases := []struct {
		status   ValidationStatus
		action   string
		imported *time.Time
		eligible bool
		pending  bool
	}{
		{StatusValid, "", nil, true, true},
		{StatusWarning, "", nil, true, true},
		{StatusFixed, "", nil, true, true},
		{StatusValid, UserActionSkip, nil, false, false},
		{StatusError, "", nil, false, false},
		{StatusPending, "", nil, false, false},
		{StatusSkipped, "", nil, false, false},
		{StatusValid, "", &now, true, false},
	}
	for _, tc := range cases {
		row := ValidationResult{Status: tc.status, UserAction: tc.action, ImportedAt: tc.imported}
		if row.ImportEligible() != tc.eligible {
			t.Errorf("%s/%q: eligible = %v, want %v", tc.status, tc.action, row.ImportEligible(), tc.eligible)
		}
		if row.ImportPending() != tc.pending {
			t.Errorf("%s/%q: pending = %v, want %v", tc.status, tc.action, row.ImportPending(), tc.pending)
		}
	}
}

func TestPayloadPrefersTransformedThenFixedData(t *testing.T) {
	row := ValidationResult{OriginalData: []byte(`{"a":1}`)}
	if string(row.Payload()) != `{"a":1}` {
		t.Fatalf("expected original payload, got %s", row.Payload())
	}
	row.FixedData = []byte(`{"a":2}`)
	if string(row.Payload()) != `{"a":2}` {
		t.Fatalf("expected fixed payload, got %s", row.Payload())
	}
	if string(row.CorrectedData()) != `{"a":2}` {
		t.Fatalf("expected corrected payload, got %s", row.CorrectedData())
	}
	row.TransformedData = []byte(`{"b":2}`)
	if string(row.Payload()) != `{"b":2}` {
		t.Fatalf("expected transformed payload, got %s", row.Payload())
	}
	// The transform input stays the corrected record.
	if string(row.CorrectedData()) != `{"a":2}` {
		t.Fatalf("transform input must ignore transformed data, got %s", row.CorrectedData())
	}
}
