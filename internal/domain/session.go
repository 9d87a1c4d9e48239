package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceType identifies the originating ERP or file format family.
type SourceType string

const (
	SourceTypeExcel   SourceType = "Excel"
	SourceTypeLogo    SourceType = "Logo"
	SourceTypeETA     SourceType = "ETA"
	SourceTypeMikro   SourceType = "Mikro"
	SourceTypeNetsis  SourceType = "Netsis"
	SourceTypeParasut SourceType = "Parasut"
	SourceTypeOther   SourceType = "Other"
)

// SourceTypes lists every supported source system.
var SourceTypes = []SourceType{
	SourceTypeExcel,
	SourceTypeLogo,
	SourceTypeETA,
	SourceTypeMikro,
	SourceTypeNetsis,
	SourceTypeParasut,
	SourceTypeOther,
}

// ParseSourceType resolves a case-insensitive token into a SourceType.
func ParseSourceType(token string) (SourceType, error) {
	for _, st := range SourceTypes {
		if strings.EqualFold(string(st), token) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown source type %q: %w", token, ErrInvalidData)
}

// SessionStatus is the closed set of migration session lifecycle states.
type SessionStatus string

const (
	SessionCreated    SessionStatus = "Created"
	SessionUploaded   SessionStatus = "Uploaded"
	SessionValidating SessionStatus = "Validating"
	SessionValidated  SessionStatus = "Validated"
	SessionImporting  SessionStatus = "Importing"
	SessionCompleted  SessionStatus = "Completed"
	SessionFailed     SessionStatus = "Failed"
	SessionCancelled  SessionStatus = "Cancelled"
	SessionExpired    SessionStatus = "Expired"
)

// sessionTransitions is the explicit transition table. Failed is retryable by
// re-entering Importing; Cancelled is reachable from every pre-import state.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionCreated:    {SessionUploaded, SessionCancelled, SessionExpired},
	SessionUploaded:   {SessionValidating, SessionCancelled, SessionExpired},
	SessionValidating: {SessionValidated, SessionFailed, SessionCancelled},
	SessionValidated:  {SessionImporting, SessionCancelled, SessionExpired},
	SessionImporting:  {SessionCompleted, SessionFailed},
	SessionFailed:     {SessionImporting},
	SessionCompleted:  {},
	SessionCancelled:  {},
	SessionExpired:    {},
}

// CanTransitionTo reports whether moving to next is legal from the current state.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return len(sessionTransitions[s]) == 0
}

// Session is one end-to-end import attempt for a tenant. It holds lifecycle
// state, aggregate counters and timestamps; never row-level business data.
type Session struct {
	ID         uuid.UUID    `json:"id"`
	TenantID   uuid.UUID    `json:"tenant_id"`
	SourceType SourceType   `json:"source_type"`
	SourceName string       `json:"source_name"`
	Status     SessionStatus `json:"status"`
	Entities   []EntityType `json:"entities"`

	TotalRecords    int `json:"total_records"`
	ValidRecords    int `json:"valid_records"`
	WarningRecords  int `json:"warning_records"`
	ErrorRecords    int `json:"error_records"`
	FixedRecords    int `json:"fixed_records"`
	SkippedRecords  int `json:"skipped_records"`
	ImportedRecords int `json:"imported_records"`

	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt       time.Time  `json:"created_at"`
	ValidatedAt     *time.Time `json:"validated_at,omitempty"`
	ImportStartedAt *time.Time `json:"import_started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// NewSession creates a session in the Created state.
func NewSession(tenantID uuid.UUID, sourceType SourceType, sourceName string, entities []EntityType) Session {
	return Session{
		ID:         uuid.New(),
		TenantID:   tenantID,
		SourceType: sourceType,
		SourceName: sourceName,
		Status:     SessionCreated,
		Entities:   append([]EntityType(nil), entities...),
		CreatedAt:  time.Now(),
	}
}

// WithStatus returns a copy of the session moved to next, stamping the
// transition timestamps. Illegal transitions return ErrConflict.
func (s Session) WithStatus(next SessionStatus, now time.Time) (Session, error) {
	if !s.Status.CanTransitionTo(next) {
		return Session{}, fmt.Errorf("%w: cannot transition session %s from %s to %s",
			ErrConflict, s.ID, s.Status, next)
	}

	out := s
	out.Status = next

	switch next {
	case SessionValidated:
		stamp := now
		out.ValidatedAt = &stamp
	case SessionImporting:
		if out.ImportStartedAt == nil {
			stamp := now
			out.ImportStartedAt = &stamp
		}
		// Re-entering after a partial failure clears the previous error.
		out.ErrorMessage = ""
	case SessionCompleted:
		stamp := now
		out.CompletedAt = &stamp
	}

	return out, nil
}

// WithError returns a copy of the session in the Failed state carrying message.
func (s Session) WithError(message string, now time.Time) (Session, error) {
	out, err := s.WithStatus(SessionFailed, now)
	if err != nil {
		return Session{}, err
	}
	out.ErrorMessage = message
	return out, nil
}
