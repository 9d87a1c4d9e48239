package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ValidationStatus is the per-record status set tracked by the ledger.
type ValidationStatus string

const (
	StatusPending ValidationStatus = "Pending"
	StatusValid   ValidationStatus = "Valid"
	StatusWarning ValidationStatus = "Warning"
	StatusError   ValidationStatus = "Error"
	StatusFixed   ValidationStatus = "Fixed"
	StatusSkipped ValidationStatus = "Skipped"
)

// UserActionSkip excludes a record from import eligibility regardless of status.
const UserActionSkip = "skip"

// ParseValidationStatus resolves a filter token into a ValidationStatus.
func ParseValidationStatus(token string) (ValidationStatus, bool) {
	for _, st := range []ValidationStatus{StatusPending, StatusValid, StatusWarning, StatusError, StatusFixed, StatusSkipped} {
		if string(st) == token {
			return st, true
		}
	}
	return "", false
}

// ValidationResult is one ledger row: the validation and import state of a
// single source record within a session.
type ValidationResult struct {
	ID             uuid.UUID        `json:"id"`
	SessionID      uuid.UUID        `json:"session_id"`
	EntityType     EntityType       `json:"entity_type"`
	GlobalRowIndex int              `json:"global_row_index"`
	Status         ValidationStatus `json:"status"`

	// OriginalData is the raw column->value map as ingested. Immutable.
	OriginalData json.RawMessage `json:"original_data"`
	// TransformedData is the record after column mapping was applied.
	TransformedData json.RawMessage `json:"transformed_data,omitempty"`
	// FixedData is the record after an operator correction.
	FixedData json.RawMessage `json:"fixed_data,omitempty"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	UserAction string     `json:"user_action,omitempty"`
	ImportedAt *time.Time `json:"imported_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewValidationResult creates a Pending ledger row for one ingested record.
func NewValidationResult(sessionID uuid.UUID, entityType EntityType, globalRowIndex int, originalData json.RawMessage) ValidationResult {
	return ValidationResult{
		ID:             uuid.New(),
		SessionID:      sessionID,
		EntityType:     entityType,
		GlobalRowIndex: globalRowIndex,
		Status:         StatusPending,
		OriginalData:   originalData,
		CreatedAt:      time.Now(),
	}
}

// ImportEligible reports whether the row qualifies for the destination write.
func (r ValidationResult) ImportEligible() bool {
	if r.UserAction == UserActionSkip {
		return false
	}
	switch r.Status {
	case StatusValid, StatusWarning, StatusFixed:
		return true
	default:
		return false
	}
}

// ImportPending reports whether the row is eligible and not yet imported.
func (r ValidationResult) ImportPending() bool {
	return r.ImportEligible() && r.ImportedAt == nil
}

// CorrectedData returns the operator-corrected record when one exists,
// otherwise the original. It is the input to column mapping.
func (r ValidationResult) CorrectedData() json.RawMessage {
	if len(r.FixedData) > 0 {
		return r.FixedData
	}
	return r.OriginalData
}

// Payload returns the data the importer should commit: the column-mapped
// record when the transform ran, otherwise the corrected record.
func (r ValidationResult) Payload() json.RawMessage {
	if len(r.TransformedData) > 0 {
		return r.TransformedData
	}
	return r.CorrectedData()
}

// StatusCounts is the per-session ledger summary. The invariant
// Valid+Warning+Error+Fixed+Skipped+Pending == Total holds at all times.
type StatusCounts struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
	Fixed   int `json:"fixed"`
	Skipped int `json:"skipped"`
	Pending int `json:"pending"`
}

// Consistent reports whether the six status counters sum to Total.
func (c StatusCounts) Consistent() bool {
	return c.Valid+c.Warning+c.Error+c.Fixed+c.Skipped+c.Pending == c.Total
}

// bucket returns a pointer to the counter tracking the given status.
func (c *StatusCounts) bucket(status ValidationStatus) *int {
	switch status {
	case StatusValid:
		return &c.Valid
	case StatusWarning:
		return &c.Warning
	case StatusError:
		return &c.Error
	case StatusFixed:
		return &c.Fixed
	case StatusSkipped:
		return &c.Skipped
	default:
		return &c.Pending
	}
}

// Apply moves one record from prev to next. It is the single authoritative
// counter transition used by every ledger writer, so concurrent validators and
// importers cannot double-count.
func (c *StatusCounts) Apply(prev, next ValidationStatus) {
	if prev == next {
		return
	}
	*c.bucket(prev)--
	*c.bucket(next)++
}

// TransitionDelta expresses Apply as a delta, for storage layers that persist
// counters with atomic increments rather than read-modify-write.
func TransitionDelta(prev, next ValidationStatus) StatusCounts {
	var delta StatusCounts
	if prev == next {
		return delta
	}
	*delta.bucket(prev)--
	*delta.bucket(next)++
	return delta
}
