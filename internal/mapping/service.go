package mapping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"

	"github.com/google/uuid"
)

// EntitySuggestion is the full mapping proposal for one entity type within a
// session.
type EntitySuggestion struct {
	EntityType    domain.EntityType `json:"entity_type"`
	SourceColumns []string          `json:"source_columns"`
	Mappings      []FieldMapping    `json:"mappings"`
	Confidence    float64           `json:"confidence"`
}

// Service produces mapping suggestions from a session's uploaded data.
type Service struct {
	sessionRepo repository.SessionRepository
	resultRepo  repository.ValidationResultRepository
	catalog     Catalog
	engine      Engine
}

// NewService creates a mapping suggestion service.
func NewService(
	sessionRepo repository.SessionRepository,
	resultRepo repository.ValidationResultRepository,
	catalog Catalog,
	aliases AliasDictionary,
) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
		catalog:     catalog,
		engine:      NewEngine(aliases),
	}
}

// SuggestForSession samples one uploaded record of the given entity type and
// scores its columns against the target catalog.
func (s *Service) SuggestForSession(ctx context.Context, tenantID, sessionID uuid.UUID, entityToken string) (EntitySuggestion, error) {
	entityType, err := domain.ParseEntityType(entityToken)
	if err != nil {
		return EntitySuggestion{}, err
	}

	targetFields, err := s.catalog.FieldsFor(entityType)
	if err != nil {
		return EntitySuggestion{}, err
	}

	if _, err := s.sessionRepo.GetByID(ctx, tenantID, sessionID); err != nil {
		return EntitySuggestion{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	sample, err := s.resultRepo.FirstByEntityType(ctx, sessionID, entityType)
	if err != nil {
		return EntitySuggestion{}, fmt.Errorf("sample record for %s: %w", entityType, err)
	}

	columns, err := OrderedKeys(sample.OriginalData)
	if err != nil {
		return EntitySuggestion{}, fmt.Errorf("%w: sample record %s: %v", domain.ErrInvalidData, sample.ID, err)
	}

	mappings, confidence := s.engine.Suggest(columns, targetFields)

	return EntitySuggestion{
		EntityType:    entityType,
		SourceColumns: columns,
		Mappings:      mappings,
		Confidence:    confidence,
	}, nil
}

// OrderedKeys extracts top-level object keys in document order. A Go map
// would lose the source-column ordering the engine's first-match-wins
// resolution depends on, so the document is walked token by token instead.
func OrderedKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		keys = append(keys, key)

		// Skip the value, whatever shape it takes.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
