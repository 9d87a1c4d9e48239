package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cataloghq/erp-migration/internal/domain"
)

// ApplyMappings rewrites a record's legacy column names onto target field
// names. Output keys follow the mapping order; unmapped source columns are
// dropped and mappings without a source field contribute nothing.
func ApplyMappings(payload json.RawMessage, mappings []FieldMapping) (json.RawMessage, error) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("%w: decode record: %v", domain.ErrInvalidData, err)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := false
	for _, m := range mappings {
		if m.SourceField == "" {
			continue
		}
		value, ok := record[m.SourceField]
		if !ok {
			continue
		}
		if wrote {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.TargetField)
		if err != nil {
			return nil, fmt.Errorf("encode field name %q: %w", m.TargetField, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
		wrote = true
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
