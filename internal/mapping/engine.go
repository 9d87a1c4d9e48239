package mapping

import "strings"

// Match confidence tiers, highest first.
const (
	confidenceExact        = 1.0
	confidenceAliasExact   = 0.95
	confidenceAliasPartial = 0.70
)

// Aggregate confidence weights: required-field coverage dominates the
// per-field match quality.
const (
	weightRequiredCoverage = 0.6
	weightAverageMatch     = 0.4
)

// FieldMapping pairs one target field with its best-guess source column.
// SourceField is empty when no column matched.
type FieldMapping struct {
	SourceField string  `json:"source_field,omitempty"`
	TargetField string  `json:"target_field"`
	Confidence  float64 `json:"confidence"`
}

// Engine proposes column-to-field mappings. It is stateless apart from the
// injected alias dictionary, so one instance serves any number of concurrent
// callers.
type Engine struct {
	aliases AliasDictionary
}

// NewEngine creates an engine backed by the given alias dictionary.
func NewEngine(aliases AliasDictionary) Engine {
	return Engine{aliases: aliases}
}

// Suggest resolves each target field against the source columns and returns
// one mapping per target field plus an aggregate confidence for the entity.
//
// Resolution is first-match-wins per field, in tier order: exact name match,
// exact alias match, then substring alias match. All comparisons are
// case-insensitive. Because source columns and aliases are both iterated in
// their given order, the result is fully deterministic for a fixed input.
func (e Engine) Suggest(sourceColumns []string, targetFields []TargetField) ([]FieldMapping, float64) {
	mappings := make([]FieldMapping, 0, len(targetFields))

	var (
		requiredTotal  int
		requiredMapped int
		mappedCount    int
		confidenceSum  float64
	)

	for _, field := range targetFields {
		source, confidence := e.Resolve(field.Name, sourceColumns)

		if field.IsRequired {
			requiredTotal++
			if source != "" {
				requiredMapped++
			}
		}
		if source != "" {
			mappedCount++
			confidenceSum += confidence
		}

		mappings = append(mappings, FieldMapping{
			SourceField: source,
			TargetField: field.Name,
			Confidence:  confidence,
		})
	}

	if mappedCount == 0 {
		return mappings, 0
	}

	coverage := 1.0
	if requiredTotal > 0 {
		coverage = float64(requiredMapped) / float64(requiredTotal)
	}
	average := confidenceSum / float64(mappedCount)

	return mappings, weightRequiredCoverage*coverage + weightAverageMatch*average
}

// Resolve finds the best source column for one target field and reports the
// match confidence. An empty column means no match.
func (e Engine) Resolve(targetField string, sourceColumns []string) (string, float64) {
	for _, column := range sourceColumns {
		if strings.EqualFold(column, targetField) {
			return column, confidenceExact
		}
	}

	aliases := e.aliases.AliasesFor(targetField)

	for _, alias := range aliases {
		for _, column := range sourceColumns {
			if strings.EqualFold(column, alias) {
				return column, confidenceAliasExact
			}
		}
	}

	for _, alias := range aliases {
		upperAlias := strings.ToUpper(alias)
		for _, column := range sourceColumns {
			upperColumn := strings.ToUpper(column)
			if strings.Contains(upperColumn, upperAlias) || strings.Contains(upperAlias, upperColumn) {
				return column, confidenceAliasPartial
			}
		}
	}

	return "", 0
}
