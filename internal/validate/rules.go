// Package validate runs the field-level rules that decide each ledger row's
// status. It consumes the raw column-to-value record and the target catalog;
// the ledger stores whatever comes out.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/mapping"
)

// standardVatRates are the Turkish VAT brackets. Out-of-bracket rates import
// fine but get flagged.
var standardVatRates = []float64{0, 1, 8, 10, 18, 20}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"02/01/2006",
	"2006/01/02",
}

// RuleSet evaluates one record against the catalog for its entity type.
type RuleSet struct {
	catalog mapping.Catalog
	engine  mapping.Engine
}

// NewRuleSet builds the rule set used by the validation run.
func NewRuleSet(catalog mapping.Catalog, aliases mapping.AliasDictionary) RuleSet {
	return RuleSet{catalog: catalog, engine: mapping.NewEngine(aliases)}
}

// Outcome is the verdict for one record.
type Outcome struct {
	Status   domain.ValidationStatus
	Errors   []string
	Warnings []string
}

// Evaluate parses the record and applies required-field plus entity-specific
// rules. Errors win over warnings; a clean record is Valid.
func (r RuleSet) Evaluate(entityType domain.EntityType, originalData json.RawMessage) Outcome {
	var record map[string]any
	if err := json.Unmarshal(originalData, &record); err != nil || record == nil {
		return Outcome{Status: domain.StatusError, Errors: []string{"record data could not be read"}}
	}

	// Column order follows the source document so alias resolution behaves
	// exactly like the mapping engine's.
	columns, err := mapping.OrderedKeys(originalData)
	if err != nil {
		return Outcome{Status: domain.StatusError, Errors: []string{"record data could not be read"}}
	}

	var errs, warnings []string

	for _, required := range r.catalog.RequiredFieldsFor(entityType) {
		if value, ok := r.lookup(record, columns, required); !ok || strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Sprintf("required field missing: %s", required))
		}
	}

	switch entityType {
	case domain.EntityTypeProduct:
		errs, warnings = r.checkProduct(record, columns, errs, warnings)
	case domain.EntityTypeCustomer, domain.EntityTypeSupplier:
		errs, warnings = r.checkAccount(record, columns, errs, warnings)
	case domain.EntityTypeStock, domain.EntityTypeStockMovement, domain.EntityTypeOpeningBalance:
		errs, warnings = r.checkStock(record, columns, errs, warnings)
	}

	switch {
	case len(errs) > 0:
		return Outcome{Status: domain.StatusError, Errors: errs, Warnings: warnings}
	case len(warnings) > 0:
		return Outcome{Status: domain.StatusWarning, Warnings: warnings}
	default:
		return Outcome{Status: domain.StatusValid}
	}
}

func (r RuleSet) checkProduct(record map[string]any, columns []string, errs, warnings []string) ([]string, []string) {
	for _, field := range []string{"PurchasePrice", "SalePrice"} {
		value, ok := r.lookup(record, columns, field)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		price, err := parseDecimal(value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s is not a valid number", field))
		} else if price < 0 {
			warnings = append(warnings, fmt.Sprintf("%s is negative", field))
		}
	}

	if value, ok := r.lookup(record, columns, "VatRate"); ok && strings.TrimSpace(value) != "" {
		if vat, err := parseDecimal(value); err == nil {
			standard := false
			for _, rate := range standardVatRates {
				if vat == rate {
					standard = true
					break
				}
			}
			if !standard {
				warnings = append(warnings, fmt.Sprintf("VAT rate %v%% is not a standard bracket", vat))
			}
		}
	}
	return errs, warnings
}

func (r RuleSet) checkAccount(record map[string]any, columns []string, errs, warnings []string) ([]string, []string) {
	if value, ok := r.lookup(record, columns, "TaxNumber"); ok {
		taxNumber := strings.TrimSpace(value)
		if taxNumber != "" {
			// VKN is 10 digits, TCKN is 11.
			if len(taxNumber) != 10 && len(taxNumber) != 11 {
				warnings = append(warnings, "tax number should be 10 or 11 digits")
			} else if !allDigits(taxNumber) {
				errs = append(errs, "tax number must contain only digits")
			}
		}
	}

	if value, ok := r.lookup(record, columns, "Email"); ok {
		email := strings.TrimSpace(value)
		if email != "" && !strings.Contains(email, "@") {
			errs = append(errs, "email address is not valid")
		}
	}
	return errs, warnings
}

func (r RuleSet) checkStock(record map[string]any, columns []string, errs, warnings []string) ([]string, []string) {
	if value, ok := r.lookup(record, columns, "Quantity"); ok && strings.TrimSpace(value) != "" {
		if _, err := parseDecimal(value); err != nil {
			errs = append(errs, "quantity is not a valid number")
		}
	}

	if value, ok := r.lookup(record, columns, "Date"); ok {
		date := strings.TrimSpace(value)
		if date != "" && !parseableDate(date) {
			errs = append(errs, "date format is not valid")
		}
	}
	return errs, warnings
}

// lookup finds the record value for a target field, going through the alias
// dictionary the same way the mapping engine does.
func (r RuleSet) lookup(record map[string]any, columns []string, targetField string) (string, bool) {
	column, _ := r.engine.Resolve(targetField, columns)
	if column == "" {
		return "", false
	}
	value, ok := record[column]
	if !ok || value == nil {
		return "", false
	}
	return fmt.Sprint(value), true
}

// parseDecimal accepts both dot and comma decimal separators, including
// Turkish thousand-dot notation like 1.234,56.
func parseDecimal(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty value")
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f, nil
	}
	if strings.Contains(trimmed, ",") {
		normalized := strings.ReplaceAll(strings.ReplaceAll(trimmed, ".", ""), ",", ".")
		if f, err := strconv.ParseFloat(normalized, 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("invalid decimal %q", value)
}

func parseableDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
