package validate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/mapping"
)

func testRules() RuleSet {
	return NewRuleSet(mapping.DefaultCatalog(), mapping.DefaultAliases())
}

func TestEvaluateValidProduct(t *testing.T) {
	outcome := testRules().Evaluate(domain.EntityTypeProduct, json.RawMessage(
		`{"STOK_KODU":"P-1","STOK_ADI":"Widget","BIRIM":"ADET","SATIS_FIYATI":"12,50","KDV":"18"}`,
	))
	if outcome.Status != domain.StatusValid {
		t.Fatalf("expected Valid, got %s (%v / %v)", outcome.Status, outcome.Errors, outcome.Warnings)
	}
}

func TestEvaluateMissingRequiredFields(t *testing.T) {
	outcome := testRules().Evaluate(domain.EntityTypeProduct, json.RawMessage(
		`{"STOK_KODU":"P-1","SATIS_FIYATI":"10"}`,
	))
	if outcome.Status != domain.StatusError {
		t.Fatalf("expected Error, got %s", outcome.Status)
	}
	// Name and Unit are both required and both absent.
	if len(outcome.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", outcome.Errors)
	}
}

func TestEvaluateBadPrice(t *testing.T) {
	outcome := testRules().Evaluate(domain.EntityTypeProduct, json.RawMessage(
		`{"STOK_KODU":"P-1","STOK_ADI":"Widget","BIRIM":"ADET","SATIS_FIYATI":"abc"}`,
	))
	if outcome.Status != domain.StatusError {
		t.Fatalf("expected Error, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Errors[0], "SalePrice") {
		t.Fatalf("unexpected error %v", outcome.Errors)
	}
}

func TestEvaluateNegativePriceWarns(t *testing.T) {
	outcome := testRules().Evaluate(domain.EntityTypeProduct, json.RawMessage(
		`{"STOK_KODU":"P-1","STOK_ADI":"Widget","BIRIM":"ADET","ALIS_FIYATI":"-5"}`,
	))
	if outcome.Status != domain.StatusWarning {
		t.Fatalf("expected Warning, got %s (%v)", outcome.Status, outcome.Errors)
	}
}

func TestEvaluateNonStandardVatWarns(t *testing.T) {
	outcome := testRules().Evaluate(domain.EntityTypeProduct, json.RawMessage(
		`{"STOK_KODU":"P-1","STOK_ADI":"Widget","BIRIM":"ADET","KDV":"15"}`,
	))
	if outcome.Status != domain.StatusWarning {
		t.Fatalf("expected Warning, got %s", outcome.Status)
	}
}

func TestEvaluateCustomerTaxAndEmail(t *testing.T) {
	rules := testRules()

	outcome := rules.Evaluate(domain.EntityTypeCustomer, json.RawMessage(
		`{"CARI_KOD":"C-1","CARI_ADI":"Acme","VERGI_NO":"123456789"}`,
	))
	if outcome.Status != domain.StatusWarning {
		t.Fatalf("9-digit tax number: expected Warning, got %s", outcome.Status)
	}

	outcome = rules.Evaluate(domain.EntityTypeCustomer, json.RawMessage(
		`{"CARI_KOD":"C-1","CARI_ADI":"Acme","VERGI_NO":"12345678AB"}`,
	))
	if outcome.Status != domain.StatusError {
		t.Fatalf("non-digit tax number: expected Error, got %s", outcome.Status)
	}

	outcome = rules.Evaluate(domain.EntityTypeCustomer, json.RawMessage(
		`{"CARI_KOD":"C-1","CARI_ADI":"Acme","EMAIL":"not-an-address"}`,
	))
	if outcome.Status != domain.StatusError {
		t.Fatalf("bad email: expected Error, got %s", outcome.Status)
	}
}

func TestEvaluateStockMovement(t *testing.T) {
	rules := testRules()

	outcome := rules.Evaluate(domain.EntityTypeStockMovement, json.RawMessage(
		`{"STOK_KODU":"P-1","DEPO_KODU":"W-1","MIKTAR":"5","HAREKET_TIPI":"IN","TARIH":"02.01.2026"}`,
	))
	if outcome.Status != domain.StatusValid {
		t.Fatalf("expected Valid, got %s (%v)", outcome.Status, outcome.Errors)
	}

	outcome = rules.Evaluate(domain.EntityTypeStockMovement, json.RawMessage(
		`{"STOK_KODU":"P-1","DEPO_KODU":"W-1","MIKTAR":"bes","HAREKET_TIPI":"IN","TARIH":"not a date"}`,
	))
	if outcome.Status != domain.StatusError {
		t.Fatalf("expected Error, got %s", outcome.Status)
	}
	if len(outcome.Errors) != 2 {
		t.Fatalf("expected quantity and date errors, got %v", outcome.Errors)
	}
}

func TestEvaluateMalformedRecord(t *testing.T) {
	outcome := testRules().Evaluate(domain.EntityTypeProduct, json.RawMessage(`not json`))
	if outcome.Status != domain.StatusError {
		t.Fatalf("expected Error, got %s", outcome.Status)
	}
}

func TestParseDecimalFormats(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"12,5", 12.5, true},
		{"1.234,56", 1234.56, true},
		{"-5", -5, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := parseDecimal(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("parseDecimal(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("parseDecimal(%q) should fail", tc.in)
		}
	}
}
