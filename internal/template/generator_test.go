package template

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/mapping"

	"github.com/xuri/excelize/v2"
)

func TestGenerateProductTemplate(t *testing.T) {
	gen := NewGenerator(mapping.DefaultCatalog())

	payload, err := gen.Generate(domain.EntityTypeProduct)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Product" {
		t.Fatalf("expected single Product sheet, got %v", sheets)
	}

	rows, err := f.GetRows("Product")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and sample row, got %d rows", len(rows))
	}

	fields, _ := mapping.DefaultCatalog().FieldsFor(domain.EntityTypeProduct)
	if len(rows[0]) != len(fields) {
		t.Fatalf("expected %d header cells, got %d", len(fields), len(rows[0]))
	}
	for i, field := range fields {
		header := rows[0][i]
		if field.IsRequired && !strings.HasSuffix(header, " *") {
			t.Errorf("required field %s header %q lacks asterisk", field.Name, header)
		}
		if !field.IsRequired && strings.HasSuffix(header, " *") {
			t.Errorf("optional field %s header %q has asterisk", field.Name, header)
		}
		if !strings.HasPrefix(header, field.DisplayName) {
			t.Errorf("header %q does not start with display name %q", header, field.DisplayName)
		}
	}

	// Sample row fills every column.
	for i, cell := range rows[1] {
		if strings.TrimSpace(cell) == "" {
			t.Errorf("sample cell %d is empty", i)
		}
	}
}

func TestGenerateUnknownEntityType(t *testing.T) {
	gen := NewGenerator(mapping.NewCatalog(nil))

	_, err := gen.Generate(domain.EntityTypeProduct)
	if !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestGenerateEveryCatalogEntity(t *testing.T) {
	gen := NewGenerator(mapping.DefaultCatalog())

	for _, entityType := range domain.EntityTypes {
		if _, err := gen.Generate(entityType); err != nil {
			t.Errorf("%s: %v", entityType, err)
		}
	}
}
