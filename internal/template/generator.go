// Package template produces downloadable XLSX upload templates, one sheet per
// entity type, with required columns marked and a sample row to copy from.
package template

import (
	"bytes"
	"fmt"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/mapping"

	"github.com/xuri/excelize/v2"
)

// Generator renders upload templates from the target field catalog.
type Generator struct {
	catalog mapping.Catalog
}

// NewGenerator creates a template generator.
func NewGenerator(catalog mapping.Catalog) Generator {
	return Generator{catalog: catalog}
}

// Generate builds the XLSX template for one entity type. Required columns
// carry a trailing asterisk in the header, row two holds sample values.
func (g Generator) Generate(entityType domain.EntityType) ([]byte, error) {
	fields, err := g.catalog.FieldsFor(entityType)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := string(entityType)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, field := range fields {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}

		header := field.DisplayName
		if field.IsRequired {
			header += " *"
		}
		headerCell := fmt.Sprintf("%s1", column)
		if err := f.SetCellValue(sheet, headerCell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, headerCell, headerCell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}

		if err := f.SetCellValue(sheet, fmt.Sprintf("%s2", column), sampleValue(field)); err != nil {
			return nil, fmt.Errorf("write sample: %w", err)
		}

		width := float64(len(header)) + 4
		if width < 12 {
			width = 12
		}
		if err := f.SetColWidth(sheet, column, column, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

func sampleValue(field mapping.TargetField) string {
	if field.DefaultValue != "" {
		return field.DefaultValue
	}
	switch field.DataType {
	case "decimal":
		return "100,50"
	case "int":
		return "1"
	case "bool":
		return "true"
	case "date":
		return "2026-01-15"
	case "datetime":
		return "2026-01-15 09:30:00"
	default:
		return "SAMPLE-" + field.Name
	}
}
