// Package ingest turns uploaded CSV and XLSX files into Pending ledger rows.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cataloghq/erp-migration/internal/domain"
	"github.com/cataloghq/erp-migration/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

const createBatchSize = 500

// Request is one file upload targeting a session.
type Request struct {
	TenantID   uuid.UUID
	SessionID  uuid.UUID
	EntityType domain.EntityType
	FileName   string
	Payload    []byte
}

// Summary reports what one upload produced.
type Summary struct {
	RowsIngested int      `json:"rows_ingested"`
	Columns      []string `json:"columns"`
	TotalRecords int      `json:"total_records"`
}

// Service ingests tabular uploads into the validation ledger.
type Service struct {
	sessionRepo repository.SessionRepository
	resultRepo  repository.ValidationResultRepository
}

// NewService creates an ingest service.
func NewService(sessionRepo repository.SessionRepository, resultRepo repository.ValidationResultRepository) *Service {
	return &Service{sessionRepo: sessionRepo, resultRepo: resultRepo}
}

// Ingest parses the upload and appends one Pending ledger row per data row,
// with global row indexes continuing monotonically across uploads. The first
// successful upload moves the session from Created to Uploaded.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	session, err := s.sessionRepo.GetByID(ctx, req.TenantID, req.SessionID)
	if err != nil {
		return Summary{}, fmt.Errorf("load session %s: %w", req.SessionID, err)
	}
	switch session.Status {
	case domain.SessionCreated, domain.SessionUploaded:
	default:
		return Summary{}, fmt.Errorf("%w: session %s does not accept uploads in state %s",
			domain.ErrConflict, session.ID, session.Status)
	}

	table, err := parseTable(req.FileName, req.Payload)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}
	if len(table.rows) == 0 {
		return Summary{}, fmt.Errorf("%w: file %s has no data rows", domain.ErrInvalidData, req.FileName)
	}

	nextIndex := 0
	if max, ok, err := s.resultRepo.MaxGlobalRowIndex(ctx, session.ID); err != nil {
		return Summary{}, fmt.Errorf("next row index for session %s: %w", session.ID, err)
	} else if ok {
		nextIndex = max + 1
	}

	results := make([]domain.ValidationResult, 0, len(table.rows))
	for i, row := range table.rows {
		payload := encodeRow(table.headers, row)
		results = append(results, domain.NewValidationResult(session.ID, req.EntityType, nextIndex+i, payload))
	}

	for start := 0; start < len(results); start += createBatchSize {
		end := start + createBatchSize
		if end > len(results) {
			end = len(results)
		}
		if err := s.resultRepo.CreateBatch(ctx, results[start:end]); err != nil {
			return Summary{}, fmt.Errorf("store ledger rows for session %s: %w", session.ID, err)
		}
	}

	delta := domain.StatusCounts{Total: len(results), Pending: len(results)}
	if err := s.sessionRepo.AdjustCounters(ctx, session.ID, delta, 0); err != nil {
		return Summary{}, fmt.Errorf("adjust counters for session %s: %w", session.ID, err)
	}

	if session.Status == domain.SessionCreated {
		uploaded, err := session.WithStatus(domain.SessionUploaded, results[0].CreatedAt)
		if err != nil {
			return Summary{}, err
		}
		if _, err := s.sessionRepo.Update(ctx, uploaded); err != nil {
			return Summary{}, fmt.Errorf("store session %s: %w", session.ID, err)
		}
	}

	return Summary{
		RowsIngested: len(results),
		Columns:      table.headers,
		TotalRecords: session.TotalRecords + len(results),
	}, nil
}

type tableData struct {
	headers []string
	rows    [][]string
}

func parseTable(fileName string, payload []byte) (tableData, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return tableData{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return normalizeTable(records)
}

func parseExcel(payload []byte) (tableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return normalizeTable(rows)
}

func normalizeTable(records [][]string) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	var headerRow []string
	var dataRows [][]string
	for _, row := range records {
		if len(cleanRow(row)) == 0 {
			continue
		}
		if headerRow == nil {
			headerRow = row
			continue
		}
		dataRows = append(dataRows, row)
	}
	if headerRow == nil {
		return tableData{}, errors.New("header row could not be detected")
	}

	// Headers keep their legacy spelling; the mapping engine matches the
	// raw column names against the alias dictionary.
	headers := dedupeHeaders(headerRow)

	for i := range dataRows {
		dataRows[i] = padRow(dataRows[i], len(headers))
	}
	dataRows = filterEmptyRows(dataRows)

	return tableData{headers: headers, rows: dataRows}, nil
}

func dedupeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.TrimSpace(value)
		if name == "" {
			name = fmt.Sprintf("COLUMN_%d", idx+1)
		}

		base := name
		count := seen[strings.ToUpper(base)]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[strings.ToUpper(base)] = count + 1

		headers[idx] = name
	}
	return headers
}

func cleanRow(row []string) []string {
	var cleaned []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cleaned = append(cleaned, cell)
		}
	}
	return cleaned
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func filterEmptyRows(rows [][]string) [][]string {
	var filtered [][]string
	for _, row := range rows {
		if len(cleanRow(row)) > 0 {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// encodeRow writes the row as a JSON object whose keys appear in column
// order. The mapping engine recovers the column order from this document, so
// a plain map marshal would not do.
func encodeRow(headers []string, row []string) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, header := range headers {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(header)
		value, _ := json.Marshal(strings.TrimSpace(row[i]))
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}
