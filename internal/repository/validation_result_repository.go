package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cataloghq/erp-migration/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type validationResultRepository struct {
	pool *pgxpool.Pool
}

// NewValidationResultRepository wires a ledger repository backed by pgxpool.
func NewValidationResultRepository(pool *pgxpool.Pool) ValidationResultRepository {
	return &validationResultRepository{pool: pool}
}

const resultColumns = `id, session_id, entity_type, global_row_index, status,
	original_data, transformed_data, fixed_data, errors, warnings,
	user_action, imported_at, created_at`

func (r *validationResultRepository) CreateBatch(ctx context.Context, results []domain.ValidationResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, result := range results {
		batch.Queue(
			`INSERT INTO migration_validation_results (`+resultColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			result.ID,
			result.SessionID,
			string(result.EntityType),
			result.GlobalRowIndex,
			string(result.Status),
			[]byte(result.OriginalData),
			nullableJSON(result.TransformedData),
			nullableJSON(result.FixedData),
			result.Errors,
			result.Warnings,
			result.UserAction,
			result.ImportedAt,
			result.CreatedAt,
		)
	}

	batchResults := r.pool.SendBatch(ctx, batch)
	defer batchResults.Close()
	for range results {
		if _, err := batchResults.Exec(); err != nil {
			return fmt.Errorf("failed to insert validation results: %w", err)
		}
	}
	return nil
}

func (r *validationResultRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ValidationResult, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+resultColumns+`
		 FROM migration_validation_results
		 WHERE id = $1`,
		id,
	)
	result, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ValidationResult{}, fmt.Errorf("validation result %s: %w", id, domain.ErrNotFound)
		}
		return domain.ValidationResult{}, fmt.Errorf("failed to get validation result: %w", err)
	}
	return result, nil
}

func (r *validationResultRepository) Update(ctx context.Context, result domain.ValidationResult) (domain.ValidationResult, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE migration_validation_results
		 SET status = $2,
		     transformed_data = $3,
		     fixed_data = $4,
		     errors = $5,
		     warnings = $6,
		     user_action = $7
		 WHERE id = $1`,
		result.ID,
		string(result.Status),
		nullableJSON(result.TransformedData),
		nullableJSON(result.FixedData),
		result.Errors,
		result.Warnings,
		result.UserAction,
	)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("failed to update validation result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ValidationResult{}, fmt.Errorf("validation result %s: %w", result.ID, domain.ErrNotFound)
	}
	return result, nil
}

func (r *validationResultRepository) ListPage(ctx context.Context, sessionID uuid.UUID, params ListPageParams) ([]domain.ValidationResult, int, error) {
	where := `WHERE session_id = $1`
	args := []any{sessionID}

	if params.Status != nil {
		args = append(args, string(*params.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if params.EntityType != nil {
		args = append(args, string(*params.EntityType))
		where += fmt.Sprintf(` AND entity_type = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM migration_validation_results `+where,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count validation results: %w", err)
	}

	offset := (params.PageNumber - 1) * params.PageSize
	args = append(args, params.PageSize, offset)
	rows, err := r.pool.Query(
		ctx,
		fmt.Sprintf(`SELECT %s
		 FROM migration_validation_results %s
		 ORDER BY global_row_index ASC
		 LIMIT $%d OFFSET $%d`, resultColumns, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list validation results: %w", err)
	}
	defer rows.Close()

	results, err := collectResults(rows)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *validationResultRepository) ListPending(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ValidationResult, error) {
	return r.listByPredicate(ctx, sessionID, `status = 'Pending'`, limit)
}

func (r *validationResultRepository) ListImportPending(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ValidationResult, error) {
	return r.listByPredicate(ctx, sessionID,
		`status IN ('Valid', 'Warning', 'Fixed')
		   AND COALESCE(user_action, '') <> 'skip'
		   AND imported_at IS NULL`,
		limit)
}

func (r *validationResultRepository) listByPredicate(ctx context.Context, sessionID uuid.UUID, predicate string, limit int) ([]domain.ValidationResult, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+resultColumns+`
		 FROM migration_validation_results
		 WHERE session_id = $1 AND `+predicate+`
		 ORDER BY global_row_index ASC
		 LIMIT $2`,
		sessionID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation results: %w", err)
	}
	defer rows.Close()
	return collectResults(rows)
}

func (r *validationResultRepository) FirstByEntityType(ctx context.Context, sessionID uuid.UUID, entityType domain.EntityType) (domain.ValidationResult, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+resultColumns+`
		 FROM migration_validation_results
		 WHERE session_id = $1 AND entity_type = $2
		 ORDER BY global_row_index ASC
		 LIMIT 1`,
		sessionID,
		string(entityType),
	)
	result, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ValidationResult{}, fmt.Errorf("no %s record in session %s: %w", entityType, sessionID, domain.ErrNotFound)
		}
		return domain.ValidationResult{}, fmt.Errorf("failed to get sample record: %w", err)
	}
	return result, nil
}

func (r *validationResultRepository) MaxGlobalRowIndex(ctx context.Context, sessionID uuid.UUID) (int, bool, error) {
	var max pgtype.Int4
	if err := r.pool.QueryRow(
		ctx,
		`SELECT MAX(global_row_index) FROM migration_validation_results WHERE session_id = $1`,
		sessionID,
	).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to get max row index: %w", err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int32), true, nil
}

func (r *validationResultRepository) SummaryCounts(ctx context.Context, sessionID uuid.UUID) (domain.StatusCounts, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT status, COUNT(*)
		 FROM migration_validation_results
		 WHERE session_id = $1
		 GROUP BY status`,
		sessionID,
	)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("failed to summarize validation results: %w", err)
	}
	defer rows.Close()

	var counts domain.StatusCounts
	for rows.Next() {
		var (
			status string
			n      int
		)
		if scanErr := rows.Scan(&status, &n); scanErr != nil {
			return domain.StatusCounts{}, fmt.Errorf("failed to scan summary row: %w", scanErr)
		}
		counts.Total += n
		switch domain.ValidationStatus(status) {
		case domain.StatusValid:
			counts.Valid += n
		case domain.StatusWarning:
			counts.Warning += n
		case domain.StatusError:
			counts.Error += n
		case domain.StatusFixed:
			counts.Fixed += n
		case domain.StatusSkipped:
			counts.Skipped += n
		default:
			counts.Pending += n
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return domain.StatusCounts{}, fmt.Errorf("failed to iterate summary rows: %w", rowsErr)
	}
	return counts, nil
}

func (r *validationResultRepository) ImportCounts(ctx context.Context, sessionID uuid.UUID) (int, int, error) {
	var importable, imported int
	if err := r.pool.QueryRow(
		ctx,
		`SELECT
		   COUNT(*) FILTER (
		     WHERE status IN ('Valid', 'Warning', 'Fixed')
		       AND COALESCE(user_action, '') <> 'skip'
		   ),
		   COUNT(*) FILTER (WHERE imported_at IS NOT NULL)
		 FROM migration_validation_results
		 WHERE session_id = $1`,
		sessionID,
	).Scan(&importable, &imported); err != nil {
		return 0, 0, fmt.Errorf("failed to get import counts: %w", err)
	}
	return importable, imported, nil
}

func (r *validationResultRepository) StampImported(ctx context.Context, id uuid.UUID, importedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE migration_validation_results
		 SET imported_at = $2
		 WHERE id = $1 AND imported_at IS NULL`,
		id,
		importedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to stamp imported row: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func collectResults(rows pgx.Rows) ([]domain.ValidationResult, error) {
	results := []domain.ValidationResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation result: %w", err)
		}
		results = append(results, result)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate validation results: %w", rowsErr)
	}
	return results, nil
}

func scanResult(row pgx.Row) (domain.ValidationResult, error) {
	var (
		result          domain.ValidationResult
		entityType      string
		status          string
		originalData    []byte
		transformedData []byte
		fixedData       []byte
		userAction      pgtype.Text
		importedAt      pgtype.Timestamptz
		createdAt       pgtype.Timestamptz
	)
	if err := row.Scan(
		&result.ID,
		&result.SessionID,
		&entityType,
		&result.GlobalRowIndex,
		&status,
		&originalData,
		&transformedData,
		&fixedData,
		&result.Errors,
		&result.Warnings,
		&userAction,
		&importedAt,
		&createdAt,
	); err != nil {
		return domain.ValidationResult{}, err
	}

	result.EntityType = domain.EntityType(entityType)
	result.Status = domain.ValidationStatus(status)
	result.OriginalData = originalData
	result.TransformedData = transformedData
	result.FixedData = fixedData
	if userAction.Valid {
		result.UserAction = userAction.String
	}
	result.ImportedAt = timePtr(importedAt)
	if createdAt.Valid {
		result.CreatedAt = createdAt.Time
	}
	return result, nil
}
