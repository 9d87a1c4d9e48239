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

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository wires a session repository backed by pgxpool.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionColumns = `id, tenant_id, source_type, source_name, status, entities,
	total_records, valid_records, warning_records, error_records, fixed_records, skipped_records, imported_records,
	error_message, created_at, validated_at, import_started_at, completed_at, expires_at`

func (r *sessionRepository) Create(ctx context.Context, session domain.Session) (domain.Session, error) {
	entities := make([]string, len(session.Entities))
	for i, et := range session.Entities {
		entities[i] = string(et)
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO migration_sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		session.ID,
		session.TenantID,
		string(session.SourceType),
		session.SourceName,
		string(session.Status),
		entities,
		session.TotalRecords,
		session.ValidRecords,
		session.WarningRecords,
		session.ErrorRecords,
		session.FixedRecords,
		session.SkippedRecords,
		session.ImportedRecords,
		session.ErrorMessage,
		session.CreatedAt,
		session.ValidatedAt,
		session.ImportStartedAt,
		session.CompletedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to create migration session: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Session, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM migration_sessions
		 WHERE tenant_id = $1 AND id = $2`,
		tenantID,
		id,
	)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, fmt.Errorf("migration session %s: %w", id, domain.ErrNotFound)
		}
		return domain.Session{}, fmt.Errorf("failed to get migration session: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Session, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM migration_sessions
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list migration sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan migration session: %w", scanErr)
		}
		sessions = append(sessions, session)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate migration sessions: %w", rowsErr)
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, session domain.Session) (domain.Session, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE migration_sessions
		 SET status = $3,
		     error_message = $4,
		     validated_at = $5,
		     import_started_at = $6,
		     completed_at = $7,
		     expires_at = $8
		 WHERE tenant_id = $1 AND id = $2`,
		session.TenantID,
		session.ID,
		string(session.Status),
		session.ErrorMessage,
		session.ValidatedAt,
		session.ImportStartedAt,
		session.CompletedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to update migration session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Session{}, fmt.Errorf("migration session %s: %w", session.ID, domain.ErrNotFound)
	}
	return session, nil
}

func (r *sessionRepository) ReplaceCounters(ctx context.Context, id uuid.UUID, counts domain.StatusCounts, imported int) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE migration_sessions
		 SET total_records = $2,
		     valid_records = $3,
		     warning_records = $4,
		     error_records = $5,
		     fixed_records = $6,
		     skipped_records = $7,
		     imported_records = $8
		 WHERE id = $1`,
		id,
		counts.Total,
		counts.Valid,
		counts.Warning,
		counts.Error,
		counts.Fixed,
		counts.Skipped,
		imported,
	)
	if err != nil {
		return fmt.Errorf("failed to replace migration session counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("migration session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *sessionRepository) AdjustCounters(ctx context.Context, id uuid.UUID, delta domain.StatusCounts, importedDelta int) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE migration_sessions
		 SET total_records = total_records + $2,
		     valid_records = valid_records + $3,
		     warning_records = warning_records + $4,
		     error_records = error_records + $5,
		     fixed_records = fixed_records + $6,
		     skipped_records = skipped_records + $7,
		     imported_records = imported_records + $8
		 WHERE id = $1`,
		id,
		delta.Total,
		delta.Valid,
		delta.Warning,
		delta.Error,
		delta.Fixed,
		delta.Skipped,
		importedDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust session counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("migration session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM migration_sessions
		 WHERE expires_at IS NOT NULL
		   AND expires_at < $1
		   AND status NOT IN ('Importing', 'Completed')`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var (
		session         domain.Session
		sourceType      string
		status          string
		entities        []string
		errorMessage    pgtype.Text
		createdAt       pgtype.Timestamptz
		validatedAt     pgtype.Timestamptz
		importStartedAt pgtype.Timestamptz
		completedAt     pgtype.Timestamptz
		expiresAt       pgtype.Timestamptz
	)
	if err := row.Scan(
		&session.ID,
		&session.TenantID,
		&sourceType,
		&session.SourceName,
		&status,
		&entities,
		&session.TotalRecords,
		&session.ValidRecords,
		&session.WarningRecords,
		&session.ErrorRecords,
		&session.FixedRecords,
		&session.SkippedRecords,
		&session.ImportedRecords,
		&errorMessage,
		&createdAt,
		&validatedAt,
		&importStartedAt,
		&completedAt,
		&expiresAt,
	); err != nil {
		return domain.Session{}, err
	}

	session.SourceType = domain.SourceType(sourceType)
	session.Status = domain.SessionStatus(status)
	session.Entities = make([]domain.EntityType, len(entities))
	for i, et := range entities {
		session.Entities[i] = domain.EntityType(et)
	}
	if errorMessage.Valid {
		session.ErrorMessage = errorMessage.String
	}
	if createdAt.Valid {
		session.CreatedAt = createdAt.Time
	}
	session.ValidatedAt = timePtr(validatedAt)
	session.ImportStartedAt = timePtr(importStartedAt)
	session.CompletedAt = timePtr(completedAt)
	session.ExpiresAt = timePtr(expiresAt)
	return session, nil
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	value := ts.Time
	return &value
}
