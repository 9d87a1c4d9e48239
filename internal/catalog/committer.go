// Package catalog persists imported records into the destination tables.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cataloghq/erp-migration/internal/domain"
)

// Committer writes accepted records into the imported_records table. Commits
// are idempotent on (session_id, global_row_index) so a retried run can replay
// rows that were committed but never stamped.
type Committer struct {
	pool *pgxpool.Pool
}

func NewCommitter(pool *pgxpool.Pool) *Committer {
	return &Committer{pool: pool}
}

func (c *Committer) Commit(ctx context.Context, row domain.ValidationResult) error {
	query := `
		INSERT INTO imported_records (result_id, session_id, entity_type, global_row_index, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, global_row_index)
		DO UPDATE SET payload = EXCLUDED.payload, result_id = EXCLUDED.result_id
	`
	_, err := c.pool.Exec(ctx, query, row.ID, row.SessionID, string(row.EntityType), row.GlobalRowIndex, []byte(row.Payload()))
	if err != nil {
		return fmt.Errorf("failed to commit record %s: %w", row.ID, err)
	}
	return nil
}
