// Package repositories contains the PostgreSQL implementations of the
// domain persistence ports.
package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	appErrors "github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// DeadlineRepository is the PostgreSQL implementation of deadline.Store.  A
// partial unique index on (claim_id, type) WHERE status <> 'dismissed'
// backs the at-most-one-active invariant.
type DeadlineRepository struct {
	pool     *pgxpool.Pool
	logger   logging.Logger
	settings settings
}

// NewDeadlineRepository constructs a ready-to-use DeadlineRepository.
func NewDeadlineRepository(pool *pgxpool.Pool, logger logging.Logger, opts ...Option) *DeadlineRepository {
	return &DeadlineRepository{pool: pool, logger: logger, settings: newSettings(opts)}
}

var _ deadline.Store = (*DeadlineRepository)(nil)

// Upsert writes the deadline keyed on (claim_id, type).  Re-writing an
// identical value touches nothing, so repeated scheduler runs are no-ops;
// the returned flag reports whether a row was created or changed.
func (r *DeadlineRepository) Upsert(ctx context.Context, d deadline.Deadline) (bool, error) {
	defer r.settings.observe("deadlines.upsert", time.Now())

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO deadlines (
			id, claim_id, type, due_date, title, description, legal_reference, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (claim_id, type) WHERE status <> 'dismissed'
		DO UPDATE SET
			due_date        = EXCLUDED.due_date,
			title           = EXCLUDED.title,
			description     = EXCLUDED.description,
			legal_reference = EXCLUDED.legal_reference,
			updated_at      = now()
		WHERE (deadlines.due_date, deadlines.title, deadlines.description, deadlines.legal_reference)
		      IS DISTINCT FROM
		      (EXCLUDED.due_date, EXCLUDED.title, EXCLUDED.description, EXCLUDED.legal_reference)`,
		d.ID, d.ClaimID, d.Type, d.DueDate, d.Title, d.Description, d.LegalReference, d.Status,
	)
	if err != nil {
		r.logger.Error("DeadlineRepository.Upsert", logging.Err(err))
		return false, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to upsert deadline")
	}
	return tag.RowsAffected() > 0, nil
}

// ListByClaim returns every stored deadline for the claim, dismissed rows
// included.
func (r *DeadlineRepository) ListByClaim(ctx context.Context, claimID common.ID) ([]deadline.Deadline, error) {
	defer r.settings.observe("deadlines.list_by_claim", time.Now())

	rows, err := r.pool.Query(ctx, `
		SELECT id, claim_id, type, due_date, title, description, legal_reference, status
		FROM deadlines
		WHERE claim_id = $1
		ORDER BY due_date, type`, claimID)
	if err != nil {
		r.logger.Error("DeadlineRepository.ListByClaim", logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to list deadlines")
	}
	defer rows.Close()

	var out []deadline.Deadline
	for rows.Next() {
		var d deadline.Deadline
		if err := rows.Scan(
			&d.ID, &d.ClaimID, &d.Type, &d.DueDate,
			&d.Title, &d.Description, &d.LegalReference, &d.Status,
		); err != nil {
			return nil, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to scan deadline")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to read deadlines")
	}
	return out, nil
}

// Dismiss marks the deadline dismissed; the row is retained for dedup.
func (r *DeadlineRepository) Dismiss(ctx context.Context, id common.ID) error {
	return r.setStatus(ctx, id, deadline.StatusDismissed)
}

// MarkDone marks the deadline completed.
func (r *DeadlineRepository) MarkDone(ctx context.Context, id common.ID) error {
	return r.setStatus(ctx, id, deadline.StatusDone)
}

func (r *DeadlineRepository) setStatus(ctx context.Context, id common.ID, status deadline.Status) error {
	defer r.settings.observe("deadlines.set_status", time.Now())

	tag, err := r.pool.Exec(ctx, `
		UPDATE deadlines SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error("DeadlineRepository.setStatus", logging.Err(err),
			logging.String("status", string(status)))
		return appErrors.Wrap(err, appErrors.CodeDatabase, "failed to update deadline status")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.NotFound("deadline not found: " + string(id))
	}
	return nil
}
