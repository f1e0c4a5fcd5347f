package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	appErrors "github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// ClaimRepository persists claim snapshots as JSONB.  The snapshot is opaque
// to the database; the engine recomputes everything derived from it, so no
// derived value is stored here.
type ClaimRepository struct {
	pool     *pgxpool.Pool
	logger   logging.Logger
	settings settings
}

// NewClaimRepository constructs a ready-to-use ClaimRepository.
func NewClaimRepository(pool *pgxpool.Pool, logger logging.Logger, opts ...Option) *ClaimRepository {
	return &ClaimRepository{pool: pool, logger: logger, settings: newSettings(opts)}
}

// Save upserts the snapshot keyed on the claim ID.
func (r *ClaimRepository) Save(ctx context.Context, state claim.State) error {
	defer r.settings.observe("claims.save", time.Now())

	raw, err := json.Marshal(state)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeInternal, "failed to encode claim state")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO claims (id, state) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		state.ID, raw)
	if err != nil {
		r.logger.Error("ClaimRepository.Save", logging.Err(err))
		return appErrors.Wrap(err, appErrors.CodeDatabase, "failed to save claim")
	}
	return nil
}

// FindByID loads the snapshot.
func (r *ClaimRepository) FindByID(ctx context.Context, id common.ID) (claim.State, error) {
	defer r.settings.observe("claims.find_by_id", time.Now())

	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT state FROM claims WHERE id = $1`, id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return claim.State{}, appErrors.NotFound("claim not found: " + string(id))
	}
	if err != nil {
		r.logger.Error("ClaimRepository.FindByID", logging.Err(err))
		return claim.State{}, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to load claim")
	}

	var state claim.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return claim.State{}, appErrors.Wrap(err, appErrors.CodeInternal, "failed to decode claim state")
	}
	return state, nil
}

// List returns claim snapshots in recent-first order.
func (r *ClaimRepository) List(ctx context.Context, p common.Pagination) ([]claim.State, int64, error) {
	defer r.settings.observe("claims.list", time.Now())

	if err := p.Validate(); err != nil {
		return nil, 0, appErrors.NewValidation(err.Error())
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claims`).Scan(&total); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to count claims")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT state FROM claims ORDER BY updated_at DESC LIMIT $1 OFFSET $2`,
		p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to list claims")
	}
	defer rows.Close()

	var out []claim.State
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.CodeDatabase, "failed to scan claim")
		}
		var state claim.State
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.CodeInternal, "failed to decode claim state")
		}
		out = append(out, state)
	}
	return out, total, rows.Err()
}

// Delete removes the snapshot; its deadlines cascade.
func (r *ClaimRepository) Delete(ctx context.Context, id common.ID) error {
	defer r.settings.observe("claims.delete", time.Now())

	tag, err := r.pool.Exec(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeDatabase, "failed to delete claim")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.NotFound("claim not found: " + string(id))
	}
	return nil
}
