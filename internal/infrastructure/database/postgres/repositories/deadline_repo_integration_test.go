//go:build integration

package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/infrastructure/database/postgres/repositories"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/pkg/types/common"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("PAIDUP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PAIDUP_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedClaim(t *testing.T, pool *pgxpool.Pool) claim.State {
	t.Helper()
	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	state := claim.State{
		ID:        common.NewID(),
		Claimant:  claim.Party{Name: "Acme Ltd", Type: claim.PartyCompany},
		Defendant: claim.Party{Name: "Jane Smith", Type: claim.PartyIndividual},
		Invoice: claim.Invoice{
			Amount:     decimal.NewFromInt(1000),
			DateIssued: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			DueDate:    &due,
		},
	}
	repo := repositories.NewClaimRepository(pool, logging.NewNopLogger())
	require.NoError(t, repo.Save(context.Background(), state))
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), state.ID)
	})
	return state
}

func TestDeadlineRepository_UpsertIdempotent(t *testing.T) {
	pool := setupPool(t)
	state := seedClaim(t, pool)
	repo := repositories.NewDeadlineRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sched := deadline.NewScheduler(deadline.DefaultProtocol())
	candidates, err := sched.Schedule(state, nil)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	d := candidates[0]
	changed, err := repo.Upsert(ctx, d)
	require.NoError(t, err)
	assert.True(t, changed, "first write creates the row")

	changed, err = repo.Upsert(ctx, d)
	require.NoError(t, err)
	assert.False(t, changed, "identical re-write is a no-op")

	d.Title = "Updated title"
	changed, err = repo.Upsert(ctx, d)
	require.NoError(t, err)
	assert.True(t, changed, "a differing value updates the row")
}

func TestDeadlineRepository_ActiveUniquePerClaimAndType(t *testing.T) {
	pool := setupPool(t)
	state := seedClaim(t, pool)
	repo := repositories.NewDeadlineRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sched := deadline.NewScheduler(deadline.DefaultProtocol())
	candidates, err := sched.Schedule(state, nil)
	require.NoError(t, err)
	for _, d := range candidates {
		_, err := repo.Upsert(ctx, d)
		require.NoError(t, err)
	}

	stored, err := repo.ListByClaim(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, stored, len(candidates))

	seen := map[deadline.Type]int{}
	for _, d := range stored {
		seen[d.Type]++
	}
	for typ, n := range seen {
		assert.Equal(t, 1, n, "type %s", typ)
	}
}

func TestDeadlineRepository_DismissRetainsRow(t *testing.T) {
	pool := setupPool(t)
	state := seedClaim(t, pool)
	repo := repositories.NewDeadlineRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sched := deadline.NewScheduler(deadline.DefaultProtocol())
	candidates, err := sched.Schedule(state, nil)
	require.NoError(t, err)

	d := candidates[0]
	_, err = repo.Upsert(ctx, d)
	require.NoError(t, err)
	require.NoError(t, repo.Dismiss(ctx, d.ID))

	stored, err := repo.ListByClaim(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, deadline.StatusDismissed, stored[0].Status)

	// The scheduler sees the dismissal and does not resurrect the pair.
	next, err := sched.Schedule(state, stored)
	require.NoError(t, err)
	for _, c := range next {
		assert.NotEqual(t, d.Type, c.Type)
	}
}

func TestDeadlineRepository_DismissedThenDateChange(t *testing.T) {
	pool := setupPool(t)
	state := seedClaim(t, pool)
	repo := repositories.NewDeadlineRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	sched := deadline.NewScheduler(deadline.DefaultProtocol())
	candidates, err := sched.Schedule(state, nil)
	require.NoError(t, err)

	chaser := candidates[0]
	for _, d := range candidates {
		if d.Type == deadline.TypeFirstChaser {
			chaser = d
		}
	}
	_, err = repo.Upsert(ctx, chaser)
	require.NoError(t, err)
	require.NoError(t, repo.Dismiss(ctx, chaser.ID))

	// Move the invoice due date and re-derive.  The dismissed pin no
	// longer matches, so first_chaser resurrects on its new date; the
	// insert must land beside the retained dismissed row.
	newDue := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	state.Invoice.DueDate = &newDue

	stored, err := repo.ListByClaim(ctx, state.ID)
	require.NoError(t, err)
	next, err := sched.Schedule(state, stored)
	require.NoError(t, err)

	var resurrected *deadline.Deadline
	for i := range next {
		if next[i].Type == deadline.TypeFirstChaser {
			resurrected = &next[i]
		}
	}
	require.NotNil(t, resurrected, "first_chaser should come back on the new date")
	require.NotEqual(t, chaser.ID, resurrected.ID)

	created, err := repo.Upsert(ctx, *resurrected)
	require.NoError(t, err)
	assert.True(t, created)

	stored, err = repo.ListByClaim(ctx, state.ID)
	require.NoError(t, err)
	var chasers []deadline.Deadline
	for _, d := range stored {
		if d.Type == deadline.TypeFirstChaser {
			chasers = append(chasers, d)
		}
	}
	require.Len(t, chasers, 2)
	statuses := map[deadline.Status]bool{chasers[0].Status: true, chasers[1].Status: true}
	assert.True(t, statuses[deadline.StatusDismissed])
	assert.True(t, statuses[deadline.StatusPending])
}

func TestClaimRepository_RoundTrip(t *testing.T) {
	pool := setupPool(t)
	state := seedClaim(t, pool)
	repo := repositories.NewClaimRepository(pool, logging.NewNopLogger())

	loaded, err := repo.FindByID(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, loaded.ID)
	assert.Equal(t, "Acme Ltd", loaded.Claimant.Name)
	assert.True(t, state.Invoice.Amount.Equal(loaded.Invoice.Amount))
}
