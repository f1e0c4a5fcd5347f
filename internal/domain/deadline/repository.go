package deadline

import (
	"context"

	"github.com/paidup/paidup/pkg/types/common"
)

// Store is the persistence port for deadlines.  The Postgres implementation
// lives in the infrastructure layer; the scheduler itself never touches it.
type Store interface {
	// Upsert writes the deadline keyed on (ClaimID, Type).  Writing an
	// identical value is a no-op; the returned flag is true when a row was
	// created or changed.
	Upsert(ctx context.Context, d Deadline) (changed bool, err error)

	// ListByClaim returns every stored deadline for the claim, dismissed
	// rows included, ordered by due date.
	ListByClaim(ctx context.Context, claimID common.ID) ([]Deadline, error)

	// Dismiss marks the deadline dismissed.  Dismissed rows are retained
	// so the scheduler will not re-derive the same (type, due date) pair.
	Dismiss(ctx context.Context, id common.ID) error

	// MarkDone marks the deadline completed.
	MarkDone(ctx context.Context, id common.ID) error
}
