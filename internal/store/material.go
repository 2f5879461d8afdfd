package store

import (
	"context"
	"database/sql"

	"github.com/traincore/traincore-api/internal/domain"
)

// MaterialStore defines the interface for material persistence. A material
// is stored as its base row (identity, audit fields, discriminant, payload)
// plus its subcomponent rows; implementations resolve the discriminant to
// the correct payload shape at read and write time.
type MaterialStore interface {
	// Create inserts a new material and its subcomponents, assigning ids to
	// the material and every subcomponent in place.
	//
	// Must run inside a transaction when the material carries subcomponents;
	// use WithTx together with store.RunInTransaction.
	Create(ctx context.Context, m *domain.Material) error

	// GetByID retrieves a material with its payload and subcomponent
	// collections fully populated. Returns ErrMaterialNotFound if the
	// material does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Material, error)

	// Replace updates the material's base fields and replaces its
	// subcomponent collections wholesale: existing subcomponent rows are
	// deleted and the provided set recreated. Subcomponents are never
	// patched field-by-field. The material's type discriminant is immutable;
	// Replace returns ErrInvalidEntity if the stored discriminant differs.
	//
	// Must run inside a transaction so the delete-and-recreate is never
	// partially visible.
	Replace(ctx context.Context, m *domain.Material) error

	// Delete removes a material. Subcomponents, relationships, and history
	// rows cascade at the schema level. Returns ErrMaterialNotFound if the
	// material does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a MaterialStore bound to the given transaction.
	WithTx(tx *sql.Tx) MaterialStore
}
