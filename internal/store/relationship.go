package store

import (
	"context"
	"database/sql"

	"github.com/traincore/traincore-api/internal/domain"
)

// RelationshipStore defines the interface for the relationship graph:
// ordered, tagged links from a material-or-subcomponent source reference to
// a target material.
type RelationshipStore interface {
	// Link persists a new relationship and assigns its id in place.
	// Returns ErrInvalidEntity if the target material does not exist.
	Link(ctx context.Context, rel *domain.Relationship) error

	// Unlink removes a relationship by id. Returns ErrRelationshipNotFound
	// if it does not exist.
	Unlink(ctx context.Context, id int64) error

	// ListOutgoing returns the target-material summaries for every
	// relationship whose source matches the reference, ordered by explicit
	// order ascending with nulls last, then insertion order.
	ListOutgoing(ctx context.Context, src domain.SourceRef) ([]domain.RelatedMaterial, error)

	// ListIncoming returns every relationship that points at the given
	// material, for "parents" queries. Ordering follows insertion order.
	ListIncoming(ctx context.Context, materialID int64) ([]domain.Relationship, error)

	// ReplaceForSource deletes every outgoing relationship of the source
	// reference and recreates the provided set. Correctness by replacement:
	// the caller must run this inside a transaction so no empty-set window
	// is observable.
	ReplaceForSource(ctx context.Context, src domain.SourceRef, rels []*domain.Relationship) error

	// WithTx returns a RelationshipStore bound to the given transaction.
	WithTx(tx *sql.Tx) RelationshipStore
}
