package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/traincore/traincore-api/internal/domain"
)

// HistoryStore defines the interface for the two-tier submission
// persistence: the immutable-per-submission history row (versioned JSON
// snapshot) and the hot summary row. Both tiers are keyed uniquely by
// (UserID, MaterialID); upserts overwrite, never duplicate.
type HistoryStore interface {
	// UpsertData writes the history row for (UserID, MaterialID), replacing
	// any previous submission snapshot.
	UpsertData(ctx context.Context, data *domain.UserMaterialData) error

	// UpsertScore writes the summary row for (UserID, MaterialID).
	//
	// A submission's UpsertData and UpsertScore must share one transaction:
	// the pair-write is a single atomic unit, never partially visible.
	UpsertScore(ctx context.Context, score *domain.UserMaterialScore) error

	// GetData retrieves the history row. Returns ErrSubmissionNotFound if
	// the user has never submitted for this material.
	GetData(ctx context.Context, userID uuid.UUID, materialID int64) (*domain.UserMaterialData, error)

	// GetScore retrieves the summary row. Returns ErrSubmissionNotFound if
	// absent.
	GetScore(ctx context.Context, userID uuid.UUID, materialID int64) (*domain.UserMaterialScore, error)

	// HasScore reports whether a summary row exists for the pair. This is
	// the "attempted" fact the progress aggregator builds on.
	HasScore(ctx context.Context, userID uuid.UUID, materialID int64) (bool, error)

	// CountScored returns how many of the given material ids have a summary
	// row for the user. Duplicate ids in the input count once. An empty
	// input returns zero.
	CountScored(ctx context.Context, userID uuid.UUID, materialIDs []int64) (int, error)

	// WithTx returns a HistoryStore bound to the given transaction.
	WithTx(tx *sql.Tx) HistoryStore
}
