// Package progress computes completion percentages over the summary rows.
// Progress is always recomputed fresh from the row set; the progress column
// stored at submission time is a snapshot, never a source.
package progress

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/traincore/traincore-api/internal/store"
)

// Aggregator derives progress values from the summary tier and the program
// material sets. It is stateless; bind it to a transaction by constructing
// it over transaction-bound stores.
type Aggregator struct {
	history  store.HistoryStore
	programs store.ProgramStore
	logger   *slog.Logger
}

// NewAggregator creates a progress aggregator over the given stores.
// If logger is nil, a default logger will be used.
func NewAggregator(history store.HistoryStore, programs store.ProgramStore, logger *slog.Logger) *Aggregator {
	if history == nil {
		panic("history store cannot be nil")
	}
	if programs == nil {
		panic("program store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{
		history:  history,
		programs: programs,
		logger:   logger.With(slog.String("component", "progress_aggregator")),
	}
}

// ratio converts an attempted count over a total into a whole percentage,
// truncating toward zero and clamping to the 0..100 range. An empty total
// yields zero.
func ratio(attempted, total int) int {
	if total <= 0 {
		return 0
	}
	p := attempted * 100 / total
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}

// MaterialProgress returns the user's progress in the scope the material was
// submitted under. With a program scope the value is the ratio over the
// program's full material set. Standalone, a material is simply done or not:
// 100 once a summary row exists, 0 before.
func (a *Aggregator) MaterialProgress(
	ctx context.Context,
	userID uuid.UUID,
	materialID int64,
	programID *int64,
) (int, error) {
	if programID == nil {
		attempted, err := a.history.HasScore(ctx, userID, materialID)
		if err != nil {
			return 0, err
		}
		if attempted {
			return 100, nil
		}
		return 0, nil
	}
	return a.ProgramProgress(ctx, userID, *programID)
}

// ProgramProgress returns the user's completion percentage across the
// program's full material set (direct assignments plus path materials,
// deduplicated).
func (a *Aggregator) ProgramProgress(ctx context.Context, userID uuid.UUID, programID int64) (int, error) {
	ids, err := a.programs.ProgramMaterialIDs(ctx, programID)
	if err != nil {
		return 0, err
	}

	attempted, err := a.history.CountScored(ctx, userID, ids)
	if err != nil {
		return 0, err
	}

	p := ratio(attempted, len(ids))
	a.logger.Debug("computed program progress",
		slog.String("user_id", userID.String()),
		slog.Int64("program_id", programID),
		slog.Int("attempted", attempted),
		slog.Int("total", len(ids)),
		slog.Int("progress", p))
	return p, nil
}

// PathProgress returns the user's completion percentage across the learning
// path's material set.
func (a *Aggregator) PathProgress(ctx context.Context, userID uuid.UUID, pathID int64) (int, error) {
	ids, err := a.programs.PathMaterialIDs(ctx, pathID)
	if err != nil {
		return 0, err
	}

	attempted, err := a.history.CountScored(ctx, userID, ids)
	if err != nil {
		return 0, err
	}

	p := ratio(attempted, len(ids))
	a.logger.Debug("computed path progress",
		slog.String("user_id", userID.String()),
		slog.Int64("learning_path_id", pathID),
		slog.Int("attempted", attempted),
		slog.Int("total", len(ids)),
		slog.Int("progress", p))
	return p, nil
}
