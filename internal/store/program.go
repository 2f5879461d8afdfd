package store

import (
	"context"
	"database/sql"
)

// ProgramStore defines the read interface over training programs and
// learning paths. Programs and paths are pure grouping entities here: the
// store only resolves their material sets, which define the denominator of
// progress ratios.
type ProgramStore interface {
	// ProgramMaterialIDs returns the program's full material set: materials
	// directly assigned plus materials reachable through the program's
	// learning paths, deduplicated. Returns ErrProgramNotFound if the
	// program does not exist.
	ProgramMaterialIDs(ctx context.Context, programID int64) ([]int64, error)

	// PathMaterialIDs returns the learning path's ordered material set.
	// Returns ErrLearningPathNotFound if the path does not exist.
	PathMaterialIDs(ctx context.Context, pathID int64) ([]int64, error)

	// PathForMaterial returns the id of the learning path within the given
	// program that contains the material, or nil when the material is only
	// directly assigned. When several paths contain it the lowest path id
	// wins, so the scoping is deterministic.
	PathForMaterial(ctx context.Context, programID, materialID int64) (*int64, error)

	// WithTx returns a ProgramStore bound to the given transaction.
	WithTx(tx *sql.Tx) ProgramStore
}
