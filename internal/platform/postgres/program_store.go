package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/traincore/traincore-api/internal/platform/logger"
	"github.com/traincore/traincore-api/internal/store"
)

// PostgresProgramStore implements the store.ProgramStore interface using a
// PostgreSQL database as the storage backend. It only resolves material
// sets; programs and paths carry no behavior of their own.
type PostgresProgramStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgramStore creates a new PostgreSQL implementation of the
// ProgramStore interface. If logger is nil, a default logger will be used.
func NewPostgresProgramStore(db store.DBTX, logger *slog.Logger) *PostgresProgramStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgramStore{
		db:     db,
		logger: logger.With(slog.String("component", "program_store")),
	}
}

// Ensure PostgresProgramStore implements store.ProgramStore interface
var _ store.ProgramStore = (*PostgresProgramStore)(nil)

// WithTx implements store.ProgramStore.WithTx
func (s *PostgresProgramStore) WithTx(tx *sql.Tx) store.ProgramStore {
	return &PostgresProgramStore{
		db:     tx,
		logger: s.logger,
	}
}

// ProgramMaterialIDs implements store.ProgramStore.ProgramMaterialIDs
// The set is direct assignments unioned with every path's materials,
// deduplicated. Returns store.ErrProgramNotFound if the program does not
// exist.
func (s *PostgresProgramStore) ProgramMaterialIDs(ctx context.Context, programID int64) ([]int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM training_programs WHERE id = $1)`, programID).
		Scan(&exists)
	if err != nil {
		log.Error("failed to check program existence",
			slog.String("error", err.Error()),
			slog.Int64("program_id", programID))
		return nil, err
	}
	if !exists {
		log.Debug("program not found", slog.Int64("program_id", programID))
		return nil, store.ErrProgramNotFound
	}

	query := `
		SELECT material_id FROM program_materials WHERE program_id = $1
		UNION
		SELECT lpm.material_id
		FROM program_learning_paths plp
		JOIN learning_path_materials lpm ON lpm.learning_path_id = plp.learning_path_id
		WHERE plp.program_id = $1
	`
	ids, err := s.queryIDs(ctx, query, programID)
	if err != nil {
		log.Error("failed to query program materials",
			slog.String("error", err.Error()),
			slog.Int64("program_id", programID))
		return nil, err
	}

	log.Debug("resolved program material set",
		slog.Int64("program_id", programID),
		slog.Int("count", len(ids)))
	return ids, nil
}

// PathMaterialIDs implements store.ProgramStore.PathMaterialIDs
// Returns store.ErrLearningPathNotFound if the path does not exist.
func (s *PostgresProgramStore) PathMaterialIDs(ctx context.Context, pathID int64) ([]int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM learning_paths WHERE id = $1)`, pathID).
		Scan(&exists)
	if err != nil {
		log.Error("failed to check learning path existence",
			slog.String("error", err.Error()),
			slog.Int64("learning_path_id", pathID))
		return nil, err
	}
	if !exists {
		log.Debug("learning path not found", slog.Int64("learning_path_id", pathID))
		return nil, store.ErrLearningPathNotFound
	}

	query := `
		SELECT material_id
		FROM learning_path_materials
		WHERE learning_path_id = $1
		ORDER BY position ASC, material_id ASC
	`
	ids, err := s.queryIDs(ctx, query, pathID)
	if err != nil {
		log.Error("failed to query learning path materials",
			slog.String("error", err.Error()),
			slog.Int64("learning_path_id", pathID))
		return nil, err
	}

	log.Debug("resolved learning path material set",
		slog.Int64("learning_path_id", pathID),
		slog.Int("count", len(ids)))
	return ids, nil
}

// PathForMaterial implements store.ProgramStore.PathForMaterial
// When several of the program's paths contain the material the lowest path
// id wins, so the scoping is deterministic. Returns nil when the material is
// only directly assigned.
func (s *PostgresProgramStore) PathForMaterial(
	ctx context.Context,
	programID, materialID int64,
) (*int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT plp.learning_path_id
		FROM program_learning_paths plp
		JOIN learning_path_materials lpm ON lpm.learning_path_id = plp.learning_path_id
		WHERE plp.program_id = $1 AND lpm.material_id = $2
		ORDER BY plp.learning_path_id ASC
		LIMIT 1
	`

	var pathID int64
	err := s.db.QueryRowContext(ctx, query, programID, materialID).Scan(&pathID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error("failed to resolve path for material",
			slog.String("error", err.Error()),
			slog.Int64("program_id", programID),
			slog.Int64("material_id", materialID))
		return nil, err
	}

	return &pathID, nil
}

// queryIDs runs a query whose rows are single int64 columns.
func (s *PostgresProgramStore) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
