package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/platform/logger"
	"github.com/traincore/traincore-api/internal/store"
)

// PostgresHistoryStore implements the store.HistoryStore interface using a
// PostgreSQL database as the storage backend. Both tiers are keyed uniquely
// by (user_id, material_id); writes are upserts against that key.
type PostgresHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHistoryStore creates a new PostgreSQL implementation of the
// HistoryStore interface. If logger is nil, a default logger will be used.
func NewPostgresHistoryStore(db store.DBTX, logger *slog.Logger) *PostgresHistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

// Ensure PostgresHistoryStore implements store.HistoryStore interface
var _ store.HistoryStore = (*PostgresHistoryStore)(nil)

// WithTx implements store.HistoryStore.WithTx
func (s *PostgresHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return &PostgresHistoryStore{
		db:     tx,
		logger: s.logger,
	}
}

// UpsertData implements store.HistoryStore.UpsertData
// Resubmission overwrites the existing row in place; the (user_id,
// material_id) key never duplicates.
// Returns store.ErrInvalidEntity if the material does not exist.
func (s *PostgresHistoryStore) UpsertData(ctx context.Context, data *domain.UserMaterialData) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := data.Validate(); err != nil {
		log.Warn("history row validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", data.UserID.String()),
			slog.Int64("material_id", data.MaterialID))
		return err
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO user_material_data
			(user_id, material_id, program_id, learning_path_id,
			 version, submitted_at, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id, material_id) DO UPDATE SET
			program_id = EXCLUDED.program_id,
			learning_path_id = EXCLUDED.learning_path_id,
			version = EXCLUDED.version,
			submitted_at = EXCLUDED.submitted_at,
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		data.UserID,
		data.MaterialID,
		data.ProgramID,
		data.LearningPathID,
		data.Version,
		data.SubmittedAt,
		[]byte(data.Snapshot),
		now,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during history upsert",
				slog.String("error", err.Error()),
				slog.Int64("material_id", data.MaterialID))
			return fmt.Errorf("%w: material %d not found",
				store.ErrInvalidEntity, data.MaterialID)
		}
		log.Error("failed to upsert history row",
			slog.String("error", err.Error()),
			slog.String("user_id", data.UserID.String()),
			slog.Int64("material_id", data.MaterialID))
		return err
	}

	log.Info("history row upserted successfully",
		slog.String("user_id", data.UserID.String()),
		slog.Int64("material_id", data.MaterialID))
	return nil
}

// UpsertScore implements store.HistoryStore.UpsertScore
// Returns store.ErrInvalidEntity if the material does not exist.
func (s *PostgresHistoryStore) UpsertScore(ctx context.Context, score *domain.UserMaterialScore) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := score.Validate(); err != nil {
		log.Warn("score row validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", score.UserID.String()),
			slog.Int64("material_id", score.MaterialID))
		return err
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO user_material_scores
			(user_id, material_id, program_id, learning_path_id,
			 score, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (user_id, material_id) DO UPDATE SET
			program_id = EXCLUDED.program_id,
			learning_path_id = EXCLUDED.learning_path_id,
			score = EXCLUDED.score,
			progress = EXCLUDED.progress,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		score.UserID,
		score.MaterialID,
		score.ProgramID,
		score.LearningPathID,
		score.Score,
		score.Progress,
		now,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during score upsert",
				slog.String("error", err.Error()),
				slog.Int64("material_id", score.MaterialID))
			return fmt.Errorf("%w: material %d not found",
				store.ErrInvalidEntity, score.MaterialID)
		}
		log.Error("failed to upsert score row",
			slog.String("error", err.Error()),
			slog.String("user_id", score.UserID.String()),
			slog.Int64("material_id", score.MaterialID))
		return err
	}

	log.Info("score row upserted successfully",
		slog.String("user_id", score.UserID.String()),
		slog.Int64("material_id", score.MaterialID),
		slog.Float64("score", score.Score))
	return nil
}

// GetData implements store.HistoryStore.GetData
// Returns store.ErrSubmissionNotFound if the user has never submitted for
// this material.
func (s *PostgresHistoryStore) GetData(
	ctx context.Context,
	userID uuid.UUID,
	materialID int64,
) (*domain.UserMaterialData, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, material_id, program_id, learning_path_id,
		       version, submitted_at, snapshot, created_at, updated_at
		FROM user_material_data
		WHERE user_id = $1 AND material_id = $2
	`

	var data domain.UserMaterialData
	var snapshot []byte

	err := s.db.QueryRowContext(ctx, query, userID, materialID).Scan(
		&data.UserID,
		&data.MaterialID,
		&data.ProgramID,
		&data.LearningPathID,
		&data.Version,
		&data.SubmittedAt,
		&snapshot,
		&data.CreatedAt,
		&data.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("history row not found",
				slog.String("user_id", userID.String()),
				slog.Int64("material_id", materialID))
			return nil, store.ErrSubmissionNotFound
		}
		log.Error("failed to get history row",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("material_id", materialID))
		return nil, err
	}

	data.Snapshot = snapshot
	return &data, nil
}

// GetScore implements store.HistoryStore.GetScore
// Returns store.ErrSubmissionNotFound if absent.
func (s *PostgresHistoryStore) GetScore(
	ctx context.Context,
	userID uuid.UUID,
	materialID int64,
) (*domain.UserMaterialScore, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, material_id, program_id, learning_path_id,
		       score, progress, created_at, updated_at
		FROM user_material_scores
		WHERE user_id = $1 AND material_id = $2
	`

	var score domain.UserMaterialScore

	err := s.db.QueryRowContext(ctx, query, userID, materialID).Scan(
		&score.UserID,
		&score.MaterialID,
		&score.ProgramID,
		&score.LearningPathID,
		&score.Score,
		&score.Progress,
		&score.CreatedAt,
		&score.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("score row not found",
				slog.String("user_id", userID.String()),
				slog.Int64("material_id", materialID))
			return nil, store.ErrSubmissionNotFound
		}
		log.Error("failed to get score row",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("material_id", materialID))
		return nil, err
	}

	return &score, nil
}

// HasScore implements store.HistoryStore.HasScore
func (s *PostgresHistoryStore) HasScore(
	ctx context.Context,
	userID uuid.UUID,
	materialID int64,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_material_scores
			WHERE user_id = $1 AND material_id = $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, materialID).Scan(&exists); err != nil {
		log.Error("failed to check score existence",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("material_id", materialID))
		return false, err
	}

	return exists, nil
}

// CountScored implements store.HistoryStore.CountScored
// Duplicate ids in the input count once; an empty input returns zero.
// The id list expands into one placeholder per id; array binding is not
// available through the database/sql driver.
func (s *PostgresHistoryStore) CountScored(
	ctx context.Context,
	userID uuid.UUID,
	materialIDs []int64,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(materialIDs) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(materialIDs))
	args := make([]any, 0, len(materialIDs)+1)
	args = append(args, userID)
	for i, id := range materialIDs {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT material_id)
		FROM user_material_scores
		WHERE user_id = $1 AND material_id IN (%s)
	`, strings.Join(placeholders, ", "))

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count scored materials",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("material_count", len(materialIDs)))
		return 0, err
	}

	return count, nil
}
