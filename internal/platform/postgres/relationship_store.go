package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/platform/logger"
	"github.com/traincore/traincore-api/internal/store"
)

// PostgresRelationshipStore implements the store.RelationshipStore interface
// using a PostgreSQL database as the storage backend. Sources are composite
// references, not foreign keys: only the target material column is enforced
// at the schema level.
type PostgresRelationshipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRelationshipStore creates a new PostgreSQL implementation of the
// RelationshipStore interface. If logger is nil, a default logger will be
// used.
func NewPostgresRelationshipStore(db store.DBTX, logger *slog.Logger) *PostgresRelationshipStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRelationshipStore{
		db:     db,
		logger: logger.With(slog.String("component", "relationship_store")),
	}
}

// Ensure PostgresRelationshipStore implements store.RelationshipStore interface
var _ store.RelationshipStore = (*PostgresRelationshipStore)(nil)

// WithTx implements store.RelationshipStore.WithTx
func (s *PostgresRelationshipStore) WithTx(tx *sql.Tx) store.RelationshipStore {
	return &PostgresRelationshipStore{
		db:     tx,
		logger: s.logger,
	}
}

// sourceColumns flattens a SourceRef into its column values. A nil
// subcomponent reference stores NULLs for kind and subcomponent id.
func sourceColumns(src domain.SourceRef) (materialID int64, kind, subID any) {
	if src.Subcomponent == nil {
		return src.MaterialID, nil, nil
	}
	return src.MaterialID, string(src.Subcomponent.Kind), src.Subcomponent.ID
}

// Link implements store.RelationshipStore.Link
// Returns store.ErrInvalidEntity if the target material does not exist.
func (s *PostgresRelationshipStore) Link(ctx context.Context, rel *domain.Relationship) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rel.Source.Validate(); err != nil {
		log.Warn("relationship source validation failed",
			slog.String("error", err.Error()))
		return err
	}

	materialID, kind, subID := sourceColumns(rel.Source)

	query := `
		INSERT INTO relationships
			(source_material_id, source_kind, source_subcomponent_id,
			 target_material_id, relationship_type, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		materialID,
		kind,
		subID,
		rel.TargetMaterialID,
		rel.Type,
		rel.Order,
		rel.CreatedAt,
	).Scan(&rel.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during relationship creation",
				slog.String("error", err.Error()),
				slog.Int64("target_material_id", rel.TargetMaterialID))
			return fmt.Errorf("%w: target material %d not found",
				store.ErrInvalidEntity, rel.TargetMaterialID)
		}
		log.Error("failed to create relationship",
			slog.String("error", err.Error()),
			slog.Int64("source_material_id", materialID),
			slog.Int64("target_material_id", rel.TargetMaterialID))
		return err
	}

	log.Info("relationship created successfully",
		slog.Int64("relationship_id", rel.ID),
		slog.Int64("source_material_id", materialID),
		slog.Int64("target_material_id", rel.TargetMaterialID))
	return nil
}

// Unlink implements store.RelationshipStore.Unlink
// Returns store.ErrRelationshipNotFound if the relationship does not exist.
func (s *PostgresRelationshipStore) Unlink(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete relationship",
			slog.String("error", err.Error()),
			slog.Int64("relationship_id", id))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("relationship_id", id))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("relationship not found for delete", slog.Int64("relationship_id", id))
		return store.ErrRelationshipNotFound
	}

	log.Info("relationship deleted successfully", slog.Int64("relationship_id", id))
	return nil
}

// ListOutgoing implements store.RelationshipStore.ListOutgoing
// Results join the target material for its summary fields and follow the
// total order: explicit order ascending with nulls last, then insertion
// order.
func (s *PostgresRelationshipStore) ListOutgoing(
	ctx context.Context,
	src domain.SourceRef,
) ([]domain.RelatedMaterial, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := src.Validate(); err != nil {
		return nil, err
	}

	materialID, kind, subID := sourceColumns(src)

	// NULL-safe comparison keeps one query for both source shapes.
	query := `
		SELECT r.target_material_id, m.name, m.type, r.relationship_type, r.display_order
		FROM relationships r
		JOIN materials m ON m.id = r.target_material_id
		WHERE r.source_material_id = $1
		  AND r.source_kind IS NOT DISTINCT FROM $2
		  AND r.source_subcomponent_id IS NOT DISTINCT FROM $3
		ORDER BY r.display_order ASC NULLS LAST, r.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, materialID, kind, subID)
	if err != nil {
		log.Error("failed to query outgoing relationships",
			slog.String("error", err.Error()),
			slog.Int64("source_material_id", materialID))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var related []domain.RelatedMaterial
	for rows.Next() {
		var (
			rm      domain.RelatedMaterial
			typeStr string
			relType sql.NullString
			order   sql.NullInt64
		)
		if err := rows.Scan(&rm.MaterialID, &rm.Name, &typeStr, &relType, &order); err != nil {
			log.Error("failed to scan related material row",
				slog.String("error", err.Error()))
			return nil, err
		}
		rm.Type = domain.MaterialType(typeStr)
		rm.RelType = relType.String
		if order.Valid {
			o := int(order.Int64)
			rm.Order = &o
		}
		related = append(related, rm)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if related == nil {
		related = []domain.RelatedMaterial{}
	}

	log.Debug("listed outgoing relationships",
		slog.Int64("source_material_id", materialID),
		slog.Int("count", len(related)))
	return related, nil
}

// ListIncoming implements store.RelationshipStore.ListIncoming
// It returns every relationship pointing at the material, in insertion
// order.
func (s *PostgresRelationshipStore) ListIncoming(
	ctx context.Context,
	materialID int64,
) ([]domain.Relationship, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, source_material_id, source_kind, source_subcomponent_id,
		       target_material_id, relationship_type, display_order, created_at
		FROM relationships
		WHERE target_material_id = $1
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, materialID)
	if err != nil {
		log.Error("failed to query incoming relationships",
			slog.String("error", err.Error()),
			slog.Int64("material_id", materialID))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var rels []domain.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			log.Error("failed to scan relationship row",
				slog.String("error", err.Error()))
			return nil, err
		}
		rels = append(rels, *rel)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if rels == nil {
		rels = []domain.Relationship{}
	}

	log.Debug("listed incoming relationships",
		slog.Int64("material_id", materialID),
		slog.Int("count", len(rels)))
	return rels, nil
}

// ReplaceForSource implements store.RelationshipStore.ReplaceForSource
// The caller must run this inside a transaction so no empty-set window is
// observable.
func (s *PostgresRelationshipStore) ReplaceForSource(
	ctx context.Context,
	src domain.SourceRef,
	rels []*domain.Relationship,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := src.Validate(); err != nil {
		return err
	}

	materialID, kind, subID := sourceColumns(src)

	query := `
		DELETE FROM relationships
		WHERE source_material_id = $1
		  AND source_kind IS NOT DISTINCT FROM $2
		  AND source_subcomponent_id IS NOT DISTINCT FROM $3
	`
	_, err := s.db.ExecContext(ctx, query, materialID, kind, subID)
	if err != nil {
		log.Error("failed to delete relationships for replace",
			slog.String("error", err.Error()),
			slog.Int64("source_material_id", materialID))
		return err
	}

	for _, rel := range rels {
		rel.Source = src
		if err := s.Link(ctx, rel); err != nil {
			return err
		}
	}

	log.Info("relationships replaced for source",
		slog.Int64("source_material_id", materialID),
		slog.Int("count", len(rels)))
	return nil
}

// scanRelationship maps one relationships row, rebuilding the composite
// source reference from its columns.
func scanRelationship(rows *sql.Rows) (*domain.Relationship, error) {
	var (
		rel     domain.Relationship
		kind    sql.NullString
		subID   sql.NullInt64
		relType sql.NullString
		order   sql.NullInt64
	)
	err := rows.Scan(
		&rel.ID,
		&rel.Source.MaterialID,
		&kind,
		&subID,
		&rel.TargetMaterialID,
		&relType,
		&order,
		&rel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if kind.Valid {
		if subID.Valid {
			rel.Source.Subcomponent = &domain.SubcomponentRef{
				Kind: domain.SubcomponentKind(kind.String),
				ID:   subID.Int64,
			}
		} else {
			return nil, errors.New("relationship row has source kind without subcomponent id")
		}
	}

	rel.Type = relType.String
	if order.Valid {
		o := int(order.Int64)
		rel.Order = &o
	}
	return &rel, nil
}
