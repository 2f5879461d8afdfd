// Package content provides the authoring surface: material lifecycle and the
// relationship graph between materials and their subcomponents.
package content

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/store"
)

// Service orchestrates material authoring and relationship management.
// Writes that touch more than one row run inside a single transaction.
type Service struct {
	materials     store.MaterialStore
	relationships store.RelationshipStore
	tx            store.Transactor
	logger        *slog.Logger
}

// NewService creates a content service.
// If logger is nil, a default logger will be used.
func NewService(
	materials store.MaterialStore,
	relationships store.RelationshipStore,
	tx store.Transactor,
	logger *slog.Logger,
) *Service {
	if materials == nil {
		panic("material store cannot be nil")
	}
	if relationships == nil {
		panic("relationship store cannot be nil")
	}
	if tx == nil {
		panic("transactor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		materials:     materials,
		relationships: relationships,
		tx:            tx,
		logger:        logger.With(slog.String("component", "content_service")),
	}
}

// CreateMaterial validates and persists a new material with its
// subcomponents, assigning ids in place. Structural violations reject the
// whole material; nothing is persisted partially.
func (s *Service) CreateMaterial(ctx context.Context, m *domain.Material) error {
	m.Subcomponents.NormalizeQuestionTypes()
	if err := m.Validate(); err != nil {
		return err
	}
	if violations := m.StructuralViolations(); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.materials.WithTx(tx).Create(ctx, m)
	})
	if err != nil {
		return newError("create_material", "failed to create material", err)
	}
	return nil
}

// GetMaterial retrieves a material with its subcomponents.
func (s *Service) GetMaterial(ctx context.Context, id int64) (*domain.Material, error) {
	return s.materials.GetByID(ctx, id)
}

// ReplaceMaterial validates and persists a full update of the material. The
// subcomponent collections replace the stored ones wholesale; the type
// discriminant is immutable.
func (s *Service) ReplaceMaterial(ctx context.Context, m *domain.Material) error {
	m.Subcomponents.NormalizeQuestionTypes()
	if err := m.Validate(); err != nil {
		return err
	}
	if violations := m.StructuralViolations(); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.materials.WithTx(tx).Replace(ctx, m)
	})
	if err != nil {
		return newError("replace_material", "failed to replace material", err)
	}
	return nil
}

// DeleteMaterial removes a material. Subcomponents, relationships, and
// history rows cascade.
func (s *Service) DeleteMaterial(ctx context.Context, id int64) error {
	return s.materials.Delete(ctx, id)
}

// Link creates a relationship from the source reference to the target
// material. The source material must exist and, for subcomponent sources,
// must own the referenced subcomponent.
func (s *Service) Link(
	ctx context.Context,
	source domain.SourceRef,
	targetMaterialID int64,
	relType string,
	order *int,
) (*domain.Relationship, error) {
	rel, err := domain.NewRelationship(source, targetMaterialID, relType, order)
	if err != nil {
		return nil, err
	}

	if err := s.checkSource(ctx, source); err != nil {
		return nil, err
	}

	if err := s.relationships.Link(ctx, rel); err != nil {
		return nil, newError("link", "failed to create relationship", err)
	}
	return rel, nil
}

// Unlink removes a relationship by id.
func (s *Service) Unlink(ctx context.Context, id int64) error {
	return s.relationships.Unlink(ctx, id)
}

// ListRelated returns the target summaries of every relationship out of the
// source reference, in display order.
func (s *Service) ListRelated(ctx context.Context, source domain.SourceRef) ([]domain.RelatedMaterial, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	return s.relationships.ListOutgoing(ctx, source)
}

// ListParents returns every relationship that points at the material.
func (s *Service) ListParents(ctx context.Context, materialID int64) ([]domain.Relationship, error) {
	// Listing parents of a missing material is a not-found, not an empty
	// list.
	if _, err := s.materials.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	return s.relationships.ListIncoming(ctx, materialID)
}

// ReplaceRelated replaces the source's outgoing relationships wholesale
// inside one transaction, so readers never observe a partially updated set.
func (s *Service) ReplaceRelated(
	ctx context.Context,
	source domain.SourceRef,
	rels []*domain.Relationship,
) error {
	if err := source.Validate(); err != nil {
		return err
	}
	if err := s.checkSource(ctx, source); err != nil {
		return err
	}
	for _, rel := range rels {
		if rel.TargetMaterialID == 0 {
			return domain.ErrInvalidTarget
		}
	}

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.relationships.WithTx(tx).ReplaceForSource(ctx, source, rels)
	})
	if err != nil {
		return newError("replace_related", "failed to replace relationships", err)
	}
	return nil
}

// checkSource verifies the source material exists and owns the referenced
// subcomponent, if any.
func (s *Service) checkSource(ctx context.Context, source domain.SourceRef) error {
	m, err := s.materials.GetByID(ctx, source.MaterialID)
	if err != nil {
		return err
	}
	if source.Subcomponent == nil {
		return nil
	}
	if !ownsSubcomponent(m, *source.Subcomponent) {
		return fmt.Errorf("%w: material %d has no %s with id %d",
			domain.ErrInvalidSourceRef, source.MaterialID,
			source.Subcomponent.Kind, source.Subcomponent.ID)
	}
	return nil
}

// ownsSubcomponent reports whether the material owns a subcomponent matching
// the reference's kind and id.
func ownsSubcomponent(m *domain.Material, ref domain.SubcomponentRef) bool {
	sc := m.Subcomponents
	switch ref.Kind {
	case domain.KindQuizQuestion:
		for _, q := range sc.Questions {
			if q.ID == ref.ID {
				return true
			}
		}
	case domain.KindQuizAnswer:
		for _, q := range sc.Questions {
			for _, a := range q.Answers {
				if a.ID == ref.ID {
					return true
				}
			}
		}
	case domain.KindChecklistEntry:
		for _, e := range sc.ChecklistEntries {
			if e.ID == ref.ID {
				return true
			}
		}
	case domain.KindWorkflowStep:
		for _, w := range sc.WorkflowSteps {
			if w.ID == ref.ID {
				return true
			}
		}
	case domain.KindVideoTimestamp:
		for _, v := range sc.VideoTimestamps {
			if v.ID == ref.ID {
				return true
			}
		}
	case domain.KindQuestionnaireEntry:
		for _, e := range sc.QuestionnaireEntries {
			if e.ID == ref.ID {
				return true
			}
		}
	case domain.KindImageAnnotation:
		for _, a := range sc.ImageAnnotations {
			if a.ID == ref.ID {
				return true
			}
		}
	}
	return false
}
