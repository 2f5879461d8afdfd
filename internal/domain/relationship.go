package domain

import (
	"fmt"
	"time"
)

// SubcomponentRef identifies a subcomponent inside its owning material by
// kind tag and id.
type SubcomponentRef struct {
	Kind SubcomponentKind `json:"kind"`
	ID   int64            `json:"id"`
}

// SourceRef is the composite reference a relationship points from: either a
// top-level material (Subcomponent nil) or a subcomponent identified by
// (owning material id, kind, subcomponent id). Sources are references, not
// foreign keys; the kind tag resolves to a concrete shape only at read time.
type SourceRef struct {
	MaterialID   int64            `json:"material_id"`
	Subcomponent *SubcomponentRef `json:"subcomponent,omitempty"`
}

// MaterialRef builds a source reference for a top-level material.
func MaterialRef(materialID int64) SourceRef {
	return SourceRef{MaterialID: materialID}
}

// ComponentRef builds a source reference for a subcomponent.
func ComponentRef(materialID int64, kind SubcomponentKind, subID int64) SourceRef {
	return SourceRef{
		MaterialID:   materialID,
		Subcomponent: &SubcomponentRef{Kind: kind, ID: subID},
	}
}

// Validate checks that the reference is complete.
func (r SourceRef) Validate() error {
	if r.MaterialID == 0 {
		return fmt.Errorf("%w: missing material id", ErrInvalidSourceRef)
	}
	if r.Subcomponent != nil {
		if !r.Subcomponent.Kind.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidSubcomponentKind, r.Subcomponent.Kind)
		}
		if r.Subcomponent.ID == 0 {
			return fmt.Errorf("%w: missing subcomponent id", ErrInvalidSourceRef)
		}
	}
	return nil
}

// Relationship is a typed, ordered link from a source reference to a target
// material. Type is an optional free-form label; Order is the optional
// explicit display order. Within one source the total order is explicit order
// ascending with nulls last, then insertion order.
type Relationship struct {
	ID               int64     `json:"id"`
	Source           SourceRef `json:"source"`
	TargetMaterialID int64     `json:"target_material_id"`
	Type             string    `json:"type,omitempty"`
	Order            *int      `json:"order,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewRelationship creates a validated, unpersisted relationship.
func NewRelationship(source SourceRef, targetMaterialID int64, relType string, order *int) (*Relationship, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if targetMaterialID == 0 {
		return nil, ErrInvalidTarget
	}
	return &Relationship{
		Source:           source,
		TargetMaterialID: targetMaterialID,
		Type:             relType,
		Order:            order,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// RelatedMaterial is the target summary returned by outgoing-relationship
// listings: enough to render a "related materials" strip without loading the
// full material.
type RelatedMaterial struct {
	MaterialID int64        `json:"material_id"`
	Name       string       `json:"name"`
	Type       MaterialType `json:"type"`
	RelType    string       `json:"relationship_type,omitempty"`
	Order      *int         `json:"order,omitempty"`
}
