package domain

import "time"

// TrainingProgram groups materials for assignment and progress scoping. It is
// a pure grouping entity: its only behavioral role is defining the
// denominator of progress ratios. A program's full material set is the union
// of directly assigned materials and the materials of its learning paths,
// deduplicated.
type TrainingProgram struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LearningPath is an ordered sequence of materials, optionally attached to
// one or more programs. Like TrainingProgram it carries no behavior beyond
// scoping progress.
type LearningPath struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
