package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/platform/logger"
	"github.com/traincore/traincore-api/internal/store"
)

// PostgresMaterialStore implements the store.MaterialStore interface
// using a PostgreSQL database as the storage backend. Materials are stored
// as a base row with a JSONB payload plus one row per subcomponent; the
// type discriminant resolves both at read time.
type PostgresMaterialStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMaterialStore creates a new PostgreSQL implementation of the
// MaterialStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresMaterialStore(db store.DBTX, logger *slog.Logger) *PostgresMaterialStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMaterialStore{
		db:     db,
		logger: logger.With(slog.String("component", "material_store")),
	}
}

// Ensure PostgresMaterialStore implements store.MaterialStore interface
var _ store.MaterialStore = (*PostgresMaterialStore)(nil)

// WithTx implements store.MaterialStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore {
	return &PostgresMaterialStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.MaterialStore.Create
// It saves a new material and its subcomponents, assigning generated ids in
// place. Returns validation errors from the domain Material if data is
// invalid.
func (s *PostgresMaterialStore) Create(ctx context.Context, m *domain.Material) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		log.Warn("material validation failed during create",
			slog.String("error", err.Error()),
			slog.String("material_name", m.Name))
		return err
	}

	payload, err := domain.MarshalPayload(m.Type, m.Payload)
	if err != nil {
		log.Error("failed to marshal material payload",
			slog.String("error", err.Error()),
			slog.String("material_type", string(m.Type)))
		return err
	}

	query := `
		INSERT INTO materials (name, description, type, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = s.db.QueryRowContext(
		ctx,
		query,
		m.Name,
		m.Description,
		m.Type,
		payload,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&m.ID)

	if err != nil {
		log.Error("failed to create material",
			slog.String("error", err.Error()),
			slog.String("material_name", m.Name),
			slog.String("material_type", string(m.Type)))
		return err
	}

	if err := s.insertSubcomponents(ctx, m); err != nil {
		return err
	}

	log.Info("material created successfully",
		slog.Int64("material_id", m.ID),
		slog.String("material_type", string(m.Type)))
	return nil
}

// GetByID implements store.MaterialStore.GetByID
// It retrieves a material with its payload and subcomponent collections
// fully populated.
// Returns store.ErrMaterialNotFound if the material does not exist.
func (s *PostgresMaterialStore) GetByID(ctx context.Context, id int64) (*domain.Material, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving material by ID", slog.Int64("material_id", id))

	query := `
		SELECT id, name, description, type, payload, created_at, updated_at
		FROM materials
		WHERE id = $1
	`

	var m domain.Material
	var typeStr string
	var payload []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&typeStr,
		&payload,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("material not found", slog.Int64("material_id", id))
			return nil, store.ErrMaterialNotFound
		}
		log.Error("failed to get material by ID",
			slog.String("error", err.Error()),
			slog.Int64("material_id", id))
		return nil, err
	}

	m.Type, err = domain.ParseMaterialType(typeStr)
	if err != nil {
		log.Error("stored material has unknown type",
			slog.String("error", err.Error()),
			slog.Int64("material_id", id),
			slog.String("material_type", typeStr))
		return nil, err
	}

	m.Payload, err = domain.UnmarshalPayload(m.Type, payload)
	if err != nil {
		log.Error("failed to unmarshal material payload",
			slog.String("error", err.Error()),
			slog.Int64("material_id", id),
			slog.String("material_type", typeStr))
		return nil, err
	}

	if err := s.loadSubcomponents(ctx, &m); err != nil {
		return nil, err
	}

	log.Debug("material retrieved successfully",
		slog.Int64("material_id", id),
		slog.String("material_type", string(m.Type)))
	return &m, nil
}

// Replace implements store.MaterialStore.Replace
// It updates the material's base fields and replaces its subcomponent
// collections wholesale. The type discriminant is immutable.
// Returns store.ErrMaterialNotFound if the material does not exist.
// Returns store.ErrInvalidEntity if the stored discriminant differs.
func (s *PostgresMaterialStore) Replace(ctx context.Context, m *domain.Material) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		log.Warn("material validation failed during replace",
			slog.String("error", err.Error()),
			slog.Int64("material_id", m.ID))
		return err
	}

	var storedType string
	err := s.db.QueryRowContext(ctx, `SELECT type FROM materials WHERE id = $1`, m.ID).
		Scan(&storedType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("material not found for replace", slog.Int64("material_id", m.ID))
			return store.ErrMaterialNotFound
		}
		log.Error("failed to read stored material type",
			slog.String("error", err.Error()),
			slog.Int64("material_id", m.ID))
		return err
	}

	if storedType != string(m.Type) {
		log.Warn("attempted to change material type discriminant",
			slog.Int64("material_id", m.ID),
			slog.String("stored_type", storedType),
			slog.String("requested_type", string(m.Type)))
		return fmt.Errorf("%w: material type is immutable (stored %s, got %s)",
			store.ErrInvalidEntity, storedType, m.Type)
	}

	payload, err := domain.MarshalPayload(m.Type, m.Payload)
	if err != nil {
		log.Error("failed to marshal material payload",
			slog.String("error", err.Error()),
			slog.Int64("material_id", m.ID))
		return err
	}

	m.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE materials
		SET name = $1, description = $2, payload = $3, updated_at = $4
		WHERE id = $5
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		m.Name,
		m.Description,
		payload,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		log.Error("failed to update material",
			slog.String("error", err.Error()),
			slog.Int64("material_id", m.ID))
		return err
	}

	// Wholesale replacement: drop every subcomponent row and recreate from
	// the provided collections. Subcomponents are never patched in place.
	_, err = s.db.ExecContext(ctx, `DELETE FROM subcomponents WHERE material_id = $1`, m.ID)
	if err != nil {
		log.Error("failed to delete subcomponents for replace",
			slog.String("error", err.Error()),
			slog.Int64("material_id", m.ID))
		return err
	}

	if err := s.insertSubcomponents(ctx, m); err != nil {
		return err
	}

	log.Info("material replaced successfully",
		slog.Int64("material_id", m.ID),
		slog.String("material_type", string(m.Type)))
	return nil
}

// Delete implements store.MaterialStore.Delete
// Subcomponent, relationship, and history rows cascade at the schema level.
// Returns store.ErrMaterialNotFound if the material does not exist.
func (s *PostgresMaterialStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete material",
			slog.String("error", err.Error()),
			slog.Int64("material_id", id))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("material_id", id))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("material not found for delete", slog.Int64("material_id", id))
		return store.ErrMaterialNotFound
	}

	log.Info("material deleted successfully", slog.Int64("material_id", id))
	return nil
}

// insertSubcomponents writes one row per subcomponent, assigning generated
// ids in place. Quiz answers reference their question row through parent_id.
func (s *PostgresMaterialStore) insertSubcomponents(ctx context.Context, m *domain.Material) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	insert := func(kind domain.SubcomponentKind, parentID *int64, position int, body any) (int64, error) {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		var id int64
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO subcomponents (material_id, kind, parent_id, position, body)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, m.ID, kind, parentID, position, raw).Scan(&id)
		if err != nil {
			log.Error("failed to insert subcomponent",
				slog.String("error", err.Error()),
				slog.Int64("material_id", m.ID),
				slog.String("kind", string(kind)))
			return 0, err
		}
		return id, nil
	}

	sc := &m.Subcomponents

	for i := range sc.Questions {
		q := &sc.Questions[i]
		qID, err := insert(domain.KindQuizQuestion, nil, q.Position, questionBody{
			Text:        q.Text,
			Type:        q.Type,
			Score:       q.Score,
			ScaleConfig: q.ScaleConfig,
		})
		if err != nil {
			return err
		}
		q.ID = qID
		for j := range q.Answers {
			a := &q.Answers[j]
			aID, err := insert(domain.KindQuizAnswer, &qID, a.Position, answerBody{
				Text:    a.Text,
				Correct: a.Correct,
			})
			if err != nil {
				return err
			}
			a.ID = aID
			a.QuestionID = qID
		}
	}

	for i := range sc.ChecklistEntries {
		e := &sc.ChecklistEntries[i]
		id, err := insert(domain.KindChecklistEntry, nil, e.Position, checklistEntryBody{
			Text:     e.Text,
			Required: e.Required,
		})
		if err != nil {
			return err
		}
		e.ID = id
	}

	for i := range sc.WorkflowSteps {
		w := &sc.WorkflowSteps[i]
		id, err := insert(domain.KindWorkflowStep, nil, w.Position, workflowStepBody{
			Title:       w.Title,
			Description: w.Description,
		})
		if err != nil {
			return err
		}
		w.ID = id
	}

	for i := range sc.VideoTimestamps {
		v := &sc.VideoTimestamps[i]
		id, err := insert(domain.KindVideoTimestamp, nil, i, videoTimestampBody{
			Seconds: v.Seconds,
			Label:   v.Label,
		})
		if err != nil {
			return err
		}
		v.ID = id
	}

	for i := range sc.QuestionnaireEntries {
		e := &sc.QuestionnaireEntries[i]
		id, err := insert(domain.KindQuestionnaireEntry, nil, e.Position, questionnaireEntryBody{
			Prompt: e.Prompt,
		})
		if err != nil {
			return err
		}
		e.ID = id
	}

	for i := range sc.ImageAnnotations {
		a := &sc.ImageAnnotations[i]
		id, err := insert(domain.KindImageAnnotation, nil, i, imageAnnotationBody{
			X:    a.X,
			Y:    a.Y,
			Note: a.Note,
		})
		if err != nil {
			return err
		}
		a.ID = id
	}

	return nil
}

// loadSubcomponents reads every subcomponent row for the material and slots
// it into the collection its kind tag selects.
func (s *PostgresMaterialStore) loadSubcomponents(ctx context.Context, m *domain.Material) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, kind, parent_id, position, body
		FROM subcomponents
		WHERE material_id = $1
		ORDER BY position ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, m.ID)
	if err != nil {
		log.Error("failed to query subcomponents",
			slog.String("error", err.Error()),
			slog.Int64("material_id", m.ID))
		return err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sc := &m.Subcomponents
	questionIndex := make(map[int64]int)
	type pendingAnswer struct {
		answer   domain.QuizAnswer
		parentID int64
	}
	var pendingAnswers []pendingAnswer

	for rows.Next() {
		var (
			id       int64
			kindStr  string
			parentID sql.NullInt64
			position int
			body     []byte
		)
		if err := rows.Scan(&id, &kindStr, &parentID, &position, &body); err != nil {
			log.Error("failed to scan subcomponent row",
				slog.String("error", err.Error()),
				slog.Int64("material_id", m.ID))
			return err
		}

		kind, err := domain.ParseSubcomponentKind(kindStr)
		if err != nil {
			log.Error("stored subcomponent has unknown kind",
				slog.String("error", err.Error()),
				slog.Int64("material_id", m.ID),
				slog.Int64("subcomponent_id", id))
			return err
		}

		switch kind {
		case domain.KindQuizQuestion:
			var b questionBody
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			questionIndex[id] = len(sc.Questions)
			sc.Questions = append(sc.Questions, domain.QuizQuestion{
				ID:          id,
				Text:        b.Text,
				Type:        b.Type,
				Score:       b.Score,
				Position:    position,
				ScaleConfig: b.ScaleConfig,
				Answers:     []domain.QuizAnswer{},
			})
		case domain.KindQuizAnswer:
			var b answerBody
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			pendingAnswers = append(pendingAnswers, pendingAnswer{
				answer: domain.QuizAnswer{
					ID:       id,
					Text:     b.Text,
					Correct:  b.Correct,
					Position: position,
				},
				parentID: parentID.Int64,
			})
		case domain.KindChecklistEntry:
			var b checklistEntryBody
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			sc.ChecklistEntries = append(sc.ChecklistEntries, domain.ChecklistEntry{
				ID:       id,
				Text:     b.Text,
				Required: b.Required,
				Position: position,
			})
		case domain.KindWorkflowStep:
			var b workflowStepBody
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			sc.WorkflowSteps = append(sc.WorkflowSteps, domain.WorkflowStep{
				ID:          id,
				Title:       b.Title,
				Description: b.Description,
				Position:    position,
			})
		case domain.KindVideoTimestamp:
			var b videoTimestampBody
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			sc.VideoTimestamps = append(sc.VideoTimestamps, domain.VideoTimestamp{
				ID:      id,
				Seconds: b.Seconds,
				Label:   b.Label,
			})
		case domain.KindQuestionnaireEntry:
			var b questionnaireEntryBody
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			sc.QuestionnaireEntries = append(sc.QuestionnaireEntries, domain.QuestionnaireEntry{
				ID:       id,
				Prompt:   b.Prompt,
				Position: position,
			})
		case domain.KindImageAnnotation:
			var b imageAnnotationBody
			if err := json.Unmarshal(body, &b); err != nil {
				return err
			}
			sc.ImageAnnotations = append(sc.ImageAnnotations, domain.ImageAnnotation{
				ID:   id,
				X:    b.X,
				Y:    b.Y,
				Note: b.Note,
			})
		}
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning subcomponent rows",
			slog.String("error", err.Error()),
			slog.Int64("material_id", m.ID))
		return err
	}

	// Answers attach after the pass so a question row later in the scan
	// order still receives its answers.
	for _, p := range pendingAnswers {
		idx, ok := questionIndex[p.parentID]
		if !ok {
			log.Warn("quiz answer references missing question",
				slog.Int64("material_id", m.ID),
				slog.Int64("answer_id", p.answer.ID),
				slog.Int64("question_id", p.parentID))
			continue
		}
		p.answer.QuestionID = p.parentID
		sc.Questions[idx].Answers = append(sc.Questions[idx].Answers, p.answer)
	}

	return nil
}

// Row body shapes. Identity, ordering, and ownership live in columns; the
// body holds only the kind-specific fields.
type questionBody struct {
	Text        string              `json:"text"`
	Type        domain.QuestionType `json:"type"`
	Score       float64             `json:"score"`
	ScaleConfig json.RawMessage     `json:"scale_config,omitempty"`
}

type answerBody struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type checklistEntryBody struct {
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

type workflowStepBody struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type videoTimestampBody struct {
	Seconds int    `json:"seconds"`
	Label   string `json:"label,omitempty"`
}

type questionnaireEntryBody struct {
	Prompt string `json:"prompt"`
}

type imageAnnotationBody struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Note string  `json:"note,omitempty"`
}
