package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traincore/traincore-api/internal/domain"
)

type fakeExecResult struct{}

func (fakeExecResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeExecResult) RowsAffected() (int64, error) { return 1, nil }

// pairKey keys rows the way the schema's unique constraint does.
type pairKey struct {
	userID     uuid.UUID
	materialID int64
}

// pairKeyedTable is a store.DBTX that emulates a table carrying a
// UNIQUE (user_id, material_id) constraint: an insert whose statement lacks
// the matching ON CONFLICT clause fails against an existing key the way
// Postgres would, while the upsert form overwrites the row in place.
type pairKeyedTable struct {
	rows map[pairKey][]any
}

func newPairKeyedTable() *pairKeyedTable {
	return &pairKeyedTable{rows: make(map[pairKey][]any)}
}

func (t *pairKeyedTable) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	key := pairKey{userID: args[0].(uuid.UUID), materialID: args[1].(int64)}
	if _, exists := t.rows[key]; exists &&
		!strings.Contains(query, "ON CONFLICT (user_id, material_id)") {
		return nil, &pgconn.PgError{Code: pgUniqueViolationCode}
	}
	t.rows[key] = args
	return fakeExecResult{}, nil
}

func (t *pairKeyedTable) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	panic("not scripted")
}

func (t *pairKeyedTable) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	panic("not scripted")
}

func (t *pairKeyedTable) QueryRowContext(context.Context, string, ...any) *sql.Row {
	panic("not scripted")
}

func TestUpsertOverwritesNotDuplicates(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ctx := context.Background()

	t.Run("history row", func(t *testing.T) {
		t.Parallel()

		table := newPairKeyedTable()
		s := NewPostgresHistoryStore(table, nil)

		submit := func(snapshot string) error {
			return s.UpsertData(ctx, &domain.UserMaterialData{
				UserID:      userID,
				MaterialID:  42,
				Version:     domain.SnapshotVersion,
				SubmittedAt: time.Now().UTC(),
				Snapshot:    json.RawMessage(snapshot),
			})
		}

		require.NoError(t, submit(`{"total_score":0}`))
		require.NoError(t, submit(`{"total_score":5}`))

		require.Len(t, table.rows, 1)
		row := table.rows[pairKey{userID: userID, materialID: 42}]
		assert.Equal(t, []byte(`{"total_score":5}`), row[6])
	})

	t.Run("summary row", func(t *testing.T) {
		t.Parallel()

		table := newPairKeyedTable()
		s := NewPostgresHistoryStore(table, nil)

		submit := func(score float64, progress int) error {
			return s.UpsertScore(ctx, &domain.UserMaterialScore{
				UserID:     userID,
				MaterialID: 42,
				Score:      score,
				Progress:   progress,
			})
		}

		require.NoError(t, submit(0, 0))
		require.NoError(t, submit(5, 100))

		require.Len(t, table.rows, 1)
		row := table.rows[pairKey{userID: userID, materialID: 42}]
		assert.Equal(t, 5.0, row[4])
		assert.Equal(t, 100, row[5])
	})
}
