package progress

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/store"
)

// MockHistoryStore is a mock implementation of store.HistoryStore
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) UpsertData(ctx context.Context, data *domain.UserMaterialData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockHistoryStore) UpsertScore(ctx context.Context, score *domain.UserMaterialScore) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockHistoryStore) GetData(
	ctx context.Context,
	userID uuid.UUID,
	materialID int64,
) (*domain.UserMaterialData, error) {
	args := m.Called(ctx, userID, materialID)
	data, _ := args.Get(0).(*domain.UserMaterialData)
	return data, args.Error(1)
}

func (m *MockHistoryStore) GetScore(
	ctx context.Context,
	userID uuid.UUID,
	materialID int64,
) (*domain.UserMaterialScore, error) {
	args := m.Called(ctx, userID, materialID)
	score, _ := args.Get(0).(*domain.UserMaterialScore)
	return score, args.Error(1)
}

func (m *MockHistoryStore) HasScore(ctx context.Context, userID uuid.UUID, materialID int64) (bool, error) {
	args := m.Called(ctx, userID, materialID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHistoryStore) CountScored(
	ctx context.Context,
	userID uuid.UUID,
	materialIDs []int64,
) (int, error) {
	args := m.Called(ctx, userID, materialIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return m
}

// MockProgramStore is a mock implementation of store.ProgramStore
type MockProgramStore struct {
	mock.Mock
}

func (m *MockProgramStore) ProgramMaterialIDs(ctx context.Context, programID int64) ([]int64, error) {
	args := m.Called(ctx, programID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *MockProgramStore) PathMaterialIDs(ctx context.Context, pathID int64) ([]int64, error) {
	args := m.Called(ctx, pathID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *MockProgramStore) PathForMaterial(
	ctx context.Context,
	programID, materialID int64,
) (*int64, error) {
	args := m.Called(ctx, programID, materialID)
	pathID, _ := args.Get(0).(*int64)
	return pathID, args.Error(1)
}

func (m *MockProgramStore) WithTx(tx *sql.Tx) store.ProgramStore {
	return m
}
