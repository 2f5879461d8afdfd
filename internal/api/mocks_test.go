package api

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/store"
)

// fakeTransactor runs the transaction function directly, without a database.
type fakeTransactor struct{}

func (fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// MockMaterialStore is a mock implementation of store.MaterialStore
type MockMaterialStore struct {
	mock.Mock
}

func (m *MockMaterialStore) Create(ctx context.Context, material *domain.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialStore) GetByID(ctx context.Context, id int64) (*domain.Material, error) {
	args := m.Called(ctx, id)
	material, _ := args.Get(0).(*domain.Material)
	return material, args.Error(1)
}

func (m *MockMaterialStore) Replace(ctx context.Context, material *domain.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore {
	return m
}

// MockRelationshipStore is a mock implementation of store.RelationshipStore
type MockRelationshipStore struct {
	mock.Mock
}

func (m *MockRelationshipStore) Link(ctx context.Context, rel *domain.Relationship) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *MockRelationshipStore) Unlink(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRelationshipStore) ListOutgoing(
	ctx context.Context,
	src domain.SourceRef,
) ([]domain.RelatedMaterial, error) {
	args := m.Called(ctx, src)
	related, _ := args.Get(0).([]domain.RelatedMaterial)
	return related, args.Error(1)
}

func (m *MockRelationshipStore) ListIncoming(
	ctx context.Context,
	materialID int64,
) ([]domain.Relationship, error) {
	args := m.Called(ctx, materialID)
	rels, _ := args.Get(0).([]domain.Relationship)
	return rels, args.Error(1)
}

func (m *MockRelationshipStore) ReplaceForSource(
	ctx context.Context,
	src domain.SourceRef,
	rels []*domain.Relationship,
) error {
	args := m.Called(ctx, src, rels)
	return args.Error(0)
}

func (m *MockRelationshipStore) WithTx(tx *sql.Tx) store.RelationshipStore {
	return m
}

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
