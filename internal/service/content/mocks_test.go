package content

import (
	"context"
	"database/sql"

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
	source domain.SourceRef,
) ([]domain.RelatedMaterial, error) {
	args := m.Called(ctx, source)
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
	source domain.SourceRef,
	rels []*domain.Relationship,
) error {
	args := m.Called(ctx, source, rels)
	return args.Error(0)
}

func (m *MockRelationshipStore) WithTx(tx *sql.Tx) store.RelationshipStore {
	return m
}
