package app

import (
	"context"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/core"
	"sheetcharts/domain/dataset"

	"github.com/stretchr/testify/mock"
)

// Mock implementations for testing
type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *MockDatasetRepository) GetByID(ctx context.Context, userID, id core.ID) (*dataset.Dataset, error) {
	args := m.Called(ctx, userID, id)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func (m *MockDatasetRepository) Delete(ctx context.Context, userID, id core.ID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockDatasetRepository) ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]dataset.Summary, error) {
	args := m.Called(ctx, userID, limit, offset)
	summaries, _ := args.Get(0).([]dataset.Summary)
	return summaries, args.Error(1)
}

func (m *MockDatasetRepository) CountByUser(ctx context.Context, userID core.ID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockDatasetRepository) GetByChecksum(ctx context.Context, userID core.ID, checksum string) (*dataset.Dataset, error) {
	args := m.Called(ctx, userID, checksum)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

type MockChartHistoryRepository struct {
	mock.Mock
}

func (m *MockChartHistoryRepository) Create(ctx context.Context, entry *chart.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockChartHistoryRepository) GetByID(ctx context.Context, userID, id core.ID) (*chart.HistoryEntry, error) {
	args := m.Called(ctx, userID, id)
	entry, _ := args.Get(0).(*chart.HistoryEntry)
	return entry, args.Error(1)
}

func (m *MockChartHistoryRepository) ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]*chart.HistoryEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	entries, _ := args.Get(0).([]*chart.HistoryEntry)
	return entries, args.Error(1)
}

func (m *MockChartHistoryRepository) Delete(ctx context.Context, userID, id core.ID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
