package ports

import (
	"context"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/core"
)

// ChartHistoryRepository stores charts a user chose to keep
type ChartHistoryRepository interface {
	Create(ctx context.Context, entry *chart.HistoryEntry) error
	GetByID(ctx context.Context, userID, id core.ID) (*chart.HistoryEntry, error)
	ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]*chart.HistoryEntry, error)
	Delete(ctx context.Context, userID, id core.ID) error
}
