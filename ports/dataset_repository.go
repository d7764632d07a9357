package ports

import (
	"context"

	"sheetcharts/domain/core"
	"sheetcharts/domain/dataset"
)

// DatasetRepository defines the interface for dataset storage operations.
// Every lookup is scoped to the owning user.
type DatasetRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, userID, id core.ID) (*dataset.Dataset, error)
	Delete(ctx context.Context, userID, id core.ID) error

	// Listing without row content
	ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]dataset.Summary, error)
	CountByUser(ctx context.Context, userID core.ID) (int, error)

	// GetByChecksum finds an earlier upload of identical content, nil when absent
	GetByChecksum(ctx context.Context, userID core.ID, checksum string) (*dataset.Dataset, error)
}
