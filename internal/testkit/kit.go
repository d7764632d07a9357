// Package testkit provides in-memory repositories and synthetic spreadsheet
// data. The HTTP tests run against it, and the local CLI uses it in place
// of PostgreSQL.
package testkit

import (
	"context"
	"log"

	"sheetcharts/domain/core"
	"sheetcharts/domain/dataset"
	"sheetcharts/ports"
)

// TestKit bundles in-memory implementations of the storage ports
type TestKit struct {
	Datasets *InMemoryDatasetRepository
	Charts   *InMemoryChartHistoryRepository
	Users    *InMemoryUserRepository
}

// NewTestKit creates a kit with the default user already present
func NewTestKit() (*TestKit, error) {
	kit := &TestKit{
		Datasets: NewInMemoryDatasetRepository(),
		Charts:   NewInMemoryChartHistoryRepository(),
		Users:    NewInMemoryUserRepository(),
	}
	if _, err := kit.Users.GetOrCreateDefaultUser(context.Background()); err != nil {
		return nil, err
	}
	return kit, nil
}

// DatasetRepository exposes the dataset store through its port
func (k *TestKit) DatasetRepository() ports.DatasetRepository { return k.Datasets }

// ChartHistoryRepository exposes the chart store through its port
func (k *TestKit) ChartHistoryRepository() ports.ChartHistoryRepository { return k.Charts }

// UserRepository exposes the user store through its port
func (k *TestKit) UserRepository() ports.UserRepository { return k.Users }

// SeedTable stores table as a dataset owned by userID and returns it.
// Rows are stored as-is; no profiling happens here.
func (k *TestKit) SeedTable(ctx context.Context, userID core.ID, filename string, table *dataset.Table) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		ID:               core.NewID(),
		UserID:           userID,
		OriginalFilename: filename,
		MimeType:         "text/csv",
		Checksum:         string(core.NewID()),
		RecordCount:      table.RowCount(),
		FieldCount:       len(table.Headers),
		Headers:          table.Headers,
		Rows:             table.Rows,
	}
	if err := k.Datasets.Create(ctx, ds); err != nil {
		return nil, err
	}
	log.Printf("[TestKit] seeded dataset %s (%d rows)", ds.ID, ds.RecordCount)
	return ds, nil
}
