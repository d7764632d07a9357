package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/core"
	"sheetcharts/domain/dataset"
	"sheetcharts/models"

	"github.com/google/uuid"
)

// InMemoryDatasetRepository implements ports.DatasetRepository with in-memory storage
type InMemoryDatasetRepository struct {
	datasets map[core.ID]*dataset.Dataset
	order    []core.ID
	mu       sync.RWMutex
}

func NewInMemoryDatasetRepository() *InMemoryDatasetRepository {
	return &InMemoryDatasetRepository{
		datasets: make(map[core.ID]*dataset.Dataset),
	}
}

func (r *InMemoryDatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ds.ID.IsEmpty() {
		ds.ID = core.NewID()
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = time.Now().UTC()
		ds.UpdatedAt = ds.CreatedAt
	}
	stored := *ds
	r.datasets[ds.ID] = &stored
	r.order = append(r.order, ds.ID)
	return nil
}

func (r *InMemoryDatasetRepository) GetByID(ctx context.Context, userID, id core.ID) (*dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	if !ok || ds.UserID != userID {
		return nil, core.ErrDatasetNotFound
	}
	out := *ds
	return &out, nil
}

func (r *InMemoryDatasetRepository) Delete(ctx context.Context, userID, id core.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, ok := r.datasets[id]
	if !ok || ds.UserID != userID {
		return core.ErrDatasetNotFound
	}
	delete(r.datasets, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListByUser returns summaries newest first
func (r *InMemoryDatasetRepository) ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]dataset.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*dataset.Dataset
	for i := len(r.order) - 1; i >= 0; i-- {
		if ds := r.datasets[r.order[i]]; ds.UserID == userID {
			owned = append(owned, ds)
		}
	}

	summaries := make([]dataset.Summary, 0, len(owned))
	for _, ds := range page(owned, limit, offset) {
		summaries = append(summaries, dataset.Summary{
			ID:               ds.ID,
			OriginalFilename: ds.OriginalFilename,
			FileSize:         ds.FileSize,
			RecordCount:      ds.RecordCount,
			FieldCount:       ds.FieldCount,
			CreatedAt:        ds.CreatedAt,
		})
	}
	return summaries, nil
}

func (r *InMemoryDatasetRepository) CountByUser(ctx context.Context, userID core.ID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, ds := range r.datasets {
		if ds.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryDatasetRepository) GetByChecksum(ctx context.Context, userID core.ID, checksum string) (*dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if ds := r.datasets[id]; ds.UserID == userID && ds.Checksum == checksum {
			out := *ds
			return &out, nil
		}
	}
	return nil, nil
}

// InMemoryChartHistoryRepository implements ports.ChartHistoryRepository with in-memory storage
type InMemoryChartHistoryRepository struct {
	entries map[core.ID]*chart.HistoryEntry
	mu      sync.RWMutex
}

func NewInMemoryChartHistoryRepository() *InMemoryChartHistoryRepository {
	return &InMemoryChartHistoryRepository{
		entries: make(map[core.ID]*chart.HistoryEntry),
	}
}

func (r *InMemoryChartHistoryRepository) Create(ctx context.Context, entry *chart.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *entry
	r.entries[entry.ID] = &stored
	return nil
}

func (r *InMemoryChartHistoryRepository) GetByID(ctx context.Context, userID, id core.ID) (*chart.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return nil, core.ErrChartNotFound
	}
	out := *entry
	return &out, nil
}

func (r *InMemoryChartHistoryRepository) ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]*chart.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*chart.HistoryEntry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			out := *entry
			owned = append(owned, &out)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return page(owned, limit, offset), nil
}

func (r *InMemoryChartHistoryRepository) Delete(ctx context.Context, userID, id core.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return core.ErrChartNotFound
	}
	delete(r.entries, id)
	return nil
}

// InMemoryUserRepository implements ports.UserRepository with in-memory storage
type InMemoryUserRepository struct {
	users map[uuid.UUID]*models.User
	mu    sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[uuid.UUID]*models.User),
	}
}

func (r *InMemoryUserRepository) GetOrCreateDefaultUser(ctx context.Context) (*models.User, error) {
	user := models.NewDefaultUser()
	if existing, err := r.GetUserByID(ctx, user.ID); err == nil {
		return existing, nil
	}
	if err := r.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *InMemoryUserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// CreateUser stores user, assigning an id when it has none. Ids and emails are unique.
func (r *InMemoryUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, existing := range r.users {
		if existing.ID == user.ID || existing.Email == user.Email {
			return fmt.Errorf("%w: %s", core.ErrUserExists, user.Email)
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
		user.UpdatedAt = user.CreatedAt
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// page applies limit/offset; limit <= 0 returns everything after offset
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
