package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/core"
	"sheetcharts/ports"

	"github.com/jmoiron/sqlx"
)

// ChartHistoryRepository implements ports.ChartHistoryRepository for PostgreSQL
type ChartHistoryRepository struct {
	db *sqlx.DB
}

// NewChartHistoryRepository creates a new chart history repository
func NewChartHistoryRepository(db *sqlx.DB) ports.ChartHistoryRepository {
	return &ChartHistoryRepository{db: db}
}

type historyRecord struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	DatasetID sql.NullString `db:"dataset_id"`
	Title     string         `db:"title"`
	ChartType string         `db:"chart_type"`
	Config    []byte         `db:"config"`
	Data      []byte         `db:"data"`
	CreatedAt time.Time      `db:"created_at"`
}

const historyColumns = `id, user_id, dataset_id, title, chart_type, config, data, created_at`

func (rec *historyRecord) toEntry() (*chart.HistoryEntry, error) {
	entry := &chart.HistoryEntry{
		ID:        core.ID(rec.ID),
		UserID:    core.ID(rec.UserID),
		DatasetID: core.ID(rec.DatasetID.String),
		Title:     rec.Title,
		ChartType: chart.Type(rec.ChartType),
		CreatedAt: rec.CreatedAt,
	}
	if err := json.Unmarshal(rec.Config, &entry.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart config: %w", err)
	}
	if len(rec.Data) > 0 && string(rec.Data) != "null" {
		entry.Data = &chart.ChartData{}
		if err := json.Unmarshal(rec.Data, entry.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chart data: %w", err)
		}
	}
	return entry, nil
}

// Create stores a chart history entry
func (r *ChartHistoryRepository) Create(ctx context.Context, entry *chart.HistoryEntry) error {
	configJSON, err := json.Marshal(entry.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal chart config: %w", err)
	}
	dataJSON, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal chart data: %w", err)
	}

	datasetID := sql.NullString{String: entry.DatasetID.String(), Valid: !entry.DatasetID.IsEmpty()}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chart_history (id, user_id, dataset_id, title, chart_type, config, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.UserID, datasetID, entry.Title, string(entry.ChartType), configJSON, dataJSON, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chart history entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry owned by userID
func (r *ChartHistoryRepository) GetByID(ctx context.Context, userID, id core.ID) (*chart.HistoryEntry, error) {
	var rec historyRecord
	err := r.db.GetContext(ctx, &rec, `SELECT `+historyColumns+` FROM chart_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrChartNotFound, id)
		}
		return nil, fmt.Errorf("failed to get chart history entry: %w", err)
	}
	return rec.toEntry()
}

// ListByUser returns a page of entries, newest first
func (r *ChartHistoryRepository) ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]*chart.HistoryEntry, error) {
	var records []historyRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT `+historyColumns+`
		FROM chart_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query chart history: %w", err)
	}

	entries := make([]*chart.HistoryEntry, 0, len(records))
	for i := range records {
		entry, err := records[i].toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Delete removes an entry owned by userID
func (r *ChartHistoryRepository) Delete(ctx context.Context, userID, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chart_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete chart history entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrChartNotFound, id)
	}
	return nil
}
