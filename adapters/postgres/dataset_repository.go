package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sheetcharts/domain/core"
	"sheetcharts/domain/dataset"
	"sheetcharts/ports"

	"github.com/jmoiron/sqlx"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// datasetRecord is the row shape of the datasets table
type datasetRecord struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	OriginalFilename string    `db:"original_filename"`
	FileSize         int64     `db:"file_size"`
	MimeType         string    `db:"mime_type"`
	SheetName        string    `db:"sheet_name"`
	Checksum         string    `db:"checksum"`
	RecordCount      int       `db:"record_count"`
	FieldCount       int       `db:"field_count"`
	Headers          []byte    `db:"headers"`
	Rows             []byte    `db:"rows"`
	Columns          []byte    `db:"columns"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

const datasetColumns = `id, user_id, original_filename, file_size, COALESCE(mime_type, '') AS mime_type,
	COALESCE(sheet_name, '') AS sheet_name, checksum, record_count, field_count,
	headers, rows, columns, created_at, updated_at`

func toRecord(ds *dataset.Dataset) (*datasetRecord, error) {
	headers, err := json.Marshal(ds.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal headers: %w", err)
	}
	rows, err := json.Marshal(ds.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rows: %w", err)
	}
	columns, err := json.Marshal(ds.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal columns: %w", err)
	}
	return &datasetRecord{
		ID:               ds.ID.String(),
		UserID:           ds.UserID.String(),
		OriginalFilename: ds.OriginalFilename,
		FileSize:         ds.FileSize,
		MimeType:         ds.MimeType,
		SheetName:        ds.SheetName,
		Checksum:         ds.Checksum,
		RecordCount:      ds.RecordCount,
		FieldCount:       ds.FieldCount,
		Headers:          headers,
		Rows:             rows,
		Columns:          columns,
		CreatedAt:        ds.CreatedAt,
		UpdatedAt:        ds.UpdatedAt,
	}, nil
}

func (rec *datasetRecord) toDataset() (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		ID:               core.ID(rec.ID),
		UserID:           core.ID(rec.UserID),
		OriginalFilename: rec.OriginalFilename,
		FileSize:         rec.FileSize,
		MimeType:         rec.MimeType,
		SheetName:        rec.SheetName,
		Checksum:         rec.Checksum,
		RecordCount:      rec.RecordCount,
		FieldCount:       rec.FieldCount,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if err := json.Unmarshal(rec.Headers, &ds.Headers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
	}
	if err := json.Unmarshal(rec.Rows, &ds.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	if len(rec.Columns) > 0 {
		if err := json.Unmarshal(rec.Columns, &ds.Columns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
		}
	}
	return ds, nil
}

// Create inserts a new dataset into the database
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	rec, err := toRecord(ds)
	if err != nil {
		return err
	}

	query := `INSERT INTO datasets (
		id, user_id, original_filename, file_size, mime_type, sheet_name, checksum,
		record_count, field_count, headers, rows, columns, created_at, updated_at
	) VALUES (
		:id, :user_id, :original_filename, :file_size, :mime_type, :sheet_name, :checksum,
		:record_count, :field_count, :headers, :rows, :columns, :created_at, :updated_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset owned by userID
func (r *datasetRepository) GetByID(ctx context.Context, userID, id core.ID) (*dataset.Dataset, error) {
	var rec datasetRecord
	query := `SELECT ` + datasetColumns + ` FROM datasets WHERE id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &rec, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return rec.toDataset()
}

// GetByChecksum returns the newest dataset of userID with the given checksum
func (r *datasetRepository) GetByChecksum(ctx context.Context, userID core.ID, checksum string) (*dataset.Dataset, error) {
	var rec datasetRecord
	query := `SELECT ` + datasetColumns + ` FROM datasets
		WHERE user_id = $1 AND checksum = $2
		ORDER BY created_at DESC
		LIMIT 1`
	if err := r.db.GetContext(ctx, &rec, query, userID, checksum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up dataset checksum: %w", err)
	}
	return rec.toDataset()
}

// ListByUser retrieves dataset summaries for a user with pagination, newest first
func (r *datasetRepository) ListByUser(ctx context.Context, userID core.ID, limit, offset int) ([]dataset.Summary, error) {
	summaries := []dataset.Summary{}
	query := `SELECT id, original_filename, file_size, record_count, field_count, created_at
	FROM datasets
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &summaries, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	return summaries, nil
}

// CountByUser returns how many datasets a user has stored
func (r *datasetRepository) CountByUser(ctx context.Context, userID core.ID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM datasets WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("failed to count datasets: %w", err)
	}
	return count, nil
}

// Delete removes a dataset owned by userID
func (r *datasetRepository) Delete(ctx context.Context, userID, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
	}
	return nil
}
