package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"sheetcharts/domain/core"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/aggregate"
	"sheetcharts/internal/errors"
	"sheetcharts/ports"

	"github.com/cespare/xxhash/v2"
)

// DatasetService handles uploads and read access to stored datasets
type DatasetService struct {
	repo        ports.DatasetRepository
	parser      ports.TableParser
	previewRows int
}

// NewDatasetService creates a dataset service
func NewDatasetService(repo ports.DatasetRepository, parser ports.TableParser, previewRows int) *DatasetService {
	if previewRows <= 0 {
		previewRows = 20
	}
	return &DatasetService{repo: repo, parser: parser, previewRows: previewRows}
}

// UploadResult reports the stored dataset and whether it already existed
type UploadResult struct {
	Dataset   *dataset.Dataset
	Duplicate bool
}

// Checksum fingerprints uploaded bytes
func Checksum(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// Upload parses, profiles and stores a file. Re-uploading identical bytes
// returns the earlier dataset instead of storing a copy.
func (s *DatasetService) Upload(ctx context.Context, upload *dataset.Upload) (*UploadResult, error) {
	log.Printf("[DatasetService] Starting processing for file: %s", upload.Filename)

	if strings.TrimSpace(upload.Filename) == "" {
		return nil, errors.ValidationError("filename is required")
	}
	if len(upload.Content) == 0 {
		return nil, errors.ValidationError("uploaded file is empty")
	}

	checksum := Checksum(upload.Content)
	existing, err := s.repo.GetByChecksum(ctx, upload.UserID, checksum)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check for duplicate upload")
	}
	if existing != nil {
		log.Printf("[DatasetService] %s matches dataset %s, skipping store", upload.Filename, existing.ID)
		return &UploadResult{Dataset: existing, Duplicate: true}, nil
	}

	parsed, err := s.parser.Parse(upload.Filename, upload.Content)
	if err != nil {
		return nil, err
	}
	table := parsed.Table

	now := time.Now().UTC()
	ds := &dataset.Dataset{
		ID:               core.NewID(),
		UserID:           upload.UserID,
		OriginalFilename: filepath.Base(upload.Filename),
		FileSize:         int64(len(upload.Content)),
		MimeType:         mimeTypeFor(upload),
		SheetName:        parsed.SheetName,
		Checksum:         checksum,
		RecordCount:      table.RowCount(),
		FieldCount:       len(table.Headers),
		Headers:          table.Headers,
		Rows:             table.Rows,
		Columns:          aggregate.ProfileColumns(table),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, ds); err != nil {
		return nil, errors.Wrap(err, "failed to store dataset")
	}

	log.Printf("[DatasetService] stored dataset %s (%d rows, %d columns)", ds.ID, ds.RecordCount, ds.FieldCount)
	return &UploadResult{Dataset: ds}, nil
}

func mimeTypeFor(upload *dataset.Upload) string {
	if upload.MimeType != "" && upload.MimeType != "application/octet-stream" {
		return upload.MimeType
	}
	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xlsm":
		return "application/vnd.ms-excel.sheet.macroEnabled.12"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}

// List returns a page of the user's datasets and the total count
func (s *DatasetService) List(ctx context.Context, userID core.ID, limit, offset int) ([]dataset.Summary, int, error) {
	summaries, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list datasets")
	}
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count datasets")
	}
	return summaries, total, nil
}

// Get loads a dataset with its rows
func (s *DatasetService) Get(ctx context.Context, userID, id core.ID) (*dataset.Dataset, error) {
	ds, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, repositoryError(err, "failed to load dataset")
	}
	return ds, nil
}

// Delete removes a dataset
func (s *DatasetService) Delete(ctx context.Context, userID, id core.ID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return repositoryError(err, "failed to delete dataset")
	}
	log.Printf("[DatasetService] deleted dataset %s", id)
	return nil
}

// Columns returns the column profiles computed at upload
func (s *DatasetService) Columns(ctx context.Context, userID, id core.ID) ([]dataset.ColumnProfile, error) {
	ds, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if len(ds.Columns) == 0 {
		return aggregate.ProfileColumns(ds.Table()), nil
	}
	return ds.Columns, nil
}

// Preview returns the first rows of a dataset; rows <= 0 uses the configured default
func (s *DatasetService) Preview(ctx context.Context, userID, id core.ID, rows int) (*dataset.Table, error) {
	ds, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rows <= 0 {
		rows = s.previewRows
	}
	return ds.Table().Limit(rows), nil
}

// Summary computes descriptive statistics for one column
func (s *DatasetService) Summary(ctx context.Context, userID, id core.ID, column string) (*dataset.NumericSummary, error) {
	ds, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	table := ds.Table()
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return nil, errors.ColumnNotFound(column, table.Headers)
	}
	return aggregate.Summarize(column, table.Column(idx))
}

// repositoryError maps not-found errors to the NOT_FOUND code and wraps the rest
func repositoryError(err error, message string) error {
	if core.IsNotFoundError(err) {
		return errors.WithCode(errors.CodeNotFound, err)
	}
	return errors.Wrap(err, message)
}
