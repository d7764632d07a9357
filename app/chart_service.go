package app

import (
	"context"
	"log"
	"strings"
	"time"

	"sheetcharts/domain/chart"
	"sheetcharts/domain/core"
	"sheetcharts/internal/aggregate"
	"sheetcharts/internal/errors"
	"sheetcharts/internal/export"
	"sheetcharts/internal/render"
	"sheetcharts/ports"

	"golang.org/x/sync/semaphore"
)

// ChartService computes chart data over stored datasets, keeps chart
// history and exports charts. Computations share a bounded pool.
type ChartService struct {
	datasets   *DatasetService
	history    ports.ChartHistoryRepository
	sem        *semaphore.Weighted
	exportOpts export.Options
}

// NewChartService creates a chart service running at most maxConcurrent computations at once
func NewChartService(datasets *DatasetService, history ports.ChartHistoryRepository, maxConcurrent int, exportOpts export.Options) *ChartService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ChartService{
		datasets:   datasets,
		history:    history,
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
		exportOpts: exportOpts,
	}
}

// compute runs fn while holding a slot, honouring ctx while waiting
func (s *ChartService) compute(ctx context.Context, fn func() error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errors.FromContext(err, "chart computation cancelled")
	}
	defer s.sem.Release(1)
	return fn()
}

// Aggregate runs an engine request against a stored dataset
func (s *ChartService) Aggregate(ctx context.Context, userID, datasetID core.ID, req aggregate.Request) ([]chart.DerivedRow, error) {
	ds, err := s.datasets.Get(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}

	var rows []chart.DerivedRow
	err = s.compute(ctx, func() error {
		var aggErr error
		rows, aggErr = aggregate.Aggregate(ds.Table(), req)
		return aggErr
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Render prepares drawable chart data for a stored dataset
func (s *ChartService) Render(ctx context.Context, userID, datasetID core.ID, cfg chart.Config) (*chart.ChartData, error) {
	ds, err := s.datasets.Get(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}

	var data *chart.ChartData
	err = s.compute(ctx, func() error {
		var renderErr error
		data, renderErr = render.Prepare(ds.Table(), cfg)
		return renderErr
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SaveRequest describes a chart to keep. Data is computed from the dataset
// when omitted.
type SaveRequest struct {
	DatasetID core.ID
	Title     string
	Config    chart.Config
	Data      *chart.ChartData
}

// Save stores a chart history entry
func (s *ChartService) Save(ctx context.Context, userID core.ID, req SaveRequest) (*chart.HistoryEntry, error) {
	chartType, ok := chart.ParseType(string(req.Config.Type))
	if !ok {
		return nil, errors.InvalidInput("chartType must be one of bar, line, area, pie, doughnut, scatter, histogram, boxplot")
	}
	req.Config.Type = chartType

	data := req.Data
	if data == nil {
		if req.DatasetID.IsEmpty() {
			return nil, errors.MissingParameter("fileId")
		}
		var err error
		data, err = s.Render(ctx, userID, req.DatasetID, req.Config)
		if err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.Config.Title
	}
	if title == "" {
		title = data.Title
	}

	entry := &chart.HistoryEntry{
		ID:        core.NewID(),
		UserID:    userID,
		DatasetID: req.DatasetID,
		Title:     title,
		ChartType: chartType,
		Config:    req.Config,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return nil, errors.Wrap(err, "failed to save chart")
	}

	log.Printf("[ChartService] saved %s chart %s for user %s", chartType, entry.ID, userID)
	return entry, nil
}

// SaveAggregate keeps an aggregation result as a chart history entry
func (s *ChartService) SaveAggregate(ctx context.Context, userID, datasetID core.ID, req aggregate.Request, rows []chart.DerivedRow) (*chart.HistoryEntry, error) {
	cfg := chart.Config{Type: chart.TypeBar}
	seriesLabel := "value"
	switch r := req.(type) {
	case aggregate.GroupRequest:
		cfg.XColumn = r.GroupBy
		cfg.YColumn = r.ValueColumn
		cfg.AggregateFunction = string(aggregate.ParseFunction(r.Function))
		cfg.Limit = r.Limit
		seriesLabel = cfg.AggregateFunction + " of " + r.ValueColumn
		cfg.Title = seriesLabel + " by " + r.GroupBy
	case aggregate.StatRequest:
		cfg.Type = chart.Type(r.Kind)
		cfg.Column = r.Column
		cfg.BinCount = r.BinCount
		cfg.Limit = r.Limit
		seriesLabel = r.Column
		cfg.Title = string(r.Kind) + " of " + r.Column
	}

	data := chart.FromDerived(cfg.Type, cfg.Title, seriesLabel, rows)
	return s.Save(ctx, userID, SaveRequest{DatasetID: datasetID, Config: cfg, Data: data})
}

// ListHistory returns a page of saved charts, newest first
func (s *ChartService) ListHistory(ctx context.Context, userID core.ID, limit, offset int) ([]*chart.HistoryEntry, error) {
	entries, err := s.history.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list charts")
	}
	return entries, nil
}

// GetHistory loads one saved chart
func (s *ChartService) GetHistory(ctx context.Context, userID, id core.ID) (*chart.HistoryEntry, error) {
	entry, err := s.history.GetByID(ctx, userID, id)
	if err != nil {
		return nil, repositoryError(err, "failed to load chart")
	}
	return entry, nil
}

// DeleteHistory removes a saved chart
func (s *ChartService) DeleteHistory(ctx context.Context, userID, id core.ID) error {
	if err := s.history.Delete(ctx, userID, id); err != nil {
		return repositoryError(err, "failed to delete chart")
	}
	return nil
}

// ExportHistory renders a saved chart in the given format
func (s *ChartService) ExportHistory(ctx context.Context, userID, id core.ID, format chart.ExportFormat) (*chart.Export, error) {
	entry, err := s.GetHistory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	data := entry.Data
	if data == nil {
		if data, err = s.Render(ctx, userID, entry.DatasetID, entry.Config); err != nil {
			return nil, err
		}
	}
	if entry.Title != "" && entry.Title != data.Title {
		titled := *data
		titled.Title = entry.Title
		data = &titled
	}
	return s.export(ctx, format, data)
}

// ExportAdhoc renders a chart configuration against a dataset without saving it
func (s *ChartService) ExportAdhoc(ctx context.Context, userID, datasetID core.ID, cfg chart.Config, format chart.ExportFormat) (*chart.Export, error) {
	data, err := s.Render(ctx, userID, datasetID, cfg)
	if err != nil {
		return nil, err
	}
	return s.export(ctx, format, data)
}

func (s *ChartService) export(ctx context.Context, format chart.ExportFormat, data *chart.ChartData) (*chart.Export, error) {
	var out *chart.Export
	err := s.compute(ctx, func() error {
		var exportErr error
		out, exportErr = export.Render(format, data, s.exportOpts)
		return exportErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
