package ui

import (
	"fmt"
	"net/http"
	"strings"

	"sheetcharts/app"
	"sheetcharts/domain/chart"
	"sheetcharts/domain/core"
	"sheetcharts/internal/errors"
	"sheetcharts/ui/middleware"

	"github.com/gin-gonic/gin"
)

// saveChartRequest is the body of POST /api/charts
type saveChartRequest struct {
	FileID string           `json:"fileId"`
	Title  string           `json:"title"`
	Config chart.Config     `json:"config"`
	Data   *chart.ChartData `json:"data"`
}

// handleRender returns drawable chart data for a config against a stored file
func (s *Server) handleRender(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}
	cfg, err := s.bindChartConfig(c)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := s.charts.Render(c.Request.Context(), middleware.CurrentUser(c), id, cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chart": data})
}

func (s *Server) handleSaveChart(c *gin.Context) {
	var body saveChartRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.InvalidInput("invalid chart body: "+err.Error()))
		return
	}

	req := app.SaveRequest{Title: body.Title, Config: body.Config, Data: body.Data}
	if strings.TrimSpace(body.FileID) != "" {
		fileID, err := core.ParseID(body.FileID)
		if err != nil {
			respondError(c, errors.NotFound("file"))
			return
		}
		req.DatasetID = fileID
	}
	if t, ok := chart.ParseType(string(req.Config.Type)); ok {
		req.Config.Type = t
	}
	if err := s.checkLimits(&req.Config); err != nil {
		respondError(c, err)
		return
	}

	entry, err := s.charts.Save(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "chart": entry})
}

func (s *Server) handleListCharts(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, err := s.charts.ListHistory(c.Request.Context(), middleware.CurrentUser(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"charts": entries, "count": len(entries), "limit": limit, "offset": offset})
}

func (s *Server) handleGetChart(c *gin.Context) {
	id, err := pathID(c, "id", "chart")
	if err != nil {
		respondError(c, err)
		return
	}
	entry, err := s.charts.GetHistory(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart": entry})
}

func (s *Server) handleDeleteChart(c *gin.Context) {
	id, err := pathID(c, "id", "chart")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.charts.DeleteHistory(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleExportChart downloads a saved chart as png, xlsx, csv or pdf
func (s *Server) handleExportChart(c *gin.Context) {
	id, err := pathID(c, "id", "chart")
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := exportFormat(c)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := s.charts.ExportHistory(c.Request.Context(), middleware.CurrentUser(c), id, format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendExport(c, out)
}

// handleAdhocExport renders a chart config against a stored file without saving it
func (s *Server) handleAdhocExport(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := exportFormat(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cfg, err := s.bindChartConfig(c)
	if err != nil {
		respondError(c, err)
		return
	}

	out, err := s.charts.ExportAdhoc(c.Request.Context(), middleware.CurrentUser(c), id, cfg, format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendExport(c, out)
}

// bindChartConfig reads and validates a chart.Config body
func (s *Server) bindChartConfig(c *gin.Context) (chart.Config, error) {
	var cfg chart.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		return cfg, errors.InvalidInput("invalid chart config: " + err.Error())
	}
	t, ok := chart.ParseType(string(cfg.Type))
	if !ok {
		return cfg, errors.InvalidInput(fmt.Sprintf("unsupported chartType %q", cfg.Type))
	}
	cfg.Type = t
	return cfg, s.checkLimits(&cfg)
}

// checkLimits applies row-limit and bin-count bounds to a config
func (s *Server) checkLimits(cfg *chart.Config) error {
	if cfg.Limit == 0 {
		cfg.Limit = s.limits.DefaultRowLimit
	}
	if cfg.Limit < 1 || cfg.Limit > s.limits.MaxRowLimit {
		return errors.InvalidInput(fmt.Sprintf("limit must be an integer between 1 and %d", s.limits.MaxRowLimit))
	}
	if cfg.Type == chart.TypeHistogram {
		if cfg.BinCount == 0 {
			cfg.BinCount = s.limits.DefaultBinCount
		}
		if cfg.BinCount < s.limits.MinBinCount || cfg.BinCount > s.limits.MaxBinCount {
			return errors.InvalidInput(fmt.Sprintf("binCount must be an integer between %d and %d", s.limits.MinBinCount, s.limits.MaxBinCount))
		}
	}
	return nil
}

func exportFormat(c *gin.Context) (chart.ExportFormat, error) {
	raw := c.DefaultQuery("format", string(chart.FormatPNG))
	format, ok := chart.ParseExportFormat(raw)
	if !ok {
		return "", errors.UnsupportedFormat(raw)
	}
	return format, nil
}

func sendExport(c *gin.Context, out *chart.Export) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Content)
}
