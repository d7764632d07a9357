package ui

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"sheetcharts/domain/chart"
	"sheetcharts/internal/aggregate"
	"sheetcharts/internal/errors"
	"sheetcharts/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// handleChartAggregate runs a group or statistical aggregation over a stored
// file. The body shape is sniffed before anything is bound:
//
//	{groupBy, aggregateField, aggregateFunction, limit}
//	{column, chartType: histogram|boxplot, binCount, limit}
//
// Either shape may carry "save": true to keep the result in chart history.
func (s *Server) handleChartAggregate(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, errors.InvalidInput("failed to read request body"))
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		respondError(c, errors.MissingParameter("groupBy", "aggregateField"))
		return
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		respondError(c, errors.InvalidInput("request body must be a JSON object"))
		return
	}
	parsed := gjson.ParseBytes(body)

	limit, err := s.rowLimit(parsed)
	if err != nil {
		respondError(c, err)
		return
	}

	var (
		req  aggregate.Request
		echo gin.H
	)
	if isStatShape(parsed) {
		statReq, err := s.statRequest(parsed, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		req = statReq
		echo = gin.H{
			"column":    statReq.Column,
			"chartType": statReq.Kind,
			"limit":     limit,
		}
		if statReq.Kind == aggregate.StatHistogram {
			echo["binCount"] = statReq.BinCount
		}
	} else {
		groupReq := aggregate.GroupRequest{
			GroupBy:     parsed.Get("groupBy").String(),
			ValueColumn: parsed.Get("aggregateField").String(),
			Function:    parsed.Get("aggregateFunction").String(),
			Limit:       limit,
		}
		req = groupReq
		echo = gin.H{
			"groupBy":           groupReq.GroupBy,
			"aggregateField":    groupReq.ValueColumn,
			"aggregateFunction": aggregate.ParseFunction(groupReq.Function),
			"limit":             limit,
		}
	}

	userID := middleware.CurrentUser(c)
	rows, err := s.charts.Aggregate(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"success":  true,
		"data":     rows,
		"rowCount": len(rows),
	}
	for k, v := range echo {
		resp[k] = v
	}

	if parsed.Get("save").Bool() {
		entry, err := s.charts.SaveAggregate(c.Request.Context(), userID, id, req, rows)
		if err != nil {
			respondError(c, err)
			return
		}
		resp["chartId"] = entry.ID
	}

	log.Printf("[API] Aggregated file %s: %d rows", id, len(rows))
	c.JSON(http.StatusOK, resp)
}

// isStatShape reports whether the body asks for a histogram or boxplot.
// A chartType naming a statistical chart wins; otherwise a lone column
// without groupBy selects the statistical path.
func isStatShape(body gjson.Result) bool {
	if t, ok := chart.ParseType(body.Get("chartType").String()); ok {
		return t.IsStatistical()
	}
	return body.Get("column").Exists() && !body.Get("groupBy").Exists()
}

func (s *Server) statRequest(body gjson.Result, limit int) (aggregate.StatRequest, error) {
	kind := strings.ToLower(strings.TrimSpace(body.Get("chartType").String()))
	if kind == "" {
		kind = string(aggregate.StatHistogram)
	}
	req := aggregate.StatRequest{
		Column: body.Get("column").String(),
		Kind:   aggregate.StatKind(kind),
		Limit:  limit,
	}
	if req.Kind != aggregate.StatHistogram && req.Kind != aggregate.StatBoxplot {
		return req, errors.InvalidInput(fmt.Sprintf("chartType must be histogram or boxplot, got %q", kind))
	}
	if req.Kind == aggregate.StatHistogram {
		bins, err := s.binCount(body)
		if err != nil {
			return req, err
		}
		req.BinCount = bins
	}
	return req, nil
}

// rowLimit validates the optional limit field
func (s *Server) rowLimit(body gjson.Result) (int, error) {
	field := body.Get("limit")
	if !field.Exists() || field.Type == gjson.Null {
		return s.limits.DefaultRowLimit, nil
	}
	limit, ok := wholeNumber(field)
	if !ok || limit < 1 || limit > s.limits.MaxRowLimit {
		return 0, errors.InvalidInput(fmt.Sprintf("limit must be an integer between 1 and %d", s.limits.MaxRowLimit))
	}
	return limit, nil
}

// binCount validates the optional binCount field
func (s *Server) binCount(body gjson.Result) (int, error) {
	field := body.Get("binCount")
	if !field.Exists() || field.Type == gjson.Null {
		return s.limits.DefaultBinCount, nil
	}
	bins, ok := wholeNumber(field)
	if !ok || bins < s.limits.MinBinCount || bins > s.limits.MaxBinCount {
		return 0, errors.InvalidInput(fmt.Sprintf("binCount must be an integer between %d and %d", s.limits.MinBinCount, s.limits.MaxBinCount))
	}
	return bins, nil
}

// wholeNumber accepts JSON numbers and numeric strings without a fraction
func wholeNumber(field gjson.Result) (int, bool) {
	switch field.Type {
	case gjson.Number:
	case gjson.String:
		if !gjson.Valid(field.Str) || gjson.Parse(field.Str).Type != gjson.Number {
			return 0, false
		}
	default:
		return 0, false
	}
	f := field.Float()
	if f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
