package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sheetcharts/adapters/ingest"
	"sheetcharts/app"
	"sheetcharts/domain/core"
	"sheetcharts/internal/config"
	"sheetcharts/internal/export"
	"sheetcharts/internal/testkit"
	"sheetcharts/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const regionCSV = "Region,Sales,Notes\nNorth,10,a\nSouth,4,b\nNorth,20,c\n,x,d\n"

type testServer struct {
	*Server
	kit *testkit.TestKit
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kit, err := testkit.NewTestKit()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Server.GinMode = gin.TestMode
	cfg.Server.MaxUploadMB = 1

	datasets := app.NewDatasetService(kit.Datasets, ingest.NewParser(cfg.Server.MaxUploadRows), cfg.Limits.PreviewRows)
	charts := app.NewChartService(datasets, kit.Charts, cfg.Limits.MaxConcurrentAggregations, export.Options{Width: 400, Height: 300})
	return &testServer{Server: NewServer(cfg, datasets, charts, kit.Users), kit: kit}
}

func (ts *testServer) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

// uploadID uploads regionCSV and returns the new file id
func (ts *testServer) uploadID(t *testing.T) string {
	t.Helper()
	w := ts.upload(t, "regions.csv", []byte(regionCSV))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		File struct {
			ID string `json:"id"`
		} `json:"file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.File.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestUploadAndFileEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	dup := ts.upload(t, "again.csv", []byte(regionCSV))
	assert.Equal(t, http.StatusOK, dup.Code)
	assert.Equal(t, true, decode(t, dup)["duplicate"])

	list := decode(t, ts.do(t, http.MethodGet, "/api/files?limit=5", nil, nil))
	assert.Equal(t, float64(1), list["total"])

	file := ts.do(t, http.MethodGet, "/api/files/"+id, nil, nil)
	assert.Equal(t, http.StatusOK, file.Code)
	assert.NotContains(t, file.Body.String(), `"rows"`)

	columns := decode(t, ts.do(t, http.MethodGet, "/api/files/"+id+"/columns", nil, nil))
	require.Len(t, columns["columns"], 3)

	preview := decode(t, ts.do(t, http.MethodGet, "/api/files/"+id+"/preview?rows=2", nil, nil))
	assert.Equal(t, float64(2), preview["rowCount"])

	summary := decode(t, ts.do(t, http.MethodGet, "/api/files/"+id+"/summary/Sales", nil, nil))
	stats := summary["summary"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["count"])

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/files/"+id+"/preview?rows=abc", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/files/"+id+"/summary/Profit", nil, nil).Code)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/files/"+id, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/files/"+id, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/files/not-a-uuid", nil, nil).Code)
}

func TestUploadRejections(t *testing.T) {
	ts := newTestServer(t)

	w := ts.upload(t, "notes.txt", []byte("a\n1\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "unsupported format")

	w = ts.upload(t, "legacy.xls", []byte("binary"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.upload(t, "empty.csv", []byte("only,headers\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/files/upload", []byte("{}"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "file")

	big := bytes.Repeat([]byte("a,b\n1,2\n"), 200000)
	w = ts.upload(t, "big.csv", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "upload limit")
}

func TestChartAggregate_GroupShape(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	w := ts.do(t, http.MethodPost, "/api/chart-aggregate/"+id,
		[]byte(`{"groupBy":"Region","aggregateField":"Sales","aggregateFunction":"count"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Region", resp["groupBy"])
	assert.Equal(t, "count", resp["aggregateFunction"])
	assert.Equal(t, float64(1000), resp["limit"])
	assert.Equal(t, float64(3), resp["rowCount"])

	data := resp["data"].([]interface{})
	require.Len(t, data, 3)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "North", first["label"])
	assert.Equal(t, float64(2), first["value"])
	last := data[2].(map[string]interface{})
	assert.Equal(t, "Unknown", last["label"])
	assert.Equal(t, float64(1), last["value"], "rows with a blank group key still count")
}

func TestChartAggregate_UnknownFunctionFallsBackToSum(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	w := ts.do(t, http.MethodPost, "/api/chart-aggregate/"+id,
		[]byte(`{"groupBy":"Region","aggregateField":"Sales","aggregateFunction":"bogus"}`), nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "sum", resp["aggregateFunction"])
	first := resp["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(30), first["value"])
}

func TestChartAggregate_StatShape(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	w := ts.do(t, http.MethodPost, "/api/chart-aggregate/"+id,
		[]byte(`{"column":"Sales","chartType":"histogram","binCount":5}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, float64(5), resp["binCount"])
	assert.Equal(t, "histogram", resp["chartType"])
	data := resp["data"].([]interface{})
	require.Len(t, data, 5)
	total := 0.0
	for _, row := range data {
		total += row.(map[string]interface{})["count"].(float64)
	}
	assert.Equal(t, float64(3), total)

	w = ts.do(t, http.MethodPost, "/api/chart-aggregate/"+id,
		[]byte(`{"column":"Sales","chartType":"boxplot"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	box := decode(t, w)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(10), box["median"])
	assert.Equal(t, "nearest-rank, floor-indexed", box["method"])
}

func TestChartAggregate_Save(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	w := ts.do(t, http.MethodPost, "/api/chart-aggregate/"+id,
		[]byte(`{"groupBy":"Region","aggregateField":"Sales","aggregateFunction":"avg","save":true}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	chartID, ok := decode(t, w)["chartId"].(string)
	require.True(t, ok)

	got := ts.do(t, http.MethodGet, "/api/charts/"+chartID, nil, nil)
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Contains(t, got.Body.String(), "avg of Sales by Region")
}

func TestChartAggregate_Errors(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	tests := []struct {
		name       string
		fileID     string
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing column", id, `{"groupBy":"Region","aggregateField":"Profit"}`, 400, `"Region", "Sales", "Notes"`},
		{"missing parameters", id, `{"aggregateFunction":"sum"}`, 400, "groupBy, aggregateField"},
		{"missing stat column", id, `{"chartType":"boxplot"}`, 400, "column"},
		{"no valid data", id, `{"column":"Notes","chartType":"histogram"}`, 400, "no valid numeric data"},
		{"limit too large", id, `{"groupBy":"Region","aggregateField":"Sales","limit":10001}`, 400, "limit"},
		{"limit zero", id, `{"groupBy":"Region","aggregateField":"Sales","limit":0}`, 400, "limit"},
		{"limit fractional", id, `{"groupBy":"Region","aggregateField":"Sales","limit":2.5}`, 400, "limit"},
		{"bins too few", id, `{"column":"Sales","chartType":"histogram","binCount":4}`, 400, "binCount"},
		{"bins too many", id, `{"column":"Sales","chartType":"histogram","binCount":101}`, 400, "binCount"},
		{"unknown stat kind", id, `{"column":"Sales","chartType":"violin"}`, 400, "histogram or boxplot"},
		{"not json", id, `groupBy=Region`, 400, "JSON"},
		{"unknown file", core.NewID().String(), `{"groupBy":"Region","aggregateField":"Sales"}`, 404, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/chart-aggregate/"+tt.fileID, []byte(tt.body), nil)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, decode(t, w)["error"], tt.wantError)
		})
	}
}

func TestChartAggregate_LimitAppliesToRows(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	w := ts.do(t, http.MethodPost, "/api/chart-aggregate/"+id,
		[]byte(`{"groupBy":"Region","aggregateField":"Sales","limit":"2"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, float64(10), data[0].(map[string]interface{})["value"])
}

func TestChartHistoryAndExport(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	render := ts.do(t, http.MethodPost, "/api/charts/render/"+id,
		[]byte(`{"chartType":"pie","xAxis":"Region","yAxis":"Sales","aggregateFunction":"sum"}`), nil)
	require.Equal(t, http.StatusOK, render.Code, render.Body.String())
	assert.Contains(t, render.Body.String(), `"labels":["North","South","Unknown"]`)

	save := ts.do(t, http.MethodPost, "/api/charts",
		[]byte(`{"fileId":"`+id+`","title":"Sales split","config":{"chartType":"bar","xAxis":"Region","yAxis":"Sales"}}`), nil)
	require.Equal(t, http.StatusCreated, save.Code, save.Body.String())
	chartID := decode(t, save)["chart"].(map[string]interface{})["id"].(string)

	list := decode(t, ts.do(t, http.MethodGet, "/api/charts", nil, nil))
	assert.Equal(t, float64(1), list["count"])

	for format, contentType := range map[string]string{
		"png":   "image/png",
		"csv":   "text/csv",
		"excel": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"pdf":   "application/pdf",
	} {
		w := ts.do(t, http.MethodGet, "/api/charts/"+chartID+"/export?format="+format, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, format)
		assert.Equal(t, contentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "sales-split")
	}

	bad := ts.do(t, http.MethodGet, "/api/charts/"+chartID+"/export?format=svg", nil, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/charts/"+chartID, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/charts/"+chartID, nil, nil).Code)
}

func TestAdhocExport(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	w := ts.do(t, http.MethodPost, "/api/chart-export/"+id+"?format=csv",
		[]byte(`{"chartType":"boxplot","column":"Sales"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Body.String(), "label,min,q1,median"))

	w = ts.do(t, http.MethodPost, "/api/chart-export/"+id+"?format=csv",
		[]byte(`{"chartType":"radar","column":"Sales"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveChart_Validation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/charts", []byte(`{"config":{"chartType":"bar"}}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "fileId")

	w = ts.do(t, http.MethodPost, "/api/charts", []byte(`{"config":{"chartType":"bar","limit":20000},"fileId":"`+core.NewID().String()+`"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserScoping(t *testing.T) {
	ts := newTestServer(t)
	id := ts.uploadID(t)

	stranger := core.NewID().String()
	w := ts.do(t, http.MethodGet, "/api/files/"+id, nil, map[string]string{middleware.UserIDHeader: stranger})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "unknown users are rejected")

	w = ts.do(t, http.MethodGet, "/api/files/"+id, nil, map[string]string{middleware.UserIDHeader: "not-a-uuid"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/files/"+id, nil, map[string]string{middleware.UserIDHeader: core.DefaultUserID.String()})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChartAggregateNearFloat64Limit(t *testing.T) {
	ts := newTestServer(t)
	w := ts.upload(t, "huge.csv", []byte("Group,Value\nA,1e308\nA,1e308\nB,-1e308\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["file"].(map[string]interface{})["id"].(string)
	path := "/api/chart-aggregate/" + id

	sum := ts.do(t, http.MethodPost, path, []byte(`{"groupBy":"Group","aggregateField":"Value","aggregateFunction":"sum"}`), nil)
	assert.Equal(t, http.StatusBadRequest, sum.Code)
	assert.Contains(t, decode(t, sum)["error"], "too large")

	avg := ts.do(t, http.MethodPost, path, []byte(`{"groupBy":"Group","aggregateField":"Value","aggregateFunction":"avg"}`), nil)
	require.Equal(t, http.StatusOK, avg.Code)
	rows := decode(t, avg)["data"].([]interface{})
	assert.Equal(t, 1e308, rows[0].(map[string]interface{})["value"])

	hist := ts.do(t, http.MethodPost, path, []byte(`{"column":"Value","chartType":"histogram","binCount":5}`), nil)
	require.Equal(t, http.StatusOK, hist.Code)
	assert.Len(t, decode(t, hist)["data"], 5)
}
