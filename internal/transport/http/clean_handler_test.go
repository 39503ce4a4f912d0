package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routecleaner/internal/config"
	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/files"
	"routecleaner/internal/middleware"
	"routecleaner/internal/services"
	"routecleaner/internal/shared/testutil"
)

const deliveriesCSV = "name,addr,route,note\n" +
	"b,B1,Y,\n" +
	"a,A1,X,\n" +
	"a,A1,X,call first\n" +
	"z,Z1,Z,\n"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Pipeline = config.PipelineConfig{
		IdentityKey:    []string{"addr", "route"},
		PriorityColumn: "note",
		SortKeys:       []string{"route", "name"},
		CategoryColumn: "route",
		CategoryOrder:  []string{"X", "Y"},
		SeparatorSize:  1,
	}
	cfg.Output.Prefix = "ROUTES"
	return cfg
}

func testClock() time.Time {
	return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
}

type cleanFixture struct {
	router  chi.Router
	handler *CleanHandler
	logs    *testutil.BufferedSlogHandler
}

func newCleanFixture(t *testing.T, maxUploadBytes int64) *cleanFixture {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)

	svc, err := services.NewCleaningService(testConfig(), services.WithLogger(logger))
	require.NoError(t, err)

	h := NewCleanHandler(svc, apperrors.NewErrorHandler(logger, false), maxUploadBytes, logger)
	h.now = testClock

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/v1/clean", h.Routes())

	return &cleanFixture{router: r, handler: h, logs: logs}
}

// uploadRequest builds a multipart upload of content named fileName. An
// empty fileName leaves the file part out.
func uploadRequest(t *testing.T, target, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (f *cleanFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestCleanHandler_Clean(t *testing.T) {
	f := newCleanFixture(t, 1<<20)

	rec := f.do(uploadRequest(t, "/api/v1/clean", "deliveries.csv", deliveriesCSV,
		map[string]string{"format": "csv"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "\ufeffname,addr,route,note\n"+
		"a,A1,X,call first\n"+
		",,,\n"+
		"b,B1,Y,\n"+
		",,,\n", rec.Body.String())

	assert.Equal(t, files.FormatCSV.ContentType(), rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ROUTES 19.10.2026.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get(HeaderInputRows))
	assert.Equal(t, "4", rec.Header().Get(HeaderOutputRows))
	assert.Equal(t, "1", rec.Header().Get(HeaderDuplicatesRemoved))
	assert.Equal(t, "1", rec.Header().Get(HeaderUncategorized))
	assert.Equal(t, "2", rec.Header().Get(HeaderGroups))
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), rec.Header().Get(HeaderRunID))

	testutil.AssertLogContains(t, f.logs, slog.LevelInfo, "Route sheet served")
}

func TestCleanHandler_SeparatorRows(t *testing.T) {
	f := newCleanFixture(t, 1<<20)

	t.Run("form field", func(t *testing.T) {
		rec := f.do(uploadRequest(t, "/api/v1/clean", "deliveries.csv", deliveriesCSV,
			map[string]string{"format": "csv", "rows": "0"}))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "\ufeffname,addr,route,note\na,A1,X,call first\nb,B1,Y,\n", rec.Body.String())
	})

	t.Run("query parameter", func(t *testing.T) {
		rec := f.do(uploadRequest(t, "/api/v1/clean?rows=2&format=csv", "deliveries.csv", deliveriesCSV, nil))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "6", rec.Header().Get(HeaderOutputRows))
	})
}

func TestCleanHandler_DefaultFormat(t *testing.T) {
	f := newCleanFixture(t, 1<<20)

	rec := f.do(uploadRequest(t, "/api/v1/clean", "deliveries.csv", deliveriesCSV, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, files.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ROUTES 19.10.2026.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")
}

func TestCleanHandler_Errors(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		content   string
		fields    map[string]string
		limit     int64
		wantCode  int
		wantType  string
		wantField string
	}{
		{
			name:      "negative rows",
			fileName:  "deliveries.csv",
			content:   deliveriesCSV,
			fields:    map[string]string{"rows": "-1"},
			wantCode:  http.StatusBadRequest,
			wantType:  apperrors.TypeValidation,
			wantField: "rows",
		},
		{
			name:      "rows not a number",
			fileName:  "deliveries.csv",
			content:   deliveriesCSV,
			fields:    map[string]string{"rows": "six"},
			wantCode:  http.StatusBadRequest,
			wantType:  apperrors.TypeValidation,
			wantField: "rows",
		},
		{
			name:      "unsupported format",
			fileName:  "deliveries.csv",
			content:   deliveriesCSV,
			fields:    map[string]string{"format": "ods"},
			wantCode:  http.StatusBadRequest,
			wantType:  apperrors.TypeValidation,
			wantField: "format",
		},
		{
			name:      "missing file",
			wantCode:  http.StatusBadRequest,
			wantType:  apperrors.TypeValidation,
			wantField: "file",
		},
		{
			name:     "missing category column",
			fileName: "deliveries.csv",
			content:  "name,addr,note\na,A1,\n",
			wantCode: http.StatusUnprocessableEntity,
			wantType: apperrors.TypeSchemaMismatch,
		},
		{
			name:     "legacy workbook",
			fileName: "deliveries.xls",
			content:  "not a workbook",
			wantCode: http.StatusBadRequest,
			wantType: apperrors.TypeValidation,
		},
		{
			name:     "upload too large",
			fileName: "deliveries.csv",
			content:  strings.Repeat(deliveriesCSV, 200),
			limit:    128,
			wantCode: http.StatusRequestEntityTooLarge,
			wantType: apperrors.TypePayloadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := tt.limit
			if limit == 0 {
				limit = 1 << 20
			}
			f := newCleanFixture(t, limit)

			rec := f.do(uploadRequest(t, "/api/v1/clean", tt.fileName, tt.content, tt.fields))

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.NotEmpty(t, body["trace_id"])
			if tt.wantField != "" {
				details, ok := body["details"].(map[string]interface{})
				require.True(t, ok, "details: %v", body["details"])
				assert.Equal(t, tt.wantField, details["field"])
			}
		})
	}
}

func TestCleanHandler_ContentType(t *testing.T) {
	f := newCleanFixture(t, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clean", strings.NewReader(deliveriesCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := f.do(req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCleanHandler_Summary(t *testing.T) {
	f := newCleanFixture(t, 1<<20)

	rec := f.do(uploadRequest(t, "/api/v1/clean/summary", "deliveries.csv", deliveriesCSV,
		map[string]string{"rows": "3"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Summary struct {
			Status        string `json:"status"`
			InputRows     int    `json:"input_rows"`
			OutputRows    int    `json:"output_rows"`
			SeparatorRows int    `json:"separator_rows"`
		} `json:"summary"`
		Routes []struct {
			Route   string `json:"route"`
			Records int    `json:"records"`
		} `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, "completed", result.Summary.Status)
	assert.Equal(t, 4, result.Summary.InputRows)
	assert.Equal(t, 6, result.Summary.SeparatorRows)
	assert.Equal(t, 8, result.Summary.OutputRows)
	require.Len(t, result.Routes, 2)
	assert.Equal(t, "X", result.Routes[0].Route)
	assert.Equal(t, 1, result.Routes[0].Records)
	assert.Equal(t, "8", rec.Header().Get(HeaderOutputRows))
}

func TestCleanHandler_Settings(t *testing.T) {
	f := newCleanFixture(t, 1<<20)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/clean/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Pipeline config.PipelineConfig `json:"pipeline"`
		Output   map[string]interface{} `json:"output"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, []string{"X", "Y"}, body.Pipeline.CategoryOrder)
	assert.Equal(t, 1, body.Pipeline.SeparatorSize)
	assert.Equal(t, "ROUTES", body.Output["prefix"])
	assert.NotContains(t, body.Output, "dir")
}
