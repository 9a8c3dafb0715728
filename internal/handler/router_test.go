package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-roster-ledger/internal/repository"
	"github.com/noah-isme/sma-roster-ledger/internal/service"
	"github.com/noah-isme/sma-roster-ledger/pkg/export"
	"github.com/noah-isme/sma-roster-ledger/pkg/tabular"
)

type testServer struct {
	engine *gin.Engine
	store  *repository.MemoryBlobStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryBlobStore()
	snapshots := repository.NewSnapshotRepository(store, "school_db_v6", "رصيد سابق", nil)
	metrics := service.NewMetricsService()
	roster := service.NewRosterService(snapshots, nil, metrics, nil)
	require.NoError(t, roster.Load(context.Background()))

	normalizer := service.NewNameNormalizer(service.NormalizerConfig{HeaderMarkers: []string{"اسم"}})
	importer := service.NewImportService(roster, tabular.NewDecoder(tabular.Options{}), normalizer, metrics, service.ImportConfig{}, nil)
	attendance := service.NewAttendanceService(roster, nil, nil)
	behavior := service.NewBehaviorService(roster, service.DefaultVocabulary(), false, nil, nil)
	exports := service.NewExportService(roster, export.NewTSVExporter(), export.NewCSVExporter(), export.NewPDFExporter(""), nil)

	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1"), Handlers{
		Roster:  NewRosterHandler(roster),
		Import:  NewImportHandler(importer),
		Ledger:  NewLedgerHandler(attendance, behavior),
		Export:  NewExportHandler(exports),
		Metrics: NewMetricsHandler(metrics),
	})
	return &testServer{engine: engine, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestRoutesImportToggleRecordExport(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	w := srv.do(t, http.MethodPost, "/classes", map[string]string{"name": "7A"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.upload(t, "/classes/7A/import", "roster.csv", []byte("الاسم\nأحمد علي\nسعيد يوسف\n12345\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decodeEnvelope(t, w)["data"].(map[string]interface{})["report"].(map[string]interface{})
	assert.Equal(t, float64(2), report["added"])

	w = srv.do(t, http.MethodGet, "/classes/7A/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	students := decodeEnvelope(t, w)["data"].([]interface{})
	require.Len(t, students, 2)
	ahmad := students[0].(map[string]interface{})
	assert.Equal(t, "أحمد علي", ahmad["name"])
	id := ahmad["id"].(string)

	w = srv.do(t, http.MethodPost, "/classes/7A/students/"+id+"/attendance/toggle", map[string]string{"date": "2024-03-01"})
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 2; i++ {
		w = srv.do(t, http.MethodPost, "/classes/7A/students/"+id+"/behavior", map[string]string{"date": "2024-03-01", "type": "pos", "note": "مشاركة"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = srv.do(t, http.MethodGet, "/classes/7A/attendance?date=2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	roll := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), roll["absent"])

	w = srv.do(t, http.MethodGet, "/classes/7A/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "الاسم\tالنقاط\tأيام الغياب\nأحمد علي\t2\t1\nسعيد يوسف\t0\t0\n", w.Body.String())

	raw, err := srv.store.Get(ctx, "school_db_v6")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2024-03-01")
}

func TestRoutesErrors(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/classes/9Z/students", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/classes", map[string]string{"name": "7A"}).Code)
	assert.Equal(t, http.StatusConflict, srv.do(t, http.MethodPost, "/classes", map[string]string{"name": "7A"}).Code)

	w = srv.upload(t, "/classes/7A/import", "roster.docx", []byte("x"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = srv.upload(t, "/classes/7A/import", "roster.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodDelete, "/classes/7A", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = srv.do(t, http.MethodGet, "/classes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeEnvelope(t, w)["data"])
}

func TestRoutesHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health", nil).Code)

	w := srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")
}
