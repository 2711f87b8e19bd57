package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlstage/mlstage/internal/api/middleware"
	"github.com/mlstage/mlstage/internal/domain"
	"github.com/mlstage/mlstage/internal/drift"
	"github.com/mlstage/mlstage/internal/logger"
	"github.com/mlstage/mlstage/internal/runner"
	"github.com/mlstage/mlstage/internal/storage"
	"github.com/mlstage/mlstage/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	log := logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})

	st, err := store.New(nil, log)
	require.NoError(t, err)

	localStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	detector := drift.NewDetector(0)
	jobRunner := runner.New(st, detector, log, runner.Config{
		MinDelay: time.Millisecond,
		MaxDelay: 5 * time.Millisecond,
		Seed:     1,
	})
	t.Cleanup(jobRunner.Shutdown)

	router := SetupRouter(Deps{
		Store:    st,
		Runner:   jobRunner,
		Storage:  localStorage,
		Detector: detector,
		Log:      log,
		CORS:     middleware.CORSConfig{AllowAllOrigins: true},
		Mode:     "test",
	})
	return router, st
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestProjectCRUD(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"name":        "demo",
		"description": "test project",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var p domain.Project
	decode(t, w, &p)
	require.NotEmpty(t, p.ID)
	assert.Equal(t, domain.EnvironmentDev, p.Environment)
	assert.Equal(t, domain.ProjectStatusActive, p.Status)

	w = doJSON(t, router, http.MethodGet, "/api/v1/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/projects/"+p.ID, map[string]interface{}{
		"description": "updated",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.Project
	decode(t, w, &updated)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, "demo", updated.Name)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectCreateValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"description": "missing name",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMissingProjectIsLenient(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/projects/ghost", map[string]interface{}{
		"name": "renamed",
	})
	assert.Equal(t, http.StatusOK, w.Code, "lenient update must not 404")

	w = doJSON(t, router, http.MethodDelete, "/api/v1/projects/ghost", nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "lenient delete must not 404")
}

func TestIngestionJobRunToCompletion(t *testing.T) {
	router, st := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/ingestion-jobs", map[string]interface{}{
		"project_id": "p1",
		"name":       "import",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var j domain.IngestionJob
	decode(t, w, &j)
	assert.Equal(t, domain.JobStatusCreated, j.Status)

	w = doJSON(t, router, http.MethodPost, "/api/v1/ingestion-jobs/"+j.ID+"/run", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, _ := st.GetIngestionJob(j.ID)
		if got.Status == domain.JobStatusCompleted {
			require.NotNil(t, got.OutputShape)
			assert.Greater(t, got.OutputShape.Rows, 0)
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("job did not complete")
}

func TestRunMissingJobReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/ingestion-jobs/ghost/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestModelPromoteAndPredict(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/models", map[string]interface{}{
		"project_id": "p1",
		"name":       "clf",
		"version":    "1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var m domain.RegistryModel
	decode(t, w, &m)
	assert.Equal(t, domain.StageStaging, m.Stage)

	w = doJSON(t, router, http.MethodPost, "/api/v1/models/"+m.ID+"/promote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var promoted domain.RegistryModel
	decode(t, w, &promoted)
	assert.Equal(t, domain.StageProduction, promoted.Stage)

	// A second promote conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/v1/models/"+m.ID+"/promote", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/models/"+m.ID+"/predict", map[string]interface{}{
		"features": []float64{1, 2, 3},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var pred map[string]interface{}
	decode(t, w, &pred)
	assert.Contains(t, pred, "prediction")
	assert.Contains(t, pred, "confidence")
	assert.Contains(t, pred, "latency_ms")

	w = doJSON(t, router, http.MethodPost, "/api/v1/models/"+m.ID+"/batch-predict", map[string]interface{}{
		"instances": [][]float64{{1, 2}, {3, 4}, {5, 6}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var batch struct {
		Predictions []domain.Prediction `json:"predictions"`
		Count       int                 `json:"count"`
	}
	decode(t, w, &batch)
	assert.Equal(t, 3, batch.Count)
	assert.Len(t, batch.Predictions, 3)
}

func TestModelVersions(t *testing.T) {
	router, _ := newTestRouter(t)

	var first domain.RegistryModel
	w := doJSON(t, router, http.MethodPost, "/api/v1/models", map[string]interface{}{
		"project_id": "p1", "name": "clf", "version": "1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &first)

	doJSON(t, router, http.MethodPost, "/api/v1/models", map[string]interface{}{
		"project_id": "p1", "name": "clf", "version": "2",
	})
	doJSON(t, router, http.MethodPost, "/api/v1/models", map[string]interface{}{
		"project_id": "p1", "name": "unrelated", "version": "1",
	})

	w = doJSON(t, router, http.MethodGet, "/api/v1/models/"+first.ID+"/versions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var versions []domain.RegistryModel
	decode(t, w, &versions)
	assert.Len(t, versions, 2)
}

func TestModelServingMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	var m domain.RegistryModel
	w := doJSON(t, router, http.MethodPost, "/api/v1/models", map[string]interface{}{
		"project_id": "p1", "name": "clf", "version": "1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &m)

	w = doJSON(t, router, http.MethodGet, "/api/v1/models/"+m.ID+"/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var metrics struct {
		InferencesTotal    int     `json:"inferences_total"`
		InferenceLatencyMs float64 `json:"inference_latency_ms"`
		ModelErrorsTotal   int     `json:"model_errors_total"`
		ModelName          string  `json:"model_name"`
		ModelVersion       string  `json:"model_version"`
	}
	decode(t, w, &metrics)
	assert.Greater(t, metrics.InferencesTotal, 0)
	assert.Greater(t, metrics.InferenceLatencyMs, 0.0)
	assert.GreaterOrEqual(t, metrics.ModelErrorsTotal, 0)
	assert.Equal(t, "clf", metrics.ModelName)
	assert.Equal(t, "1", metrics.ModelVersion)

	w = doJSON(t, router, http.MethodGet, "/api/v1/models/ghost/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadCSV(t *testing.T, router http.Handler, projectID, name, content string) domain.IngestionJob {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("project_id", projectID))
	require.NoError(t, mw.WriteField("name", name))
	fw, err := mw.CreateFormFile("file", name+".csv")
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var job domain.IngestionJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	return job
}

func TestDatasetUpload(t *testing.T) {
	router, _ := newTestRouter(t)

	job := uploadCSV(t, router, "p1", "churn", "x,y\n1,2\n3,4\n5,6\n")

	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	require.NotNil(t, job.OutputShape)
	assert.Equal(t, 3, job.OutputShape.Rows)
	assert.Equal(t, 2, job.OutputShape.Columns)
	assert.Equal(t, []string{"x", "y"}, job.OutputColumns)
	assert.NotEmpty(t, job.StorageKey)
	require.NotNil(t, job.File)
	assert.Equal(t, "churn.csv", job.File.Name)
}

func TestDatasetUploadRequiresProject(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "data.csv")
	io.Copy(fw, strings.NewReader("a\n1\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEvaluate(t *testing.T) {
	router, _ := newTestRouter(t)

	baselineCSV := "f1,f2\n"
	referenceCSV := "f1,f2\n"
	for i := 0; i < 100; i++ {
		baselineCSV += "1.0,2.0\n"
		referenceCSV += "100.0,2.0\n" // f1 shifted far, f2 unchanged
	}

	baseline := uploadCSV(t, router, "p1", "baseline", baselineCSV)
	reference := uploadCSV(t, router, "p1", "reference", referenceCSV)

	w := doJSON(t, router, http.MethodPost, "/api/v1/reports", map[string]interface{}{
		"model_id":         "m1",
		"baseline_job_id":  baseline.ID,
		"reference_job_id": reference.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var report domain.ReportConfiguration
	decode(t, w, &report)

	w = doJSON(t, router, http.MethodPost, "/api/v1/reports/"+report.ID+"/evaluate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Features  []string              `json:"features"`
		DataDrift drift.DataDriftResult `json:"data_drift"`
		PSI       map[string]float64    `json:"psi"`
		CheckedAt string                `json:"checked_at"`
	}
	decode(t, w, &result)
	assert.ElementsMatch(t, []string{"f1", "f2"}, result.Features)
	assert.True(t, result.DataDrift.Detected)
	assert.Contains(t, result.DataDrift.AffectedFeatures, "f1")
	assert.NotEmpty(t, result.CheckedAt)
}

func TestReportEvaluateWithoutUploads(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/reports", map[string]interface{}{
		"model_id":         "m1",
		"baseline_job_id":  "ghost-a",
		"reference_job_id": "ghost-b",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var report domain.ReportConfiguration
	decode(t, w, &report)

	w = doJSON(t, router, http.MethodPost, "/api/v1/reports/"+report.ID+"/evaluate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]interface{}{"name": "a"})
	doJSON(t, router, http.MethodPost, "/api/v1/projects", map[string]interface{}{"name": "b"})

	w := doJSON(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]int
	decode(t, w, &stats)
	assert.Equal(t, 2, stats["projects"])
	assert.Equal(t, 0, stats["pipeline_jobs"])
}

func TestEventsWebSocketStream(t *testing.T) {
	router, st := newTestRouter(t)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Give the handler a moment to subscribe before mutating.
	time.Sleep(50 * time.Millisecond)
	p := st.CreateProject(domain.Project{Name: "watched"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev store.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, store.KindProject, ev.Kind)
	assert.Equal(t, store.OpCreated, ev.Op)
	assert.Equal(t, p.ID, ev.ID)
}
