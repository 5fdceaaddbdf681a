package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/pickups/pkg/batch"
	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/metrics"
)

const jobsCSV = `Pick-up Date,PU Time,PU Airport
2024-03-01,12:00,EWR
2024-03-01,08:00,JFK
2024-03-02,08:00,SFO
2024-03-01,09:00,LGA
`

func newTestHandler(t *testing.T, mutate func(*config.Config)) *Handler {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	h, err := NewHandler(cfg, batch.NewRunner(cfg, zerolog.Nop(), rec), reg, zerolog.Nop())
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func uploadRequest(t *testing.T, filename, body string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assignments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type assignmentsResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    batchView `json:"data"`
}

func TestCreateAssignments(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) { c.PoolSize = 1 })

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, uploadRequest(t, "jobs.csv", jobsCSV, map[string]string{"target_date": "2024-03-01"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp assignmentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "2024-03-01", resp.Data.TargetDate)
	assert.Equal(t, []assignmentView{
		{PickupDate: "2024-03-01", Location: "JFK", PickupTime: "08:00:00", Driver: "Driver 1"},
		{PickupDate: "2024-03-01", Location: "LGA", PickupTime: "09:00:00", Driver: "No Driver"},
		{PickupDate: "2024-03-01", Location: "EWR", PickupTime: "12:00:00", Driver: "Driver 1"},
	}, resp.Data.Assignments)
	assert.Equal(t, 2, resp.Data.Counts["Driver 1"])
	assert.Equal(t, 1, resp.Data.Unassigned)
	assert.NotEmpty(t, resp.Data.BatchID)

	// metrics are exposed after a batch
	rr = httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `pickups_jobs_total{outcome="assigned"} 2`)
}

func TestCreateAssignmentsRequestsAreIsolated(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) { c.PoolSize = 1 })

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.Mux.ServeHTTP(rr, uploadRequest(t, "jobs.csv", jobsCSV, map[string]string{"target_date": "2024-03-01"}))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp assignmentsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Driver 1", resp.Data.Assignments[0].Driver, "request %d sees a fresh tracker", i)
	}
}

func TestCreateAssignmentsErrors(t *testing.T) {
	h := newTestHandler(t, nil)

	cases := map[string]struct {
		req    *http.Request
		status int
	}{
		"missing date":   {uploadRequest(t, "jobs.csv", jobsCSV, nil), http.StatusBadRequest},
		"bad date":       {uploadRequest(t, "jobs.csv", jobsCSV, map[string]string{"target_date": "01/03/2024"}), http.StatusBadRequest},
		"bad strategy":   {uploadRequest(t, "jobs.csv", jobsCSV, map[string]string{"target_date": "2024-03-01", "strategy": "random"}), http.StatusBadRequest},
		"missing file":   {uploadRequest(t, "", "", map[string]string{"target_date": "2024-03-01"}), http.StatusBadRequest},
		"wrong format":   {uploadRequest(t, "jobs.pdf", jobsCSV, map[string]string{"target_date": "2024-03-01"}), http.StatusBadRequest},
		"missing column": {uploadRequest(t, "jobs.csv", "Pick-up Date,PU Airport\n", map[string]string{"target_date": "2024-03-01"}), http.StatusBadRequest},
		"malformed row":  {uploadRequest(t, "jobs.csv", "Pick-up Date,PU Time,PU Airport\n2024-03-01,,JFK\n", map[string]string{"target_date": "2024-03-01"}), http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Mux.ServeHTTP(rr, tc.req)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())

			var resp Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestCreateAssignmentsCountsRejectedUploads(t *testing.T) {
	h := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	body := "Pick-up Date,PU Time,PU Airport\n2024-03-01,25:99,JFK\n"
	h.Mux.ServeHTTP(rr, uploadRequest(t, "jobs.csv", body, map[string]string{"target_date": "2024-03-01"}))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), `pickups_batches_total{result="rejected"} 1`)
}

func TestCreateAssignmentsEmptyRoster(t *testing.T) {
	h := newTestHandler(t, func(c *config.Config) { c.PoolSize = 0 })

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, uploadRequest(t, "jobs.csv", jobsCSV, map[string]string{"target_date": "2024-03-01"}))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp assignmentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Data.EmptyRoster)
	assert.Equal(t, 3, resp.Data.Unassigned)
	assert.Empty(t, resp.Data.Counts)
}

func TestVisualize(t *testing.T) {
	h := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	body := `{"counts": {"Driver 1": 3, "Driver 2": 1}}`
	h.Mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/visualize", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), "Driver Counts")
	assert.Contains(t, rr.Body.String(), "Driver 2")
}

func TestVisualizeZeroCounts(t *testing.T) {
	h := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	body := `{"counts": {"Driver 1": 0}}`
	h.Mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/visualize", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), "Driver 1")
}

func TestVisualizeRejectsUntypedInput(t *testing.T) {
	h := newTestHandler(t, nil)

	for _, body := range []string{
		`{"counts": "__import__('os').system('true')"}`,
		`{"counts": {"Driver 1": -1}}`,
		`{"counts": {"": 2}}`,
		`{}`,
	} {
		rr := httptest.NewRecorder()
		h.Mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/visualize", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestHealthAndRecoverer(t *testing.T) {
	h := newTestHandler(t, nil)
	h.Mux.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rr.Body.String())

	rr = httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, cfg, http.NotFoundHandler(), zerolog.Nop()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
