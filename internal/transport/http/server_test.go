package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s38cli/internal/config"
	"s38cli/internal/dataprocessing"
	apperrors "s38cli/internal/errors"
	"s38cli/internal/shared/testutil"
	"s38cli/pkg/contracts/domain"
)

type staticProvider struct {
	summary dataprocessing.RunSummary
}

func (p staticProvider) Snapshot() dataprocessing.RunSummary { return p.summary.Clone() }

func sampleSummary() dataprocessing.RunSummary {
	s := dataprocessing.NewRunSummary("run-42", domain.VariantBasic)
	s.Add(domain.FileResult{
		Records: make([]domain.ParsedQuoteRecord, 3),
		Diagnostics: []domain.DiagnosticRecord{
			{LineNo: 2, Reason: domain.Reject(domain.ReasonLineTooShort)},
			{LineNo: 5, Reason: domain.Reject(domain.ReasonCloseUnparseable)},
			{LineNo: 6, Reason: domain.Reject(domain.ReasonCloseUnparseable)},
		},
		DataLines: 6,
	})
	s.Done = true
	return s
}

func newTestServer(t *testing.T, provider SummaryProvider, prom http.Handler) *Server {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewServer(provider, prom, logger)
}

func TestServer_Routes(t *testing.T) {
	prom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "s38_files_processed_total 1")
	})
	srv := newTestServer(t, staticProvider{summary: sampleSummary()}, prom)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name:       "health",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp HealthResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "ok", resp.Status)
				assert.Equal(t, config.AppVersion, resp.Version)
				assert.True(t, resp.RunDone)
			},
		},
		{
			name:       "metrics",
			method:     http.MethodGet,
			path:       "/metrics",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "s38_files_processed_total")
			},
		},
		{
			name:       "summary",
			method:     http.MethodGet,
			path:       "/api/summary",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp SummaryResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "run-42", resp.RunID)
				assert.Equal(t, 3, resp.Accepted)
				assert.Equal(t, 3, resp.Rejected)
				assert.InDelta(t, 0.5, resp.RejectRatio, 1e-9)
				require.Len(t, resp.TopReasons, 2)
				assert.Equal(t, domain.ReasonCloseUnparseable, resp.TopReasons[0].Code)
			},
		},
		{
			name:       "summary limited",
			method:     http.MethodGet,
			path:       "/api/summary?top=1",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp SummaryResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Len(t, resp.TopReasons, 1)
			},
		},
		{
			name:       "summary bad top",
			method:     http.MethodGet,
			path:       "/api/summary?top=x",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body []byte) {
				var resp apperrors.ErrorResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "INVALID_PARAMETER", resp.Error.ErrorCode)
			},
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong method",
			method:     http.MethodPost,
			path:       "/health",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.check != nil {
				tt.check(t, w.Body.Bytes())
			}
		})
	}
}

func TestServer_WithoutProviderOrMetrics(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := newTestServer(t, staticProvider{summary: sampleSummary()}, nil)
	require.NoError(t, srv.Start(config.ServerConfig{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}))

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

func TestServer_StartBadAddr(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	err := srv.Start(config.ServerConfig{Addr: "256.0.0.1:bad"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.Empty(t, srv.Addr())
}
