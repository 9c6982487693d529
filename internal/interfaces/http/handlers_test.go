package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garyjia/claimdesk/internal/application/desk"
	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/application/service"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/garyjia/claimdesk/internal/infrastructure/export"
	"github.com/garyjia/claimdesk/internal/infrastructure/metrics"
	"github.com/garyjia/claimdesk/internal/infrastructure/persistence/memory"
	"github.com/garyjia/claimdesk/internal/infrastructure/storage"
	"github.com/garyjia/claimdesk/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockLogger is a mock implementation of Logger
type mockLogger struct {
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.errors = append(m.errors, msg)
}

type testEnv struct {
	server  *Server
	desk    *desk.Desk
	claims  service.ClaimService
	metrics *metrics.Collector
	logger  *mockLogger
	healthy bool
}

func setupTestServer(t *testing.T, policy workflow.Policy) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := &mockLogger{}
	store := memory.NewClaimStore(zap.NewNop())
	events := dispatcher.NewDispatcher()

	claims := service.NewClaimService(store, store, workflow.NewTransitioner(policy), events, logger)
	documents := service.NewDocumentService(storage.NewLocalDocumentInspector(zap.NewNop()), service.DocumentPolicy{}, events, logger)
	exports := service.NewExportService(store, export.NewClaimWorkbook(zap.NewNop()),
		storage.NewLocalExportStorage(t.TempDir(), zap.NewNop()), logger)

	money, err := utils.NewMoneyFormatter("USD", "en")
	require.NoError(t, err)

	d := desk.New(claims, documents, exports, events, money, logger)
	collector := metrics.NewCollector()
	collector.Attach(events)

	env := &testEnv{desk: d, claims: claims, metrics: collector, logger: logger, healthy: true}
	env.server = NewServer(DefaultServerConfig(), Dependencies{
		Desk:    d,
		Claims:  claims,
		Exports: exports,
		Metrics: collector,
		Health: func(ctx context.Context) (bool, interface{}) {
			return env.healthy, map[string]bool{"store": env.healthy}
		},
	}, logger)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func writeDocument(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func (e *testEnv) submit(t *testing.T, name string) {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/api/v1/claims", FormRequest{
		LecturerName: name,
		HoursWorked:  "10",
		HourlyRate:   "25.5",
		DocumentPath: writeDocument(t, "timesheet.pdf", 1024),
	})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Error)
}

func TestHealthCheck(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)

	rec, resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	env.healthy = false
	rec, resp = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, resp.Success)
}

func TestUploadDocument(t *testing.T) {
	tests := []struct {
		name        string
		path        func(t *testing.T) string
		wantStatus  int
		wantMessage string
		wantDoc     bool
	}{
		{
			name:        "accepted",
			path:        func(t *testing.T) string { return writeDocument(t, "a.pdf", 5242880) },
			wantStatus:  http.StatusOK,
			wantMessage: desk.MsgDocumentUploaded,
			wantDoc:     true,
		},
		{
			name:        "too large",
			path:        func(t *testing.T) string { return writeDocument(t, "big.pdf", 5242881) },
			wantStatus:  http.StatusBadRequest,
			wantMessage: desk.MsgFileTooLarge,
		},
		{
			name:        "unsupported extension",
			path:        func(t *testing.T) string { return writeDocument(t, "notes.txt", 10) },
			wantStatus:  http.StatusBadRequest,
			wantMessage: desk.MsgUnsupportedDocument,
		},
		{
			name:       "missing file",
			path:       func(t *testing.T) string { return filepath.Join(t.TempDir(), "gone.pdf") },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "cancelled picker",
			path:       func(t *testing.T) string { return "" },
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t, workflow.PolicyPermissive)
			path := tt.path(t)

			rec, resp := env.do(t, http.MethodPost, "/api/v1/documents", UploadDocumentRequest{Path: path})

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
			if tt.wantDoc {
				assert.Equal(t, path, env.desk.Form().DocumentPath)
			} else {
				assert.Empty(t, env.desk.Form().DocumentPath)
			}
		})
	}

	t.Run("missing file reports the stat error", func(t *testing.T) {
		env := setupTestServer(t, workflow.PolicyPermissive)
		_, resp := env.do(t, http.MethodPost, "/api/v1/documents",
			UploadDocumentRequest{Path: filepath.Join(t.TempDir(), "gone.pdf")})
		assert.True(t, strings.HasPrefix(resp.Message, "Error: "), resp.Message)
	})
}

func TestSubmitClaim(t *testing.T) {
	t.Run("valid submission", func(t *testing.T) {
		env := setupTestServer(t, workflow.PolicyPermissive)
		doc := writeDocument(t, "a.pdf", 100)

		rec, resp := env.do(t, http.MethodPost, "/api/v1/claims", FormRequest{
			LecturerName: "J. Smith",
			HoursWorked:  "10",
			HourlyRate:   "25.5",
			DocumentPath: doc,
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, desk.MsgClaimSubmitted, resp.Message)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, 255.0, data["total_amount"])
		assert.Equal(t, "PENDING", data["status"])
		assert.Equal(t, "Pending", env.desk.Snapshot().Indicator)
	})

	t.Run("uses last uploaded document", func(t *testing.T) {
		env := setupTestServer(t, workflow.PolicyPermissive)
		doc := writeDocument(t, "a.docx", 100)
		rec, _ := env.do(t, http.MethodPost, "/api/v1/documents", UploadDocumentRequest{Path: doc})
		require.Equal(t, http.StatusOK, rec.Code)

		rec, resp := env.do(t, http.MethodPost, "/api/v1/claims", FormRequest{
			LecturerName: "A. Lee", HoursWorked: "2", HourlyRate: "100",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, doc, resp.Data.(map[string]interface{})["document_path"])
	})

	t.Run("missing fields", func(t *testing.T) {
		env := setupTestServer(t, workflow.PolicyPermissive)

		rec, resp := env.do(t, http.MethodPost, "/api/v1/claims", FormRequest{
			LecturerName: "J. Smith", HoursWorked: "10", HourlyRate: "25.5",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, desk.MsgMissingFields, resp.Message)
		assert.Empty(t, env.desk.Snapshot().Claims)
	})

	t.Run("non-numeric hours", func(t *testing.T) {
		env := setupTestServer(t, workflow.PolicyPermissive)

		rec, resp := env.do(t, http.MethodPost, "/api/v1/claims", FormRequest{
			LecturerName: "J. Smith",
			HoursWorked:  "abc",
			HourlyRate:   "25.5",
			DocumentPath: writeDocument(t, "a.pdf", 100),
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.True(t, strings.HasPrefix(resp.Message, "Error: "), resp.Message)
		assert.Empty(t, env.desk.Snapshot().Claims)
	})

	t.Run("oversized document in body", func(t *testing.T) {
		env := setupTestServer(t, workflow.PolicyPermissive)

		rec, resp := env.do(t, http.MethodPost, "/api/v1/claims", FormRequest{
			LecturerName: "J. Smith",
			HoursWorked:  "10",
			HourlyRate:   "25.5",
			DocumentPath: writeDocument(t, "big.pdf", 5242881),
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, desk.MsgFileTooLarge, resp.Message)
		assert.Empty(t, env.desk.Snapshot().Claims)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := setupTestServer(t, workflow.PolicyPermissive)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/claims", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		env.server.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateForm_KeepsDocument(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)
	doc := writeDocument(t, "a.pdf", 10)
	env.do(t, http.MethodPost, "/api/v1/documents", UploadDocumentRequest{Path: doc})

	rec, _ := env.do(t, http.MethodPut, "/api/v1/form", FormRequest{
		LecturerName: "J. Smith",
		DocumentPath: "/elsewhere.pdf",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	form := env.desk.Form()
	assert.Equal(t, "J. Smith", form.LecturerName)
	assert.Equal(t, doc, form.DocumentPath)
}

func TestListClaims(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/claims", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)

	env.submit(t, "first")
	env.submit(t, "second")
	env.do(t, http.MethodPut, "/api/v1/selection", map[string]int{"position": 1})
	env.do(t, http.MethodPost, "/api/v1/selection/approve", nil)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/claims", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := resp.Data.([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].(map[string]interface{})["lecturer_name"])

	rec, resp = env.do(t, http.MethodGet, "/api/v1/claims?status=Approved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = resp.Data.([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].(map[string]interface{})["lecturer_name"])

	rec, _ = env.do(t, http.MethodGet, "/api/v1/claims?status=paid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimSummary(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)
	env.submit(t, "first")
	env.submit(t, "second")

	rec, resp := env.do(t, http.MethodGet, "/api/v1/claims/summary", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, 2.0, data["count"])
	assert.Equal(t, 510.0, data["total"])
}

func TestGetClaim(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)
	env.submit(t, "first")
	id := env.desk.Snapshot().Claims[0].ID

	rec, resp := env.do(t, http.MethodGet, "/api/v1/claims/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, resp.Data.(map[string]interface{})["id"])

	rec, resp = env.do(t, http.MethodGet, "/api/v1/claims/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestExportClaims(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)
	env.submit(t, "first")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims/export", nil)
	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestSelectionFlow(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)
	env.submit(t, "J. Smith")

	t.Run("approve without selection is a no-op", func(t *testing.T) {
		rec, resp := env.do(t, http.MethodPost, "/api/v1/selection/approve", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, resp.Message)
		assert.Equal(t, workflow.StatePending, env.desk.Snapshot().Claims[0].Status)
	})

	t.Run("select shows detail", func(t *testing.T) {
		rec, resp := env.do(t, http.MethodPut, "/api/v1/selection", map[string]int{"position": 0})
		require.Equal(t, http.StatusOK, rec.Code)
		detail := resp.Data.(map[string]interface{})["detail"].(map[string]interface{})
		assert.Equal(t, "J. Smith", detail["lecturer_name"])
		assert.Equal(t, "$ 255.00", detail["total"])
		assert.Equal(t, "Pending", detail["status"])
	})

	t.Run("approve updates bound status", func(t *testing.T) {
		rec, resp := env.do(t, http.MethodPost, "/api/v1/selection/approve", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, desk.MsgClaimApproved, resp.Message)

		_, resp = env.do(t, http.MethodGet, "/api/v1/selection", nil)
		detail := resp.Data.(map[string]interface{})["detail"].(map[string]interface{})
		assert.Equal(t, "Approved", detail["status"])
	})

	t.Run("reject", func(t *testing.T) {
		_, resp := env.do(t, http.MethodPost, "/api/v1/selection/reject", nil)
		assert.Equal(t, desk.MsgClaimRejected, resp.Message)
	})

	t.Run("clear selection", func(t *testing.T) {
		rec, resp := env.do(t, http.MethodPut, "/api/v1/selection", map[string]int{"position": -1})
		require.Equal(t, http.StatusOK, rec.Code)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(desk.NoSelection), data["selected"])
		assert.Nil(t, data["detail"])
	})

	t.Run("position is required", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPut, "/api/v1/selection", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStrictPolicyConflict(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyStrict)
	env.submit(t, "J. Smith")
	env.do(t, http.MethodPut, "/api/v1/selection", map[string]int{"position": 0})
	env.do(t, http.MethodPost, "/api/v1/selection/approve", nil)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/selection/reject", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Error: claim is already Approved", resp.Message)
}

func TestGetDesk(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)
	env.submit(t, "J. Smith")

	rec, resp := env.do(t, http.MethodGet, "/api/v1/desk", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["claims"], 1)
	assert.Equal(t, desk.MsgClaimSubmitted, data["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)
	env.submit(t, "J. Smith")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "claimdesk_claims_submitted_total 1")
	assert.Contains(t, body, `path="/api/v1/claims"`)
}

func TestLoggingMiddleware(t *testing.T) {
	env := setupTestServer(t, workflow.PolicyPermissive)

	env.do(t, http.MethodGet, "/health", nil)

	assert.Contains(t, env.logger.infos, "HTTP request")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(service.ErrClaimNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(&service.TransitionError{Err: workflow.ErrInvalidTransition}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&service.NumberError{Field: "hours worked", Input: "x"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(os.ErrNotExist))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestServer_Address(t *testing.T) {
	s := NewServer(ServerConfig{Host: "0.0.0.0", Port: 9090}, Dependencies{}, &mockLogger{})
	assert.Equal(t, "0.0.0.0:9090", s.Address())
}
