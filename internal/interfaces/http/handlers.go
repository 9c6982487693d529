package http

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claimdesk/internal/application/desk"
	"github.com/garyjia/claimdesk/internal/application/service"
	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	desk    *desk.Desk
	claims  service.ClaimService
	exports service.ExportService
	health  HealthFunc
	logger  Logger
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	d *desk.Desk,
	claims service.ClaimService,
	exports service.ExportService,
	health HealthFunc,
	logger Logger,
) *Handlers {
	return &Handlers{
		desk:    d,
		claims:  claims,
		exports: exports,
		health:  health,
		logger:  logger,
		now:     time.Now,
	}
}

// Response represents a standard JSON response. Message carries the desk's
// user-facing message when a desk handler ran.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// UploadDocumentRequest is a picker result; an empty path means the picker was cancelled
type UploadDocumentRequest struct {
	Path string `json:"path"`
}

// FormRequest carries the typed submission fields
type FormRequest struct {
	LecturerName string `json:"lecturer_name"`
	HoursWorked  string `json:"hours_worked"`
	HourlyRate   string `json:"hourly_rate"`
	Notes        string `json:"notes"`
	DocumentPath string `json:"document_path"`
}

// SelectRequest selects a list position; -1 clears the selection
type SelectRequest struct {
	Position *int `json:"position" binding:"required"`
}

// ListClaimsRequest represents query parameters for listing claims
type ListClaimsRequest struct {
	Status string `form:"status"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.health != nil {
		healthy, details := h.health(c.Request.Context())
		response.Components = details
		if !healthy {
			response.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, Response{
		Success: code == http.StatusOK,
		Data:    response,
	})
}

// UploadDocument handles POST /api/v1/documents
func (h *Handlers) UploadDocument(c *gin.Context) {
	var req UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	out := h.desk.UploadDocument(c.Request.Context(), req.Path)
	h.respondOutcome(c, http.StatusOK, out, h.desk.Form())
}

// SubmitClaim handles POST /api/v1/claims. A document_path in the body goes
// through the upload check first; otherwise the last uploaded document is used.
func (h *Handlers) SubmitClaim(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	if req.DocumentPath != "" {
		if out := h.desk.UploadDocument(ctx, req.DocumentPath); !out.OK() {
			h.respondOutcome(c, http.StatusOK, out, nil)
			return
		}
	}

	h.desk.SetForm(req.toForm())
	out := h.desk.Submit(ctx)

	var data interface{}
	if out.Claim != nil {
		data = out.Claim
	}
	h.respondOutcome(c, http.StatusCreated, out, data)
}

// UpdateForm handles PUT /api/v1/form; the document field is left alone
func (h *Handlers) UpdateForm(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	h.desk.SetForm(req.toForm())
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.desk.Form(),
	})
}

// ListClaims handles GET /api/v1/claims
func (h *Handlers) ListClaims(c *gin.Context) {
	var req ListClaimsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	var filter entity.ClaimFilter
	if req.Status != "" {
		state, err := workflow.ParseState(req.Status)
		if err != nil {
			h.badRequest(c, err.Error(), err)
			return
		}
		filter.Status = state
	}

	claims, err := h.claims.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list claims", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve claims",
		})
		return
	}

	if claims == nil {
		claims = []*entity.Claim{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    claims,
	})
}

// ClaimSummary handles GET /api/v1/claims/summary
func (h *Handlers) ClaimSummary(c *gin.Context) {
	summary, err := h.claims.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to summarize claims", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to summarize claims",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    summary,
	})
}

// ExportClaims handles GET /api/v1/claims/export
func (h *Handlers) ExportClaims(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exports.Export(c.Request.Context(), &buf); err != nil {
		h.logger.Error("Export failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "export failed: " + err.Error(),
		})
		return
	}

	name := service.ExportFileName(h.now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetClaim handles GET /api/v1/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id := c.Param("id")

	claim, err := h.claims.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get claim", "id", id, "error", err)
		c.JSON(statusFor(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    claim,
	})
}

// GetDesk handles GET /api/v1/desk
func (h *Handlers) GetDesk(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.desk.Snapshot(),
	})
}

// Select handles PUT /api/v1/selection
func (h *Handlers) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "position is required", err)
		return
	}

	if err := h.desk.Select(c.Request.Context(), *req.Position); err != nil {
		h.logger.Error("Failed to select claim", "position", *req.Position, "error", err)
		c.JSON(statusFor(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.GetSelection(c)
}

// GetSelection handles GET /api/v1/selection
func (h *Handlers) GetSelection(c *gin.Context) {
	snap := h.desk.Snapshot()
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"selected":         snap.Selected,
			"detail":           snap.Detail,
			"status_indicator": snap.Indicator,
		},
	})
}

// ApproveSelected handles POST /api/v1/selection/approve
func (h *Handlers) ApproveSelected(c *gin.Context) {
	out := h.desk.Approve(c.Request.Context())
	h.respondOutcome(c, http.StatusOK, out, h.desk.Snapshot().Detail)
}

// RejectSelected handles POST /api/v1/selection/reject
func (h *Handlers) RejectSelected(c *gin.Context) {
	out := h.desk.Reject(c.Request.Context())
	h.respondOutcome(c, http.StatusOK, out, h.desk.Snapshot().Detail)
}

// respondOutcome writes a desk outcome; failures keep the desk message and map to a status code
func (h *Handlers) respondOutcome(c *gin.Context, okStatus int, out desk.Outcome, data interface{}) {
	if !out.OK() {
		c.JSON(statusFor(out.Err), Response{
			Success: false,
			Error:   out.Err.Error(),
			Message: out.Message,
		})
		return
	}

	// A silent no-op is not a creation
	if out.Message == "" {
		okStatus = http.StatusOK
	}

	c.JSON(okStatus, Response{
		Success: true,
		Data:    data,
		Message: out.Message,
	})
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error("Invalid request", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrClaimNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed):
		return http.StatusConflict
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidNumber),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUnsupportedDocument),
		errors.Is(err, workflow.ErrInvalidState),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (r FormRequest) toForm() desk.Form {
	return desk.Form{
		LecturerName: r.LecturerName,
		HoursWorked:  r.HoursWorked,
		HourlyRate:   r.HourlyRate,
		Notes:        r.Notes,
	}
}
