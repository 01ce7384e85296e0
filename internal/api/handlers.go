package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/classifystack/drift-engine/internal/alerting"
	"github.com/classifystack/drift-engine/internal/models"
	"github.com/classifystack/drift-engine/internal/store"
)

// Service defines the operations the HTTP layer needs from the drift service.
type Service interface {
	RunAnalysis(ctx context.Context) (models.DriftReport, *models.Alert)
	ActiveAlerts(ctx context.Context, limit int) ([]models.Alert, error)
	ReportHistory(ctx context.Context, limit int) ([]models.DriftReport, error)
	ReportSummary(ctx context.Context, limit int) (alerting.Summary, error)
	ActionHistory(ctx context.Context, limit int) ([]models.Action, error)
	Acknowledge(ctx context.Context, reportID int64, actionType models.ActionType, details map[string]any, performedBy string) (models.Action, error)
}

// AcknowledgeRequest is the request body for acknowledging an alert.
type AcknowledgeRequest struct {
	ActionType  string         `json:"action_type" binding:"required"`
	Details     map[string]any `json:"details"`
	PerformedBy string         `json:"performed_by"`
}

// Handlers contains the HTTP handlers for the drift API.
type Handlers struct {
	logger  *slog.Logger
	service Service
}

// NewHandlers creates handlers backed by the given service.
func NewHandlers(logger *slog.Logger, service Service) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{logger: logger, service: service}
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunAnalysis handles POST /api/v1/drift/run. The run itself never fails;
// degraded outcomes are reported through the report status.
func (h *Handlers) RunAnalysis(c *gin.Context) {
	report, alert := h.service.RunAnalysis(c.Request.Context())

	response := gin.H{"report": report}
	if alert != nil {
		response["alert"] = alert
	}
	c.JSON(http.StatusOK, response)
}

// ListAlerts handles GET /api/v1/alerts.
func (h *Handlers) ListAlerts(c *gin.Context) {
	alerts, err := h.service.ActiveAlerts(c.Request.Context(), limitParam(c))
	if err != nil {
		h.logger.Error("list alerts failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// AcknowledgeAlert handles POST /api/v1/alerts/:id/acknowledge.
func (h *Handlers) AcknowledgeAlert(c *gin.Context) {
	reportID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actionType := models.ActionType(req.ActionType)
	if !actionType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action type: " + req.ActionType})
		return
	}

	action, err := h.service.Acknowledge(c.Request.Context(), reportID, actionType, req.Details, req.PerformedBy)
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		h.logger.Error("acknowledge failed", slog.Int64("report_id", reportID), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record action"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action})
}

// ListReports handles GET /api/v1/reports.
func (h *Handlers) ListReports(c *gin.Context) {
	reports, err := h.service.ReportHistory(c.Request.Context(), limitParam(c))
	if err != nil {
		h.logger.Error("list reports failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// ReportSummary handles GET /api/v1/reports/summary.
func (h *Handlers) ReportSummary(c *gin.Context) {
	summary, err := h.service.ReportSummary(c.Request.Context(), limitParam(c))
	if err != nil {
		h.logger.Error("report summary failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize reports"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListActions handles GET /api/v1/actions.
func (h *Handlers) ListActions(c *gin.Context) {
	actions, err := h.service.ActionHistory(c.Request.Context(), limitParam(c))
	if err != nil {
		h.logger.Error("list actions failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list actions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions, "count": len(actions)})
}

func limitParam(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
