package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gearreport/internal/config"
	"gearreport/internal/models"
	"gearreport/internal/observability"
	"gearreport/internal/services"
	"gearreport/internal/stats"
	contextutils "gearreport/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AdminHandler handles moderation endpoints
type AdminHandler struct {
	submissionService services.SubmissionServiceInterface
	config            *config.Config
	logger            *observability.Logger
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(submissionService services.SubmissionServiceInterface, cfg *config.Config, logger *observability.Logger) *AdminHandler {
	return &AdminHandler{
		submissionService: submissionService,
		config:            cfg,
		logger:            logger,
	}
}

// GetSubmissionsPaginated handles GET /v1/admin/submissions
func (h *AdminHandler) GetSubmissionsPaginated(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_submissions_paginated")
	defer observability.FinishSpan(span, nil)

	page, pageSize := ParsePagination(c, 1, 20, 100)
	filters := ParseFilters(c, "status")

	status := filters["status"]
	if status != "" && !models.ValidStatus(models.SubmissionStatus(status)) {
		HandleValidationError(c, "status", status, "must be pending, approved, or rejected")
		return
	}

	span.SetAttributes(
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
		attribute.String("status_filter", status),
	)

	submissions, total, err := h.submissionService.GetSubmissionsPaginated(c.Request.Context(), page, pageSize, status)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	WritePaginated(c, "submissions", submissions, gin.H{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	}, nil)
}

// GetSubmission handles GET /v1/admin/submissions/:id
func (h *AdminHandler) GetSubmission(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_submission")
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")
	span.SetAttributes(observability.AttributeSubmissionID(id))

	sub, err := h.submissionService.GetSubmissionByID(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// UpdateStatusRequest is the status change request body
type UpdateStatusRequest struct {
	Status models.SubmissionStatus `json:"status" binding:"required"`
}

// UpdateSubmissionStatus handles PUT /v1/admin/submissions/:id/status.
// Transitions may repeat; the last write wins and there is no retry.
func (h *AdminHandler) UpdateSubmissionStatus(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "update_submission_status")
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			"",
			err,
		))
		return
	}
	if !models.ValidStatus(req.Status) {
		HandleValidationError(c, "status", req.Status, "must be pending, approved, or rejected")
		return
	}

	span.SetAttributes(
		observability.AttributeSubmissionID(id),
		observability.AttributeStatus(string(req.Status)),
	)

	sub, err := h.submissionService.UpdateSubmissionStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	moderatorID, _ := GetAdminIDFromSession(c)
	h.logger.Info(c.Request.Context(), "Submission status changed", map[string]interface{}{
		"submission_id": id,
		"status":        req.Status,
		"moderator_id":  moderatorID,
	})

	c.JSON(http.StatusOK, sub)
}

// AdjustEquipmentRequest carries the moderator count override. A null
// count clears the override and restores the bucket estimate.
type AdjustEquipmentRequest struct {
	AdminAdjustedCount *float64 `json:"admin_adjusted_count"`
}

// AdjustEquipmentCount handles PUT /v1/admin/submissions/:id/equipment/:index
func (h *AdminHandler) AdjustEquipmentCount(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "adjust_equipment_count")
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		HandleValidationError(c, "index", c.Param("index"), "must be a non-negative integer")
		return
	}

	var req AdjustEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			"",
			err,
		))
		return
	}
	if req.AdminAdjustedCount != nil && *req.AdminAdjustedCount < 0 {
		HandleValidationError(c, "admin_adjusted_count", *req.AdminAdjustedCount, "must not be negative")
		return
	}

	span.SetAttributes(
		observability.AttributeSubmissionID(id),
		attribute.Int("equipment.index", index),
	)

	sub, err := h.submissionService.AdjustEquipmentCount(c.Request.Context(), id, index, req.AdminAdjustedCount)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// DeleteSubmission handles DELETE /v1/admin/submissions/:id
func (h *AdminHandler) DeleteSubmission(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_submission")
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")
	span.SetAttributes(observability.AttributeSubmissionID(id))

	if err := h.submissionService.DeleteSubmission(c.Request.Context(), id); err != nil {
		HandleAppError(c, err)
		return
	}

	moderatorID, _ := GetAdminIDFromSession(c)
	h.logger.Info(c.Request.Context(), "Submission deleted", map[string]interface{}{
		"submission_id": id,
		"moderator_id":  moderatorID,
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetDashboard handles GET /v1/admin/dashboard: per-status counts plus the
// impact summary.
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_dashboard")
	defer observability.FinishSpan(span, nil)

	counts, err := h.submissionService.CountByStatus(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}

	approved, err := h.submissionService.GetApprovedSubmissions(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	impact := stats.CalculateImpactStats(approved)

	c.JSON(http.StatusOK, gin.H{
		"counts": gin.H{
			"pending":  counts[models.StatusPending],
			"approved": counts[models.StatusApproved],
			"rejected": counts[models.StatusRejected],
			"total":    counts[models.StatusPending] + counts[models.StatusApproved] + counts[models.StatusRejected],
		},
		"impact":  impact,
		"message": stats.ImpactMessage(impact),
	})
}

// AdminMapMarker is one submission position on the moderation map.
// Coordinates are raw, not jittered.
type AdminMapMarker struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Location  string                  `json:"location"`
	Latitude  float64                 `json:"latitude"`
	Longitude float64                 `json:"longitude"`
	Status    models.SubmissionStatus `json:"status"`
	CreatedAt string                  `json:"created_at"`
}

// GetMap handles GET /v1/admin/map: every submission with coordinates,
// regardless of status.
func (h *AdminHandler) GetMap(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_map")
	defer observability.FinishSpan(span, nil)

	// Large enough to cover the full working set in one page.
	submissions, _, err := h.submissionService.GetSubmissionsPaginated(c.Request.Context(), 1, 10000, "")
	if err != nil {
		HandleAppError(c, err)
		return
	}

	markers := make([]AdminMapMarker, 0, len(submissions))
	for i := range submissions {
		sub := &submissions[i]
		if !sub.HasCoordinates() {
			continue
		}
		markers = append(markers, AdminMapMarker{
			ID:        sub.ID,
			Name:      sub.Name,
			Location:  sub.Location,
			Latitude:  sub.Latitude.Float64,
			Longitude: sub.Longitude.Float64,
			Status:    sub.Status,
			CreatedAt: sub.CreatedAt.Format(time.RFC3339),
		})
	}

	span.SetAttributes(attribute.Int("map.markers", len(markers)))
	c.JSON(http.StatusOK, gin.H{"markers": markers})
}
