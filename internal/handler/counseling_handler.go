package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/internal/service"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/response"
)

// CounselingHandler manages slot and booking endpoints.
type CounselingHandler struct {
	scheduling *service.SchedulingService
	exports    *service.ExportService
}

// NewCounselingHandler constructs handler.
func NewCounselingHandler(scheduling *service.SchedulingService, exports *service.ExportService) *CounselingHandler {
	return &CounselingHandler{scheduling: scheduling, exports: exports}
}

// AvailableSlots godoc
// @Summary List bookable slots for a counselor on a date
// @Tags Counseling
// @Produce json
// @Param counselorId query string true "Counselor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /counseling/available-slots [get]
func (h *CounselingHandler) AvailableSlots(c *gin.Context) {
	slots, err := h.scheduling.ListAvailableSlots(c.Request.Context(), c.Query("counselorId"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Request godoc
// @Summary Reserve a counseling slot
// @Tags Counseling
// @Accept json
// @Produce json
// @Param payload body service.RequestSessionRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /counseling/request [post]
func (h *CounselingHandler) Request(c *gin.Context) {
	var req service.RequestSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req.RequesterID = claims.UserID

	session, err := h.scheduling.RequestSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Approve godoc
// @Summary Approve a pending session
// @Tags Counseling
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /counseling/{id}/approve [put]
func (h *CounselingHandler) Approve(c *gin.Context) {
	h.transition(c, models.ActionApprove, "")
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject godoc
// @Summary Reject a pending session with a reason
// @Tags Counseling
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body rejectRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /counseling/{id}/reject [put]
func (h *CounselingHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	h.transition(c, models.ActionReject, req.Reason)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus godoc
// @Summary Complete or cancel an approved session
// @Tags Counseling
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body updateStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /counseling/{id}/status [put]
func (h *CounselingHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var action models.TransitionAction
	switch models.SessionStatus(req.Status) {
	case models.StatusCompleted:
		action = models.ActionComplete
	case models.StatusCancelled:
		action = models.ActionCancel
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be completed or cancelled"))
		return
	}
	h.transition(c, action, "")
}

func (h *CounselingHandler) transition(c *gin.Context, action models.TransitionAction, reason string) {
	session, err := h.scheduling.TransitionSession(c.Request.Context(), c.Param("id"), action, claimsFromContext(c), reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// List godoc
// @Summary List sessions with aggregate stats
// @Tags Counseling
// @Produce json
// @Param counselorId query string false "Filter by counselor"
// @Param requesterId query string false "Filter by requester"
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Start of date range"
// @Param dateTo query string false "End of date range"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /counseling [get]
func (h *CounselingHandler) List(c *gin.Context) {
	filter := h.sessionFilter(c)

	result, pagination, err := h.scheduling.ListSessions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, pagination)
}

// Get godoc
// @Summary Fetch one session
// @Tags Counseling
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /counseling/{id} [get]
func (h *CounselingHandler) Get(c *gin.Context) {
	session, err := h.scheduling.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	// Students may only see sessions they requested.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent && session.RequesterID != claims.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "session not found"))
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Export godoc
// @Summary Export session history as CSV or PDF
// @Tags Counseling
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /counseling/export [get]
func (h *CounselingHandler) Export(c *gin.Context) {
	filter := h.sessionFilter(c)
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.exports.Sessions(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sessions.%s", format))
	c.Data(http.StatusOK, contentType, payload)
}

func (h *CounselingHandler) sessionFilter(c *gin.Context) models.SessionFilter {
	filter := models.SessionFilter{
		CounselorID: c.Query("counselorId"),
		RequesterID: c.Query("requesterId"),
		Status:      c.Query("status"),
		DateFrom:    c.Query("dateFrom"),
		DateTo:      c.Query("dateTo"),
		SortBy:      c.Query("sort"),
		SortOrder:   c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	// Students only ever see their own bookings.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		filter.RequesterID = claims.UserID
	}
	return filter
}
