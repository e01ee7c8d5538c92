package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/internal/service"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/response"
)

// AvailabilityHandler manages counselor schedule endpoints.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// List godoc
// @Summary List availability windows
// @Tags Counselor Schedules
// @Produce json
// @Param counselorId query string false "Filter by counselor"
// @Param dayOfWeek query string false "Filter by day"
// @Param activeOnly query bool false "Only active windows"
// @Success 200 {object} response.Envelope
// @Router /counselor-schedules [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	filter := models.AvailabilityFilter{
		CounselorID: c.Query("counselorId"),
		DayOfWeek:   strings.ToUpper(c.Query("dayOfWeek")),
		ActiveOnly:  c.Query("activeOnly") == "true",
	}

	windows, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// Create godoc
// @Summary Create an availability window
// @Tags Counselor Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateAvailabilityRequest true "Window payload"
// @Success 201 {object} response.Envelope
// @Router /counselor-schedules [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req service.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	window, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, window)
}

// Update godoc
// @Summary Update an availability window
// @Tags Counselor Schedules
// @Accept json
// @Produce json
// @Param id path string true "Window ID"
// @Param payload body service.UpdateAvailabilityRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Router /counselor-schedules/{id} [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req service.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	window, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Delete godoc
// @Summary Delete an availability window
// @Tags Counselor Schedules
// @Produce json
// @Param id path string true "Window ID"
// @Success 204
// @Router /counselor-schedules/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
