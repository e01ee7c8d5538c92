package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/counseling-api/internal/service"
	"github.com/noah-isme/counseling-api/pkg/response"
)

// CounselorHandler exposes the counselor directory.
type CounselorHandler struct {
	service *service.CounselorService
}

// NewCounselorHandler constructs handler.
func NewCounselorHandler(svc *service.CounselorService) *CounselorHandler {
	return &CounselorHandler{service: svc}
}

// List godoc
// @Summary List counselors
// @Tags Counselors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /counselors [get]
func (h *CounselorHandler) List(c *gin.Context) {
	counselors, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counselors, nil)
}
