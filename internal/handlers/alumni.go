package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusplacements/portal/internal/services"
	"github.com/campusplacements/portal/pkg/response"
)

// AlumniHandler serves the public alumni directory.
type AlumniHandler struct {
	alumni *services.AlumniService
}

func NewAlumniHandler(alumni *services.AlumniService) *AlumniHandler {
	return &AlumniHandler{alumni: alumni}
}

// GET /api/alumni
func (h *AlumniHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	result, err := h.alumni.List(requestContext(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Data, &response.Meta{
		Page:       result.Page,
		PerPage:    result.Limit,
		Total:      result.TotalAlumni,
		TotalPages: result.TotalPages,
	})
}

// GET /api/alumni/admin-dashboard
func (h *AlumniHandler) AdminDashboard(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"msg": "Welcome, Admin! This is the protected dashboard."})
}
