package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusplacements/portal/internal/services"
	"github.com/campusplacements/portal/pkg/response"
)

// PlacementHandler serves placement record CRUD.
type PlacementHandler struct {
	placements *services.PlacementService
}

func NewPlacementHandler(placements *services.PlacementService) *PlacementHandler {
	return &PlacementHandler{placements: placements}
}

type placementRequest struct {
	Name    string  `json:"name"`
	Batch   int     `json:"batch"`
	Branch  string  `json:"branch"`
	Company string  `json:"company"`
	Package float64 `json:"package"`
	CPI     float64 `json:"cpi"`
	Gender  string  `json:"gender"`
}

func (r placementRequest) toInput() services.PlacementInput {
	return services.PlacementInput{
		Name:    r.Name,
		Batch:   r.Batch,
		Branch:  r.Branch,
		Company: r.Company,
		Package: r.Package,
		CPI:     r.CPI,
		Gender:  r.Gender,
	}
}

// POST /api/placements/add
func (h *PlacementHandler) Create(c *gin.Context) {
	// Field presence is the service's concern so the message matches
	// update as well.
	var req placementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.placements.Create(requestContext(c), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, record)
}

// GET /api/placements
func (h *PlacementHandler) ListPublic(c *gin.Context) {
	summaries, err := h.placements.ListSummaries(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summaries)
}

// GET /api/placements/all
func (h *PlacementHandler) ListAll(c *gin.Context) {
	records, err := h.placements.ListAll(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

// PUT /api/placements/:id
func (h *PlacementHandler) Update(c *gin.Context) {
	var req placementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.placements.Update(requestContext(c), c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// DELETE /api/placements/:id
func (h *PlacementHandler) Delete(c *gin.Context) {
	if err := h.placements.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"msg": "Placement record deleted successfully."})
}
