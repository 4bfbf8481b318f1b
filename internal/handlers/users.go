package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusplacements/portal/internal/middleware"
	"github.com/campusplacements/portal/internal/models"
	"github.com/campusplacements/portal/internal/services"
	apperrors "github.com/campusplacements/portal/pkg/errors"
	"github.com/campusplacements/portal/pkg/response"
)

// UserHandler serves the profile workflow and admin student management.
type UserHandler struct {
	profiles *services.ProfileService
}

func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

type updateProfileRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=128"`
	RollNo     string  `json:"rollNo" validate:"required,max=32"`
	Department string  `json:"department" validate:"required,max=64"`
	CPI        float64 `json:"cpi" validate:"required,gte=0,lte=10"`
	Gender     string  `json:"gender" validate:"required,oneof=Male Female"`
}

// POST /api/users/update-profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	fields := models.ProfileFields{
		Name:       req.Name,
		RollNo:     req.RollNo,
		Department: req.Department,
		CPI:        req.CPI,
		Gender:     req.Gender,
	}
	if err := h.profiles.SubmitUpdate(requestContext(c), user.ID, fields); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"msg": "Profile update request submitted. Awaiting admin approval.",
	})
}

type approveProfileRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Action string `json:"action" validate:"required"`
}

// POST /api/users/approve-profile
func (h *UserHandler) ApproveProfile(c *gin.Context) {
	var req approveProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.profiles.Review(requestContext(c), req.Email, req.Action); err != nil {
		response.Error(c, err)
		return
	}

	msg := "Profile approved successfully."
	if strings.EqualFold(strings.TrimSpace(req.Action), services.ActionReject) {
		msg = "Profile rejected successfully."
	}
	response.Success(c, http.StatusOK, gin.H{"msg": msg})
}

// GET /api/users/pending-requests
func (h *UserHandler) PendingRequests(c *gin.Context) {
	reviews, err := h.profiles.ListPending(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reviews)
}

// GET /api/users/profile-status
func (h *UserHandler) ProfileStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	status, err := h.profiles.Status(requestContext(c), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// GET /api/users/get-approved-students
func (h *UserHandler) ApprovedStudents(c *gin.Context) {
	students, err := h.profiles.ApprovedStudents(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, students)
}

// GET /api/users/approved
func (h *UserHandler) ApprovedRecords(c *gin.Context) {
	records, err := h.profiles.ListApprovedRecords(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

type updateStudentRequest struct {
	Username *string `json:"username" validate:"omitempty,min=2,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// PUT /api/users/:id
func (h *UserHandler) UpdateStudent(c *gin.Context) {
	var req updateStudentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.profiles.UpdateStudent(requestContext(c), c.Param("id"), services.UpdateStudentInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *UserHandler) DeleteStudent(c *gin.Context) {
	if err := h.profiles.DeleteStudent(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"msg": "Student deleted successfully."})
}
