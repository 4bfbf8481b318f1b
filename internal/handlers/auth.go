package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/campusplacements/portal/internal/auth"
	"github.com/campusplacements/portal/internal/services"
	"github.com/campusplacements/portal/pkg/metrics"
	"github.com/campusplacements/portal/pkg/response"
)

// AuthHandler manages the registration and login flows.
type AuthHandler struct {
	registration *services.RegistrationService
	jwt          *iauth.JWTService
}

func NewAuthHandler(registration *services.RegistrationService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{registration: registration, jwt: jwt}
}

type sendOTPRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.registration.SendOTP(requestContext(c), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"msg": "OTP sent to your email. Please verify to complete registration.",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.registration.VerifyOTP(requestContext(c), req.Email, req.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"msg":   "Email verified successfully. You are now registered.",
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.registration.Authenticate(requestContext(c), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}
