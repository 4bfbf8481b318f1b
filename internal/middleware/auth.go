package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/campusplacements/portal/internal/auth"
	"github.com/campusplacements/portal/internal/models"
	apperrors "github.com/campusplacements/portal/pkg/errors"
	"github.com/campusplacements/portal/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserKey   = "authUser"
	CtxUserIDKey = "userID"
)

// Auth enforces JWT authentication and resolves the token subject to a live
// user record, so tokens for deleted accounts stop working immediately.
func Auth(jwt *iauth.JWTService, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, apperrors.ErrMissingToken)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Error(c, apperrors.ErrTokenUserNotFound)
			} else {
				response.Error(c, apperrors.ErrInternalServer)
			}
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserKey, &user)
		c.Set(CtxUserIDKey, user.ID)

		c.Next()
	}
}

// RequireAdmin gates a route to admin users. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			response.Error(c, apperrors.ErrAdminOnly)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user resolved by Auth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
