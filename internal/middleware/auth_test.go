package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	iauth "github.com/campusplacements/portal/internal/auth"
	"github.com/campusplacements/portal/internal/models"
)

func openMiddlewareTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newAuthRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "topsecret", Issuer: "portal"})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", Auth(jwt, db), func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	router.GET("/admin", Auth(jwt, db), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, jwt
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	user := models.User{
		Username:          "u-" + string(role),
		Email:             string(role) + "@campus.edu",
		Password:          "hash",
		Role:              role,
		VerificationState: models.VerificationVerified,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestAuthRejectsMissingAndMalformedHeader(t *testing.T) {
	db := openMiddlewareTestDB(t)
	router, _ := newAuthRouter(t, db)

	for _, header := range []string{"", "Token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	db := openMiddlewareTestDB(t)
	router, _ := newAuthRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestAuthRejectsTokenForDeletedUser(t *testing.T) {
	db := openMiddlewareTestDB(t)
	router, jwt := newAuthRouter(t, db)

	user := seedUser(t, db, models.RoleStudent)
	token, err := jwt.GenerateAccessToken(user.ID, user.Role)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "AUTH_USER_NOT_FOUND")
	require.NotContains(t, rec.Body.String(), "AUTH_INVALID_TOKEN")
}

func TestAuthResolvesUser(t *testing.T) {
	db := openMiddlewareTestDB(t)
	router, jwt := newAuthRouter(t, db)

	user := seedUser(t, db, models.RoleStudent)
	token, err := jwt.GenerateAccessToken(user.ID, user.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), user.Email)
}

func TestRequireAdmin(t *testing.T) {
	db := openMiddlewareTestDB(t)
	router, jwt := newAuthRouter(t, db)

	student := seedUser(t, db, models.RoleStudent)
	admin := seedUser(t, db, models.RoleAdmin)

	studentToken, err := jwt.GenerateAccessToken(student.ID, student.Role)
	require.NoError(t, err)
	adminToken, err := jwt.GenerateAccessToken(admin.ID, admin.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "ADMIN_ONLY")

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
