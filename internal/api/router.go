package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/campusplacements/portal/internal/app"
	iauth "github.com/campusplacements/portal/internal/auth"
	"github.com/campusplacements/portal/internal/handlers"
	"github.com/campusplacements/portal/internal/middleware"
	"github.com/campusplacements/portal/internal/services"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Registration *services.RegistrationService
	Profiles     *services.ProfileService
	Placements   *services.PlacementService
	Alumni       *services.AlumniService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svcs.Registration == nil || svcs.Profiles == nil || svcs.Placements == nil || svcs.Alumni == nil {
		return nil, fmt.Errorf("all domain services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(svcs.Registration, jwt)
	userHandler := handlers.NewUserHandler(svcs.Profiles)
	placementHandler := handlers.NewPlacementHandler(svcs.Placements)
	alumniHandler := handlers.NewAlumniHandler(svcs.Alumni)

	// Public auth routes, rate limited per IP to slow brute force and
	// OTP farming.
	auth := r.Group("/api/auth")
	if rl := cfg.Server.RateLimit; rl.Enabled {
		window := rl.Window
		if window <= 0 {
			window = time.Minute
		}
		auth.Use(middleware.RateLimit(middleware.NewMemoryRateStore(), rl.MaxRequests, window))
	}
	{
		auth.POST("/send-otp", authHandler.SendOTP)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/login", authHandler.Login)
	}

	requireAuth := middleware.Auth(jwt, db)
	requireAdmin := middleware.RequireAdmin()

	users := r.Group("/api/users")
	users.Use(requireAuth)
	{
		users.POST("/update-profile", userHandler.UpdateProfile)
		users.GET("/profile-status", userHandler.ProfileStatus)
		users.GET("/get-approved-students", userHandler.ApprovedStudents)

		users.POST("/approve-profile", requireAdmin, userHandler.ApproveProfile)
		users.GET("/pending-requests", requireAdmin, userHandler.PendingRequests)
		users.GET("/approved", requireAdmin, userHandler.ApprovedRecords)
		users.PUT("/:id", requireAdmin, userHandler.UpdateStudent)
		users.DELETE("/:id", requireAdmin, userHandler.DeleteStudent)
	}

	placements := r.Group("/api/placements")
	{
		placements.GET("", placementHandler.ListPublic)

		placements.GET("/all", requireAuth, requireAdmin, placementHandler.ListAll)
		placements.POST("/add", requireAuth, requireAdmin, placementHandler.Create)
		placements.PUT("/:id", requireAuth, requireAdmin, placementHandler.Update)
		placements.DELETE("/:id", requireAuth, requireAdmin, placementHandler.Delete)
	}

	alumni := r.Group("/api/alumni")
	{
		alumni.GET("", alumniHandler.List)
		alumni.GET("/admin-dashboard", requireAuth, requireAdmin, alumniHandler.AdminDashboard)
	}

	return r, nil
}
