package router

import (
	"net/http"

	"pub_pos_backend/internal/handlers"
	"pub_pos_backend/internal/metrics"
	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/session"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Menu     *handlers.MenuHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Staff    *handlers.StaffHandler
	Settings *handlers.SettingsHandler
	Report   *handlers.ReportHandler
	Live     *handlers.LiveHandler
}

// Setup initializes the routing for the application. m may be nil to disable /metrics.
func Setup(engine *gin.Engine, sessions *session.Manager, m *metrics.Metrics, h Handlers) {
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	apiV1 := engine.Group("/api/v1")

	// Public routes: customer menu, carts, checkout, login.
	SetupPublicAuthRoutes(apiV1.Group("/auth"), h.Auth)
	SetupPublicMenuRoutes(apiV1, h.Menu)
	SetupCartRoutes(apiV1, h.Cart, sessions)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(sessions))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), h.Auth)
		SetupMenuAdminRoutes(authenticated, h.Menu)
		SetupOrderRoutes(authenticated, h.Order)
		SetupStaffRoutes(authenticated, h.Staff)
		SetupDashboardRoutes(authenticated, h.Report)
	}
	SetupSettingsRoutes(apiV1, authenticated, h.Settings)
	SetupLiveRoutes(apiV1, authenticated, h.Live)
}
