package router

import (
	"pub_pos_backend/internal/handlers"
	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/internal/session"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up login and the one-time superadmin bootstrap.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.Login)
	group.POST("/superadmin", authHandler.ProvisionSuperadmin)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.Logout)
	group.GET("/me", authHandler.GetCurrentSession)
}

// SetupPublicMenuRoutes sets up the browsing routes of the customer menu.
func SetupPublicMenuRoutes(apiGroup *gin.RouterGroup, menuHandler *handlers.MenuHandler) {
	menuRoutes := apiGroup.Group("/menu")
	{
		menuRoutes.GET("", menuHandler.GetMenu)
		menuRoutes.GET("/popular", menuHandler.GetPopularItems)
		menuRoutes.GET("/categories", menuHandler.GetCategories)
		menuRoutes.GET("/:id", menuHandler.GetMenuItemByID)
	}
}

// SetupMenuAdminRoutes sets up catalog management.
func SetupMenuAdminRoutes(authenticatedGroup *gin.RouterGroup, menuHandler *handlers.MenuHandler) {
	menuRoutes := authenticatedGroup.Group("/menu")
	menuRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		menuRoutes.POST("", menuHandler.CreateMenuItem)
		menuRoutes.POST("/seed", menuHandler.SeedMenu)
		menuRoutes.POST("/describe", menuHandler.DescribeMenuItem)
		menuRoutes.PUT("/:id", menuHandler.UpdateMenuItem)
		menuRoutes.DELETE("/:id", menuHandler.DeleteMenuItem)
	}
}

// SetupCartRoutes sets up the cart routes. Checkout records the caller when signed in.
func SetupCartRoutes(apiGroup *gin.RouterGroup, cartHandler *handlers.CartHandler, sessions *session.Manager) {
	cartRoutes := apiGroup.Group("/carts")
	{
		cartRoutes.POST("", cartHandler.CreateCart)
		cartRoutes.GET("/:id", cartHandler.GetCart)
		cartRoutes.DELETE("/:id", cartHandler.DeleteCart)
		cartRoutes.POST("/:id/items", cartHandler.AddItem)
		cartRoutes.DELETE("/:id/items", cartHandler.ClearCart)
		cartRoutes.PATCH("/:id/items/:itemId", cartHandler.UpdateItem)
		cartRoutes.DELETE("/:id/items/:itemId", cartHandler.RemoveItem)
		cartRoutes.POST("/:id/checkout", middleware.OptionalAuthMiddleware(sessions), cartHandler.Checkout)
	}
}

// SetupOrderRoutes sets up the order routes. The lifecycle service decides which
// role may perform each status change.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCounter, models.RoleWaiter))
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleCounter, models.RoleWaiter), orderHandler.UpdateOrderStatus)
	}
}

// SetupStaffRoutes sets up the staff directory routes. Admin only.
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler) {
	staffRoutes := authenticatedGroup.Group("/staff")
	staffRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		staffRoutes.POST("", staffHandler.CreateStaffMember)
		staffRoutes.GET("", staffHandler.GetStaffMembers)
		staffRoutes.GET("/:id", staffHandler.GetStaffMemberByID)
		staffRoutes.PUT("/:id", staffHandler.UpdateStaffMember)
		staffRoutes.PATCH("/:id/active", staffHandler.SetStaffActive)
		staffRoutes.DELETE("/:id", staffHandler.DeleteStaffMember)
	}
}

// SetupSettingsRoutes sets up the settings routes. Reading is public because the
// customer checkout prices with the current tax rate.
func SetupSettingsRoutes(apiGroup, authenticatedGroup *gin.RouterGroup, settingsHandler *handlers.SettingsHandler) {
	apiGroup.GET("/settings", settingsHandler.GetSettings)
	authenticatedGroup.PUT("/settings", middleware.RoleAuthMiddleware(models.RoleAdmin), settingsHandler.UpdateSettings)
}

// SetupDashboardRoutes sets up the per-role dashboards and reports.
func SetupDashboardRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	{
		dashboardRoutes.GET("/admin", middleware.RoleAuthMiddleware(models.RoleAdmin), reportHandler.GetAdminDashboard)
		dashboardRoutes.GET("/counter", middleware.RoleAuthMiddleware(models.RoleCounter), reportHandler.GetCounterDashboard)
		dashboardRoutes.GET("/waiter", middleware.RoleAuthMiddleware(models.RoleWaiter), reportHandler.GetWaiterDashboard)
	}
	authenticatedGroup.GET("/reports/payments", middleware.RoleAuthMiddleware(models.RoleAdmin), reportHandler.GetPaymentBreakdown)
}

// SetupLiveRoutes sets up the SSE streams. Menu and settings are public.
func SetupLiveRoutes(apiGroup, authenticatedGroup *gin.RouterGroup, liveHandler *handlers.LiveHandler) {
	apiGroup.GET("/live/"+repositories.CollectionMenu, liveHandler.Stream(repositories.CollectionMenu))
	apiGroup.GET("/live/"+repositories.CollectionSettings, liveHandler.Stream(repositories.CollectionSettings))

	authenticatedGroup.GET("/live/"+repositories.CollectionOrders,
		middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCounter, models.RoleWaiter),
		liveHandler.Stream(repositories.CollectionOrders))
	authenticatedGroup.GET("/live/"+repositories.CollectionStaff,
		middleware.RoleAuthMiddleware(models.RoleAdmin),
		liveHandler.Stream(repositories.CollectionStaff))
}
