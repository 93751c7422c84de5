package analytics

import (
	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAnalyticsRoutes configures the admin analytics routes
func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller *Controller) {
	analytics := rg.Group("/admin/analytics")
	analytics.Use(middleware.JWTAuth(), middleware.RequireRoles("ADMIN"))
	{
		analytics.GET("/dashboard", controller.GetDashboard)
		analytics.GET("/events/:id", controller.GetEventAnalytics)
	}
}
