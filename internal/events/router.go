package events

import (
	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupEventRoutes configures all event-related routes
func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	events := rg.Group("/events")
	{
		// Public listing and seat-map reads
		events.GET("", controller.ListEvents)
		events.GET("/:id", controller.GetEvent)
		events.GET("/:id/seatmap", controller.GetSeatMap)

		// Admin-only mutations
		admin := events.Group("")
		admin.Use(middleware.JWTAuth(), middleware.RequireRoles("ADMIN"))
		{
			admin.POST("", controller.CreateEvent)
			admin.DELETE("/:id", controller.DeleteEvent)
		}
	}
}
