package notifications

import (
	"net/http"

	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SetupStreamRoutes configures the websocket endpoints: a per-event seat
// update stream and the admin dashboard stream.
func SetupStreamRoutes(rg *gin.RouterGroup, hub *Hub) {
	streams := rg.Group("/streams")
	{
		streams.GET("/events/:id", func(c *gin.Context) {
			eventID, err := uuid.Parse(c.Param("id"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
				return
			}
			hub.ServeWS(c, EventTopic(eventID))
		})

		admin := streams.Group("")
		admin.Use(middleware.JWTAuth(), middleware.RequireRoles("ADMIN"))
		{
			admin.GET("/dashboard", func(c *gin.Context) {
				hub.ServeWS(c, DashboardTopic)
			})
		}
	}
}
