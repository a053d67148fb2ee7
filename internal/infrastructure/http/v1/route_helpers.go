package v1

import (
	"github.com/gin-gonic/gin"
)

// ClubCRUDRouteHandler is the route surface of handlers.ClubCRUDHandler.
type ClubCRUDRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	CanUpdate() bool
}

// RegisterClubCRUDRoutes registers list, create, get and delete routes for a
// club-owned record, plus PUT when the handler supports updates.
func RegisterClubCRUDRoutes(group *gin.RouterGroup, handler ClubCRUDRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
	if handler.CanUpdate() {
		group.PUT("/:id", handler.Update)
	}
}
