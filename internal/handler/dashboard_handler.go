package handler

import (
	"net/http"
	pathpkg "path"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/response"
)

// DashboardHandler serves the dashboard tile menu.
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Tiles godoc
// GET /api/v1/dashboard/tiles
// Returns the tiles visible to the caller: every tile for admins, otherwise
// the tiles whose permission is granted.
func (h *DashboardHandler) Tiles(c *gin.Context) {
	ac := middleware.GetAuth(c)
	response.Success(c, http.StatusOK, gin.H{
		"role":  ac.Role,
		"tiles": access.VisibleTiles(ac),
	})
}

// CheckRoute godoc
// GET /api/v1/dashboard/route?path=/dashboard/news
// Reports whether the caller may open a dashboard route.
func (h *DashboardHandler) CheckRoute(c *gin.Context) {
	path := c.Query("path")
	if path != "" {
		path = pathpkg.Clean(path)
	}
	if !access.InDashboard(path) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	ac := middleware.GetAuth(c)
	tile, ok := access.TileForRoute(path)
	if !ok {
		// The dashboard home and unlisted pages only need a session.
		response.Success(c, http.StatusOK, gin.H{"path": path, "allowed": true})
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"path":       path,
		"allowed":    ac.Can(tile.Permission),
		"tile":       tile.Key,
		"permission": tile.Permission,
	})
}
