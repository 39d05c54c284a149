package maid

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the read endpoints on rg and the write endpoint on
// writers, which must already enforce the office or admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writers *gin.RouterGroup) {
	maids := rg.Group("/maids")
	{
		maids.GET("", h.ListMaids)
		maids.GET("/:id", h.GetMaid)
	}

	if writers != nil {
		writers.POST("/maids", h.CreateMaid)
	}
}
