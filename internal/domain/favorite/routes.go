package favorite

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.GET("/ids", h.GetFavoriteIDs)
		favorites.POST("/:maidId", h.AddFavorite)
		favorites.DELETE("/:maidId", h.RemoveFavorite)
		favorites.GET("/:maidId/check", h.CheckFavorite)
	}
}
