package favorite

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maidmarket/internal/pkg/logger"
	"maidmarket/internal/pkg/response"
	"maidmarket/internal/pkg/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetFavorites handles GET /favorites?page=&per_page=
func (h *Handler) GetFavorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, perPage := utils.Pagination(c)
	favorites, total, err := h.service.List(c.Request.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		h.internal(c, err, "failed to get favorites")
		return
	}

	response.Success(c, http.StatusOK, ToListResponse(favorites, total, page, perPage))
}

// GetFavoriteIDs handles GET /favorites/ids
func (h *Handler) GetFavoriteIDs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ids, err := h.service.IDs(c.Request.Context(), userID)
	if err != nil {
		h.internal(c, err, "failed to get favorites")
		return
	}

	response.Success(c, http.StatusOK, IDsResponse{IDs: ids})
}

// AddFavorite handles POST /favorites/:maidId. 201 when created, 200 when
// the maid already was a favorite.
func (h *Handler) AddFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	maidID, ok := maidParam(c)
	if !ok {
		return
	}

	fav, created, err := h.service.Add(c.Request.Context(), userID, maidID)
	if err != nil {
		if errors.Is(err, ErrMaidNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		h.internal(c, err, "failed to add favorite")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, ToFavoriteResponse(fav))
}

// RemoveFavorite handles DELETE /favorites/:maidId
func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	maidID, ok := maidParam(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, maidID); err != nil {
		h.internal(c, err, "failed to remove favorite")
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckFavorite handles GET /favorites/:maidId/check
func (h *Handler) CheckFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	maidID, ok := maidParam(c)
	if !ok {
		return
	}

	isFavorite, err := h.service.Check(c.Request.Context(), userID, maidID)
	if err != nil {
		h.internal(c, err, "failed to check favorite")
		return
	}

	response.Success(c, http.StatusOK, CheckResponse{IsFavorite: isFavorite})
}

func (h *Handler) internal(c *gin.Context, err error, msg string) {
	logger.WithContext(c.Request.Context()).Error().
		Err(err).
		Int64("user_id", c.GetInt64("user_id")).
		Str("path", c.FullPath()).
		Msg(msg)
	response.Error(c, http.StatusInternalServerError, response.CodeInternal, msg)
}

func currentUser(c *gin.Context) (int64, bool) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}

func maidParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("maidId"))
	if id == "" || len(id) > 36 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid maid id")
		return "", false
	}
	return id, true
}
