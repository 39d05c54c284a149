package maid

import (
	"errors"
	"net/http"

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

// ListMaids handles GET /maids?nationality=&q=&available=&page=&per_page=
func (h *Handler) ListMaids(c *gin.Context) {
	page, perPage := utils.Pagination(c)

	f := Filters{
		Nationality:   c.Query("nationality"),
		Search:        c.Query("q"),
		AvailableOnly: c.Query("available") == "true",
		Limit:         perPage,
		Offset:        (page - 1) * perPage,
	}

	maids, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error().Err(err).Msg("list maids failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to list maids")
		return
	}

	response.Success(c, http.StatusOK, toListResponse(maids, total, page, perPage))
}

// GetMaid handles GET /maids/:id
func (h *Handler) GetMaid(c *gin.Context) {
	m, cv, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		logger.WithContext(c.Request.Context()).Error().Err(err).Str("maid_id", c.Param("id")).Msg("get maid failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to get maid")
		return
	}

	response.Success(c, http.StatusOK, DetailResponse{Maid: m, Unlocked: cv != nil, CV: cv})
}

// CreateMaid handles POST /maids for office and admin accounts.
func (h *Handler) CreateMaid(c *gin.Context) {
	var req CreateMaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, "invalid request body")
		return
	}

	m := req.toMaid()
	details, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), m)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error(), details)
			return
		}
		logger.WithContext(c.Request.Context()).Error().Err(err).Msg("create maid failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create maid")
		return
	}

	response.Success(c, http.StatusCreated, m)
}
