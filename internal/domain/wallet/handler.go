package wallet

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"maidmarket/internal/pkg/logger"
	"maidmarket/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type amountRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wallets := rg.Group("/wallets/me")
	{
		wallets.GET("", h.GetMyWallet)
		wallets.POST("/topup", h.TopUpMyWallet)
		wallets.GET("/transactions", h.ListMyTransactions)
	}
	rg.POST("/maids/:id/unlock", h.UnlockCV)
}

func (h *Handler) GetMyWallet(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	wallet, err := h.service.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		h.internal(c, err, "failed to get wallet")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"balance": wallet.Balance, "cv_unlock_price": h.service.UnlockPrice()})
}

func (h *Handler) TopUpMyWallet(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, "invalid request body")
		return
	}

	wallet, txn, err := h.service.TopUp(c.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error())
			return
		}
		h.internal(c, err, "failed to top up wallet")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": wallet, "transaction": txn})
}

func (h *Handler) UnlockCV(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	unlock, charged, err := h.service.UnlockCV(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrMaidNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, ErrInsufficientFunds):
			response.Error(c, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", err.Error())
		default:
			h.internal(c, err, "failed to unlock cv")
		}
		return
	}

	status := http.StatusOK
	if charged {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"unlock": unlock, "charged": charged})
}

func (h *Handler) ListMyTransactions(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	txns, err := h.service.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		h.internal(c, err, "failed to list transactions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transactions": txns})
}

func (h *Handler) internal(c *gin.Context, err error, msg string) {
	logger.WithContext(c.Request.Context()).Error().Err(err).Int64("user_id", c.GetInt64("user_id")).Msg(msg)
	response.Error(c, http.StatusInternalServerError, response.CodeInternal, msg)
}
