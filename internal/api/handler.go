package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountReader is the read side of the account store.
type AccountReader interface {
	GetAccount(ctx context.Context, id int64) (models.Account, error)
}

type BalanceHandler struct {
	accounts AccountReader
	logger   *zap.Logger
}

func NewBalanceHandler(accounts AccountReader, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{accounts: accounts, logger: logger}
}

type BalanceResponse struct {
	UserID  int64           `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// Get handles GET /balance/:user_id
func (h *BalanceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id must be an integer"})
		return
	}

	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if errors.Is(err, models.ErrAccountNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	if err != nil {
		h.logger.Error("balance lookup failed", zap.Int64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		UserID:  account.ID,
		Balance: account.Balance,
	})
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
