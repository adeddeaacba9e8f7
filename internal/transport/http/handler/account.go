package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accounts *usecase.AccountUsecase
	logger   *slog.Logger
}

func NewAccountHandler(accounts *usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With("component", "account_handler"),
	}
}

// GET /account
func (h *AccountHandler) Get(c *gin.Context) {
	user, hearts, err := h.accounts.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.Error("get account", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user), "hearts": hearts})
}

type updateAccountRequest struct {
	Name  string `json:"name"  binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// PUT /account
func (h *AccountHandler) Update(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), c.GetString("userID"), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("update account", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// POST /stores/:id/heart
// Toggles the store in the caller's favorites and echoes the updated set.
func (h *AccountHandler) ToggleHeart(c *gin.Context) {
	hearts, err := h.accounts.ToggleHeart(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errStoreNotFound})
			return
		}
		h.logger.Error("toggle heart", "store_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hearts": hearts})
}

// GET /hearts
func (h *AccountHandler) Hearts(c *gin.Context) {
	stores, err := h.accounts.HeartedStores(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.Error("hearted stores", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stores": toStoreResponses(stores)})
}
