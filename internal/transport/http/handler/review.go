package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *usecase.ReviewUsecase
	logger  *slog.Logger
}

func NewReviewHandler(reviews *usecase.ReviewUsecase, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With("component", "review_handler"),
	}
}

type addReviewRequest struct {
	Text   string `json:"text"   binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

// POST /stores/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.AddReview(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Text, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errStoreNotFound})
		case errors.Is(err, domain.ErrEmptyReview), errors.Is(err, domain.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("add review", "store_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         review.ID,
		"text":       review.Text,
		"rating":     review.Rating,
		"created_at": review.CreatedAt,
	})
}
