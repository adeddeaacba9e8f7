package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/metrics"
	"github.com/abakirov/storefront/internal/upload"
	"github.com/abakirov/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	stores *usecase.StoreUsecase
	photos *upload.Processor
	logger *slog.Logger
}

func NewStoreHandler(stores *usecase.StoreUsecase, photos *upload.Processor, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		stores: stores,
		photos: photos,
		logger: logger.With("component", "store_handler"),
	}
}

type storeRequest struct {
	Name        string `json:"name"        binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address"     binding:"required"`
	// Pointers so 0 (equator, prime meridian) passes the required check.
	Lng  *float64 `json:"lng"  binding:"required,min=-180,max=180"`
	Lat  *float64 `json:"lat"  binding:"required,min=-90,max=90"`
	Tags []string `json:"tags"`
}

func (r *storeRequest) toInput() usecase.StoreInput {
	return usecase.StoreInput{
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Lng:         *r.Lng,
		Lat:         *r.Lat,
		Tags:        r.Tags,
	}
}

type storeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Address     string    `json:"address"`
	Lng         float64   `json:"lng"`
	Lat         float64   `json:"lat"`
	Tags        []string  `json:"tags"`
	Photo       *string   `json:"photo,omitempty"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toStoreResponse(s *domain.Store) storeResponse {
	return storeResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Slug:        s.Slug,
		Address:     s.Address,
		Lng:         s.Lng,
		Lat:         s.Lat,
		Tags:        s.Tags,
		Photo:       s.Photo,
		AuthorID:    s.AuthorID,
		CreatedAt:   s.CreatedAt,
	}
}

func toStoreResponses(stores []*domain.Store) []storeResponse {
	out := make([]storeResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, toStoreResponse(s))
	}
	return out
}

// POST /stores
func (h *StoreHandler) Create(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := h.stores.CreateStore(c.Request.Context(), c.GetString("userID"), req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStoreName) || errors.Is(err, domain.ErrMissingLocation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create store", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, toStoreResponse(store))
}

// PUT /stores/:id
func (h *StoreHandler) Update(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := h.stores.UpdateStore(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errStoreNotFound})
		case errors.Is(err, domain.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": errNotOwner})
		case errors.Is(err, domain.ErrInvalidStoreName), errors.Is(err, domain.ErrMissingLocation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("update store", "store_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, toStoreResponse(store))
}

// POST /stores/:id/photo
// Multipart upload under the "photo" field; resized before it hits disk.
func (h *StoreHandler) UploadPhoto(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	filename, err := h.photos.Save(header)
	if err != nil {
		if errors.Is(err, upload.ErrNotAnImage) {
			metrics.PhotoUploadsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		metrics.PhotoUploadsTotal.WithLabelValues("error").Inc()
		h.logger.Error("save photo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	err = h.stores.AttachPhoto(c.Request.Context(), c.Param("id"), c.GetString("userID"), filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errStoreNotFound})
		case errors.Is(err, domain.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": errNotOwner})
		default:
			h.logger.Error("attach photo", "store_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.PhotoUploadsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"photo": filename})
}

type reviewResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// GET /store/:slug
func (h *StoreHandler) GetBySlug(c *gin.Context) {
	detail, err := h.stores.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errStoreNotFound})
			return
		}
		h.logger.Error("get store by slug", "slug", c.Param("slug"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	reviews := make([]reviewResponse, 0, len(detail.Reviews))
	for _, r := range detail.Reviews {
		reviews = append(reviews, reviewResponse{
			ID:         r.ID,
			AuthorID:   r.AuthorID,
			AuthorName: r.AuthorName,
			Text:       r.Text,
			Rating:     r.Rating,
			CreatedAt:  r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"store":   toStoreResponse(detail.Store),
		"author":  toUserResponse(detail.Author),
		"reviews": reviews,
	})
}

// GET /stores?page=N
func (h *StoreHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.stores.ListStores(c.Request.Context(), page)
	if err != nil {
		if errors.Is(err, domain.ErrPageOutOfRange) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "page out of range",
				"last_page": result.Pages,
			})
			return
		}
		h.logger.Error("list stores", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": toStoreResponses(result.Stores),
		"page":   result.Page,
		"pages":  result.Pages,
		"total":  result.Total,
	})
}

// GET /tags and GET /tags/:tag
func (h *StoreHandler) Tags(c *gin.Context) {
	page, err := h.stores.StoresByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		h.logger.Error("stores by tag", "tag", c.Param("tag"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	tags := make([]gin.H, 0, len(page.Tags))
	for _, t := range page.Tags {
		tags = append(tags, gin.H{"tag": t.Tag, "count": t.Count})
	}

	c.JSON(http.StatusOK, gin.H{
		"tag":    page.Tag,
		"tags":   tags,
		"stores": toStoreResponses(page.Stores),
	})
}

// GET /search?q=term
func (h *StoreHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"stores": []storeResponse{}})
		return
	}

	stores, err := h.stores.Search(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("search stores", "q", q, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stores": toStoreResponses(stores)})
}

// GET /near?lng=&lat=
func (h *StoreHandler) Near(c *gin.Context) {
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	if lngErr != nil || latErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng and lat query params are required"})
		return
	}

	stores, err := h.stores.Near(c.Request.Context(), lng, lat)
	if err != nil {
		h.logger.Error("stores near", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stores": toStoreResponses(stores)})
}

// GET /top
func (h *StoreHandler) Top(c *gin.Context) {
	top, err := h.stores.TopStores(c.Request.Context())
	if err != nil {
		h.logger.Error("top stores", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	stores := make([]gin.H, 0, len(top))
	for _, t := range top {
		stores = append(stores, gin.H{
			"id":             t.ID,
			"name":           t.Name,
			"slug":           t.Slug,
			"photo":          t.Photo,
			"review_count":   t.ReviewCount,
			"average_rating": t.AverageRating,
		})
	}

	c.JSON(http.StatusOK, gin.H{"stores": stores})
}
