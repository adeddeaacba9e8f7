package httptransport

import (
	"log/slog"

	"github.com/abakirov/storefront/internal/transport/http/handler"
	"github.com/abakirov/storefront/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	Logger    *slog.Logger
	JWTKey    []byte
	UploadDir string
}

func NewRouter(cfg RouterConfig, authH *handler.AuthHandler, storeH *handler.StoreHandler, reviewH *handler.ReviewHandler, accountH *handler.AccountHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(cfg.Logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(cfg.JWTKey)

	// Uploaded store photos
	r.Static("/uploads", cfg.UploadDir)

	// Auth
	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/forgot", authH.Forgot)
	auth.GET("/reset/:token", authH.ValidateReset)
	auth.POST("/reset/:token", authH.Reset)

	// Public browsing
	r.GET("/stores", storeH.List)
	r.GET("/store/:slug", storeH.GetBySlug)
	r.GET("/tags", storeH.Tags)
	r.GET("/tags/:tag", storeH.Tags)
	r.GET("/search", storeH.Search)
	r.GET("/near", storeH.Near)
	r.GET("/top", storeH.Top)

	// Store management
	stores := r.Group("/stores", authMW)
	stores.POST("", storeH.Create)
	stores.PUT("/:id", storeH.Update)
	stores.POST("/:id/photo", storeH.UploadPhoto)
	stores.POST("/:id/reviews", reviewH.Create)
	stores.POST("/:id/heart", accountH.ToggleHeart)

	// Account
	account := r.Group("/account", authMW)
	account.GET("", accountH.Get)
	account.PUT("", accountH.Update)

	r.GET("/hearts", authMW, accountH.Hearts)

	return r
}
