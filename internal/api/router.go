package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/mathsoc-club/backend/internal/app"
	iauth "github.com/mathsoc-club/backend/internal/auth"
	"github.com/mathsoc-club/backend/internal/cache"
	"github.com/mathsoc-club/backend/internal/handlers"
	"github.com/mathsoc-club/backend/internal/middleware"
	"github.com/mathsoc-club/backend/internal/services"
	"github.com/mathsoc-club/backend/internal/storage"
)

// Deps bundles everything the router needs. The snapshot store may be nil;
// content caches then run memory-only and start cold after every restart.
type Deps struct {
	DB            *gorm.DB
	JWT           *iauth.JWTService
	Config        *app.Config
	SnapshotStore cache.Store
	RateStore     middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(ctx context.Context, deps Deps) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	cfg := deps.Config

	blobs, err := storage.NewLocalStore(cfg.Media.UploadDir, cfg.Media.UploadBaseURL)
	if err != nil {
		return nil, err
	}

	posts, err := services.NewPostService(deps.DB, blobs)
	if err != nil {
		return nil, err
	}
	alerts, err := services.NewAlertService(deps.DB)
	if err != nil {
		return nil, err
	}
	gallery, err := services.NewGalleryService(cfg.Media.GalleryImagesDir, cfg.Media.GalleryVideosDir)
	if err != nil {
		return nil, err
	}
	gallery.SetRepeatFactor(cfg.Media.RepeatFactor)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	if len(cfg.Server.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		r.Use(cors.New(corsCfg))
	}
	r.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit, time.Minute))

	// Health endpoint (public)
	r.GET("/health", handlers.Health(deps.DB))

	contentHandler := handlers.NewContentHandler(ctx, posts, deps.SnapshotStore, cfg.Cache.ContentTTL)
	alertHandler := handlers.NewAlertHandler(alerts)
	galleryHandler := handlers.NewGalleryHandler(gallery, cfg.Media.GalleryPageSize)
	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT)
	adminHandler := handlers.NewAdminHandler(posts, alerts, blobs)

	// Public content routes
	pub := r.Group("/api")
	{
		pub.GET("/events", contentHandler.ListEvents)
		pub.GET("/events/:slug", contentHandler.GetEvent)
		pub.GET("/community-posts", contentHandler.ListCommunityPosts)
		pub.GET("/community-posts/:slug", contentHandler.GetCommunityPost)
		pub.GET("/alerts", alertHandler.List)
		pub.GET("/gallery", galleryHandler.Feed)
	}

	r.POST("/api/auth/login", authHandler.Login)

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.Auth(deps.JWT), middleware.RequireAdmin())
	{
		admin.GET("/me", authHandler.Me)
		admin.GET("/posts", adminHandler.ListPosts)
		admin.POST("/posts", adminHandler.CreatePost)
		admin.DELETE("/posts/:kind/:id", adminHandler.DeletePost)
		admin.GET("/alerts", adminHandler.ListAlerts)
		admin.POST("/alerts", adminHandler.CreateAlert)
		admin.DELETE("/alerts/:id", adminHandler.DeleteAlert)
	}

	// Static media: the gallery directories and uploaded post images
	r.Static("/images/gallery", cfg.Media.GalleryImagesDir)
	r.Static("/videos/gallery", cfg.Media.GalleryVideosDir)
	r.Static(cfg.Media.UploadBaseURL, cfg.Media.UploadDir)

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
