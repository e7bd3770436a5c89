package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Queue, cfg.Version)
	router.GET("/health", health.Status)

	api := router.Group("/api")

	if cfg.ReviewService != nil {
		reviews := NewReviewsController(cfg.ReviewService)
		api.POST("/reviews", reviews.SubmitAttempt)
		api.GET("/reviews/due", reviews.DueCards)
	}

	if cfg.Queue != nil {
		queueController := NewQueueController(cfg.Queue)
		api.GET("/queue", queueController.Status)
		api.POST("/queue", queueController.Enqueue)
		api.POST("/queue/drain", queueController.Drain)
		api.DELETE("/queue/:localID", queueController.Discard)
	}

	if cfg.Stats != nil {
		statsController := NewStatsController(cfg.Stats)
		api.GET("/stats", statsController.Summary)
	}

	if cfg.TranslationClient != nil {
		translate := NewTranslationController(cfg.TranslationCache, cfg.TranslationClient, cfg.SourceLang, cfg.TargetLang)
		api.POST("/translate", translate.Translate)
	}

	return router
}
