package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scenelingo/scenelingo-backend/internal/handlers"
)

type RouterConfig struct {
	GenerationHandler *handlers.GenerationHandler

	// LocalMediaDir, when non-empty, is served under /media so local-mode
	// audio URLs resolve.
	LocalMediaDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)
	if cfg.LocalMediaDir != "" {
		router.Static("/media", cfg.LocalMediaDir)
	}

	api := router.Group("/api")
	{
		api.POST("/lessons/generate", cfg.GenerationHandler.Start)
		api.GET("/lessons/generate/:id", cfg.GenerationHandler.GetStatus)
	}

	return router
}
