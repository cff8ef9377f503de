package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	VideoHandler *VideoHandler
	AllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
	}
	if allowsAllOrigins(cfg.AllowOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthcheck", HealthCheck)

	router.GET("/videos", cfg.VideoHandler.ListVideos)
	router.GET("/videos/:id", cfg.VideoHandler.GetVideo)
	router.GET("/videos/:id/transcript", cfg.VideoHandler.GetTranscript)
	router.GET("/videos/:id/url", cfg.VideoHandler.GetVideoURL)
	router.GET("/videos/:id/segments/:segmentID/url", cfg.VideoHandler.GetSegmentURL)
	router.GET("/search", cfg.VideoHandler.SearchVideos)

	return router
}

func allowsAllOrigins(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
