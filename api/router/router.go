package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson"

	"podforge/api/handlers"
	"podforge/api/middleware"
	"podforge/db"
	_ "podforge/docs"
	"podforge/models"
	"podforge/pipeline"
	"podforge/services"
)

// Deps carries the constructed services the router wires into handlers.
// Vendor clients are built in main and injected here; the router holds no
// state of its own.
type Deps struct {
	Podcasts  *services.PodcastService
	Feed      *services.FeedService
	Generator handlers.PodcastGenerator

	Scripts pipeline.ScriptGenerator
	Speech  pipeline.SpeechSynthesizer
	Images  pipeline.ImageGenerator
	Media   pipeline.MediaStore
	Voices  handlers.VoiceLister

	DefaultVoiceID string
	ImageCount     int
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogging(), middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Catalog
	r.GET("/podcasts", handlers.ListPodcastsHandler(deps.Podcasts))
	r.POST("/podcasts", handlers.CreatePodcastHandler(deps.Podcasts))
	r.GET("/podcasts/feed.rss", handlers.FeedHandler(deps.Feed))
	r.GET("/podcasts/:id", handlers.GetPodcastHandler(deps.Podcasts))
	r.GET("/trending-podcasts", handlers.TrendingPodcastsHandler(deps.Podcasts))

	// Engagement counters
	r.PUT("/podcasts/:id/views", handlers.IncrementStatHandler(deps.Podcasts, models.StatView))
	r.PUT("/podcasts/:id/like", handlers.IncrementStatHandler(deps.Podcasts, models.StatLike))
	r.POST("/podcast/:id/stats", handlers.UpdateStatsHandler(deps.Podcasts))

	// Generation
	r.POST("/generate-podcast", handlers.GeneratePodcastHandler(deps.Generator))
	r.POST("/generate-script", handlers.GenerateScriptHandler(deps.Scripts))
	r.POST("/generate-audio", handlers.GenerateAudioHandler(deps.Speech, deps.Media, deps.DefaultVoiceID))
	r.POST("/generate-image-prompts", handlers.GenerateImagePromptsHandler(deps.Scripts, deps.ImageCount))
	r.POST("/generate-images", handlers.GenerateImagesHandler(deps.Images, deps.Media))
	r.GET("/voices", handlers.VoicesHandler(deps.Voices))

	return r
}
