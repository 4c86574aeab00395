package main

import (
	"context"
	"fmt"
	"log"

	"podforge/api/router"
	"podforge/config"
	"podforge/db"
	"podforge/eventbus"
	"podforge/imagegen"
	"podforge/logger"
	"podforge/mediastore"
	"podforge/pipeline"
	"podforge/quota"
	"podforge/repositories"
	"podforge/scriptwriter"
	"podforge/services"
	"podforge/speech"
)

// @title        Podforge API
// @version      1.0
// @description  AI podcast generation backend
// @BasePath     /
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

	// Vendor clients
	scripts, err := scriptwriter.New(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize script writer:", err)
	}
	images, err := imagegen.New(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize image generator:", err)
	}
	media, err := mediastore.New(cfg)
	if err != nil {
		log.Fatal("failed to initialize media store:", err)
	}
	synth := speech.New(cfg)

	// Event bus is optional; without brokers events are simply not published.
	var bus eventbus.Publisher
	if cfg.KafkaBrokers != "" {
		kp, err := eventbus.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			log.Fatal("failed to initialize kafka publisher:", err)
		}
		defer kp.Close()
		bus = kp
	}

	podcastRepo := repositories.NewPodcastRepository(db.Database())
	aiLogRepo := repositories.NewAILogRepository(db.Database())

	generator := pipeline.NewGenerator(pipeline.Deps{
		Scripts:  scripts,
		Speech:   synth,
		Images:   images,
		Media:    media,
		Podcasts: podcastRepo,
		Usage:    aiLogRepo,
		Bus:      bus,
		Quota:    quota.NewFromConfig(cfg),

		DefaultVoiceID: cfg.DefaultVoiceID,
		ImageCount:     cfg.ImageCount,
	})

	podcastService := services.NewPodcastService(podcastRepo, bus)
	feedService := services.NewFeedService(podcastRepo)

	r := router.New(router.Deps{
		Podcasts:  podcastService,
		Feed:      feedService,
		Generator: generator,

		Scripts: scripts,
		Speech:  synth,
		Images:  images,
		Media:   media,
		Voices:  synth,

		DefaultVoiceID: cfg.DefaultVoiceID,
		ImageCount:     cfg.ImageCount,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Log.Infof("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
