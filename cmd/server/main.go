package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/framecart/backend/config"
	httpDelivery "github.com/framecart/backend/internal/delivery/http"
	"github.com/framecart/backend/internal/infrastructure/shopify"
	"github.com/framecart/backend/internal/infrastructure/store"
	"github.com/framecart/backend/internal/infrastructure/video"
	"github.com/framecart/backend/internal/infrastructure/vision"
	"github.com/framecart/backend/internal/usecase"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Environment == "development" {
		log = log.Level(zerolog.DebugLevel).Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting framecart backend v1.0.0")

	storeConfig := cfg.StoreConfig()
	if storeConfig.Domain != "" {
		log.Info().Str("store", storeConfig.Domain).Str("api_version", storeConfig.APIVersion).Msg("default store configured")
	} else {
		log.Warn().Msg("no default store configured, catalog requests need a per-request store")
	}

	catalogClient := shopify.NewClient(log)

	analyzer, err := vision.NewGeminiAnalyzer(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create frame analyzer")
	}

	extractor := video.NewFrameExtractor(video.ExtractorConfig{
		TargetFPS:   cfg.Video.TargetFPS,
		MaxFrames:   cfg.Video.MaxFrames,
		ScaleHeight: cfg.Video.ScaleHeight,
	}, log)

	downloader := video.NewDownloader(log)
	analysisStore := store.NewMemoryStore()

	analysisService := usecase.NewAnalysisService(
		extractor,
		analyzer,
		analysisStore,
		usecase.AnalysisServiceConfig{ResultTTL: 24 * time.Hour},
		log,
	)

	matchService := usecase.NewMatchService(catalogClient, cfg.Match.Workers, log)

	handler := httpDelivery.NewHandler(
		analysisService,
		matchService,
		catalogClient,
		downloader,
		storeConfig,
		usecase.MatchOptions{
			LimitPerItem: cfg.Match.LimitPerItem,
			MaxItems:     cfg.Match.MaxItems,
		},
		log,
	)

	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
