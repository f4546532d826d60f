package main

import (
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/analysis"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/config"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/database"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/handlers"
	logger "github.com/movinigamage/FeedBack-Lense-sub000/internal/logging"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/models"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/repository"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/router"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/timeseries"

	"go.uber.org/zap"
)

func main() {
	// Console-only logger until the configuration is available
	log := logger.Bootstrap()

	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	fileLog, err := logger.Init(config.Conf.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger", zap.Error(err))
	}
	log = fileLog
	defer log.Sync()

	db, err := database.Init(log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	responses := repository.NewResponses(db)
	trendSource := repository.NewTrend(db)

	analysisService := analysis.NewService(log, responses)
	trendAggregator := timeseries.NewAggregator(log, trendSource)

	defaults := analysis.Options{TopN: config.Conf.Analytics.DefaultTopKeywords}
	if path := config.Conf.Analytics.StopwordFile; path != "" {
		words, err := models.LoadStopwords(path)
		if err != nil {
			log.Fatal("Failed to load stopword file", zap.String("path", path), zap.Error(err))
		}
		defaults.ExtraStopwords = words
		log.Info("Loaded extra stopwords", zap.String("path", path), zap.Int("count", len(words)))
	}

	analyticsHandler := handlers.NewAnalyticsHandler(log, analysisService, trendAggregator, defaults)
	trendHandler := handlers.NewTrendHandler(log, trendAggregator)

	r := router.Setup(log, analyticsHandler, trendHandler)

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
