package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/bootstrap"
	"github.com/Domenick1991/flightsearch/internal/kafka"
	"github.com/Domenick1991/flightsearch/internal/logging"
	"github.com/Domenick1991/flightsearch/internal/metrics"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flightRepo, closeStore, err := bootstrap.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("open flight store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeStore()

	searchCache, closeCache, err := bootstrap.OpenCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open search cache", zap.String("backend", cfg.Cache.Backend), zap.Error(err))
	}
	defer closeCache()

	m := metrics.New()
	opts := []flights.Option{
		flights.WithLogger(logger),
		flights.WithMetrics(m),
	}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka is unreachable, flight events may be lost", zap.Error(err))
		}
		opts = append(opts, flights.WithEventPublisher(producer, cfg.Kafka.FlightEventsTopic))
	}

	flightService := flights.NewFlightService(flightRepo, searchCache, cfg.Cache.SearchTTL(), opts...)

	if err := bootstrap.Run(ctx, cfg, flightService, logger, m); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
