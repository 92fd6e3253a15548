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
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/Domenick1991/flightsearch/internal/warmer"
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

	if !cfg.Kafka.Enabled() {
		logger.Fatal("kafka.brokers and kafka.flight_events_topic are required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flightRepo, closeStore, err := bootstrap.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("open flight store", zap.Error(err))
	}
	defer closeStore()

	searchCache, closeCache, err := bootstrap.OpenCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open search cache", zap.Error(err))
	}
	defer closeCache()
	if cfg.Cache.Backend == config.CacheMemory {
		logger.Warn("memory cache is private to this process, warmed routes will not reach the API")
	}

	err = kafka.EnsureTopics(ctx, cfg.Kafka.Brokers[0], []kafka.TopicConfig{
		{Topic: cfg.Kafka.FlightEventsTopic, NumPartitions: 3, ReplicationFactor: 1},
	})
	if err != nil {
		logger.Fatal("ensure kafka topics", zap.Error(err))
	}

	flightService := flights.NewFlightService(flightRepo, searchCache, cfg.Cache.SearchTTL(), flights.WithLogger(logger))
	cacheWarmer := warmer.New(flightService, logger)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.FlightEventsTopic,
	}, logger)
	defer consumer.Close()

	logger.Info("cache warmer started",
		zap.String("topic", cfg.Kafka.FlightEventsTopic),
		zap.String("group_id", cfg.Kafka.GroupID))

	if err := consumer.Consume(ctx, cacheWarmer.Handle); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	logger.Info("worker stopped")
}
