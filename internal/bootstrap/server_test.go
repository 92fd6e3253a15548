package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/metrics"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.App.Env = config.EnvDevelopment
	cfg.HTTP.Address = "127.0.0.1:0"
	cfg.HTTP.SwaggerDir = ""
	cfg.GRPC.Address = "127.0.0.1:0"
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.SQLitePath = ":memory:"
	cfg.Cache.Backend = config.CacheMemory
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) *flights.FlightService {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	repo, closeStore, err := OpenStore(ctx, cfg.Database, logger)
	require.NoError(t, err)
	t.Cleanup(closeStore)

	searchCache, closeCache, err := OpenCache(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(closeCache)

	return flights.NewFlightService(repo, searchCache, cfg.Cache.SearchTTL(), flights.WithLogger(logger))
}

func floatPtr(f float64) *float64 { return &f }

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenCache_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Backend = "memcached"

	_, _, err := OpenCache(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewServers_RoutesHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	svc := newTestService(t, cfg)

	s := newServers(cfg, svc, zap.NewNop(), metrics.New())

	_, err := svc.Create(context.Background(), domain.CreateFlightInput{
		FlightNumber:    "BA100",
		Airline:         "British Airways",
		DepartureCity:   "London",
		DestinationCity: "Paris",
		DepartureTime:   "2030-01-10T08:00:00Z",
		ArrivalTime:     "2030-01-10T10:00:00Z",
		Price:           floatPtr(120),
		DistanceKm:      floatPtr(340),
	})
	require.NoError(t, err)

	for _, path := range []string{"/health", "/db-health", "/metrics", "/api/v1/flights", "/api/v1/flights/1"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		s.httpServer.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNewServers_CORSUsesConfiguredOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://studio.apollographql.com"}
	s := newServers(cfg, newTestService(t, cfg), zap.NewNop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://studio.apollographql.com")
	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, "https://studio.apollographql.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	svc := newTestService(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, svc, zap.NewNop(), nil) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.GRPC.Address = "256.0.0.1:bad"
	svc := newTestService(t, cfg)

	err := Run(context.Background(), cfg, svc, zap.NewNop(), nil)
	assert.Error(t, err)
}
