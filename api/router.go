package api

import (
	"github.com/Domenick1991/flightsearch/internal/metrics"
	"github.com/Domenick1991/flightsearch/internal/middleware"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	// SwaggerDir holds flights.swagger.json; empty disables /swagger and /docs.
	SwaggerDir     string
	Verbose        bool
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig, service flights.FlightUseCase, logger *zap.Logger, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Metrics(m),
		middleware.CORS(cfg.AllowedOrigins...),
	)

	NewHealthHandler(service, logger).Register(router)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := router.Group("/api/v1")
	NewFlightHandler(service, logger, cfg.Verbose).Register(v1.Group("/flights"))

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/flights.swagger.json"))))
	}

	return router
}
