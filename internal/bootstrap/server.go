package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightsearch/api"
	"github.com/Domenick1991/flightsearch/config"
	flightsapi "github.com/Domenick1991/flightsearch/internal/api/flights_service_api"
	"github.com/Domenick1991/flightsearch/internal/metrics"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, logger *zap.Logger, m *metrics.Metrics) error {
	s := newServers(cfg, flightSvc, logger, m)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()
	logger.Info("gRPC server started", zap.String("address", cfg.GRPC.Address))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("HTTP server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		logger.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, flightSvc flights.FlightUseCase, logger *zap.Logger, m *metrics.Metrics) *Servers {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(flightsapi.LoggingInterceptor(logger)))
	flightsapi.RegisterFlightsServiceServer(grpcSrv, flightsapi.NewServer(flightSvc, logger, cfg.App.Verbose()))

	router := api.NewRouter(api.RouterConfig{
		SwaggerDir:     cfg.HTTP.SwaggerDir,
		Verbose:        cfg.App.Verbose(),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, flightSvc, logger, m)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
	}
}
