package flights_service_api

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server implements FlightsServiceServer on top of the flight use case.
type Server struct {
	flights flights.FlightUseCase
	logger  *zap.Logger
	verbose bool
}

func NewServer(flights flights.FlightUseCase, logger *zap.Logger, verbose bool) *Server {
	return &Server{flights: flights, logger: logger, verbose: verbose}
}

func (s *Server) SearchFlights(ctx context.Context, req *SearchFlightsRequest) (*SearchFlightsResponse, error) {
	list, err := s.flights.Search(ctx, req.Filter)
	if err != nil {
		return nil, s.toStatus(err)
	}
	resp := &SearchFlightsResponse{
		Flights: make([]*Flight, 0, len(list)),
	}
	for _, rec := range list {
		resp.Flights = append(resp.Flights, toFlight(rec))
	}
	return resp, nil
}

func (s *Server) GetFlight(ctx context.Context, req *GetFlightRequest) (*GetFlightResponse, error) {
	rec, err := s.flights.GetByID(ctx, req.Id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &GetFlightResponse{Flight: toFlight(*rec)}, nil
}

func (s *Server) CreateFlight(ctx context.Context, req *CreateFlightRequest) (*CreateFlightResponse, error) {
	rec, err := s.flights.Create(ctx, req.Flight)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &CreateFlightResponse{Flight: toFlight(*rec)}, nil
}

func (s *Server) toStatus(err error) error {
	var (
		vErr  *domain.ValidationError
		nfErr *domain.NotFoundError
		pErr  *domain.PersistenceError
	)
	switch {
	case errors.As(err, &vErr):
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &nfErr):
		return status.Error(codes.NotFound, nfErr.Error())
	case errors.As(err, &pErr):
		return status.Error(codes.Internal, pErr.PublicMessage(s.verbose))
	default:
		s.logger.Error("unexpected error", zap.Error(err))
		return status.Error(codes.Internal, "Something went wrong!")
	}
}

func toFlight(rec domain.FlightRecord) *Flight {
	return &Flight{FlightRecord: rec, CO2Emissions: domain.CO2Emissions(rec.DistanceKm)}
}

// LoggingInterceptor logs each unary call with its status code.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("grpc call failed", fields...)
		} else {
			logger.Info("grpc call completed", fields...)
		}
		return resp, err
	}
}

var _ FlightsServiceServer = (*Server)(nil)
