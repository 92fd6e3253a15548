package warmer

import (
	"context"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, filter *domain.SearchFilter) ([]domain.FlightRecord, error)
}

// CacheWarmer re-populates the search cache for the route of every newly
// created flight, so the first client search after an invalidation is a hit.
type CacheWarmer struct {
	flights Searcher
	logger  *zap.Logger
}

func New(flights Searcher, logger *zap.Logger) *CacheWarmer {
	return &CacheWarmer{flights: flights, logger: logger}
}

// Handle never returns an error for a bad message; one poison event must not
// stop the consumer.
func (w *CacheWarmer) Handle(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.DecodeFlightEvent(msg.Value)
	if err != nil {
		w.logger.Warn("skipping undecodable event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}
	if event.Type != kafka.EventFlightCreated {
		return nil
	}

	filter := RouteFilter(event)
	records, err := w.flights.Search(ctx, filter)
	if err != nil {
		w.logger.Warn("failed to warm route",
			zap.String("event_id", event.ID),
			zap.String("departure_city", event.DepartureCity),
			zap.String("destination_city", event.DestinationCity),
			zap.Error(err))
		return nil
	}

	w.logger.Info("route cache warmed",
		zap.String("event_id", event.ID),
		zap.Int64("flight_id", event.FlightID),
		zap.String("departure_city", event.DepartureCity),
		zap.String("destination_city", event.DestinationCity),
		zap.Int("flights", len(records)))
	return nil
}

func RouteFilter(event kafka.FlightEvent) *domain.SearchFilter {
	departure, destination := event.DepartureCity, event.DestinationCity
	return &domain.SearchFilter{DepartureCity: &departure, DestinationCity: &destination}
}
