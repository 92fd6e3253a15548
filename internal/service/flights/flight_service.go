package flights

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/kafka"
	"github.com/Domenick1991/flightsearch/internal/metrics"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/Domenick1991/flightsearch/internal/validation"
	"go.uber.org/zap"
)

const (
	CacheKeyPrefix   = "flights:"
	AllFlightsKey    = CacheKeyPrefix + "all"
	DefaultSearchTTL = 300 * time.Second

	invalidationPattern = CacheKeyPrefix + "*"

	msgFetchFlights = "Failed to fetch flights"
	msgFetchFlight  = "Failed to fetch flight"
	msgCreateFlight = "Failed to create flight"
)

type FlightUseCase interface {
	Search(ctx context.Context, filter *domain.SearchFilter) ([]domain.FlightRecord, error)
	GetByID(ctx context.Context, id string) (*domain.FlightRecord, error)
	Create(ctx context.Context, input domain.CreateFlightInput) (*domain.FlightRecord, error)
	Ping(ctx context.Context) error
}

// Cache stores serialized search results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	repo      repository.FlightRepository
	cache     Cache
	cacheTTL  time.Duration
	validator *validation.Validator
	logger    *zap.Logger
	metrics   *metrics.Metrics

	producer    Producer
	eventsTopic string
}

type Option func(*FlightService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *FlightService) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *FlightService) {
		s.metrics = m
	}
}

// WithEventPublisher enables flight_created events on topic.
func WithEventPublisher(producer Producer, topic string) Option {
	return func(s *FlightService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

// NewFlightService wires the store and cache. A nil cache disables caching;
// a non-positive cacheTTL falls back to DefaultSearchTTL.
func NewFlightService(repo repository.FlightRepository, cache Cache, cacheTTL time.Duration, opts ...Option) *FlightService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultSearchTTL
	}
	s := &FlightService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validation.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheKey derives the cache key of a validated filter. Fields are always
// serialized in SearchFilter declaration order, so two filters with equal
// values share a key regardless of how the caller built them.
func CacheKey(filter *domain.SearchFilter) (string, error) {
	if filter == nil {
		return AllFlightsKey, nil
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}
	return CacheKeyPrefix + string(data), nil
}

func (s *FlightService) Search(ctx context.Context, filter *domain.SearchFilter) ([]domain.FlightRecord, error) {
	clean, err := s.validator.ValidateSearch(filter)
	if err != nil {
		return nil, err
	}

	key, err := CacheKey(clean)
	if err != nil {
		s.degraded("key", "", err)
	} else if records, ok := s.readCache(ctx, key); ok {
		return records, nil
	}

	flights, err := s.repo.Search(ctx, clean)
	s.metrics.StoreQuery("search", err)
	if err != nil {
		s.logger.Error("failed to fetch flights", zap.Error(err))
		return nil, &domain.PersistenceError{Op: msgFetchFlights, Err: err}
	}

	records := make([]domain.FlightRecord, 0, len(flights))
	for _, f := range flights {
		records = append(records, f.Record())
	}

	if key != "" {
		s.writeCache(ctx, key, records)
	}
	return records, nil
}

func (s *FlightService) GetByID(ctx context.Context, rawID string) (*domain.FlightRecord, error) {
	id, err := s.validator.ValidateID(rawID)
	if err != nil {
		return nil, err
	}

	flight, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.StoreQuery("get", nil)
		return nil, &domain.NotFoundError{ID: id}
	}
	s.metrics.StoreQuery("get", err)
	if err != nil {
		s.logger.Error("failed to fetch flight", zap.Int64("id", id), zap.Error(err))
		return nil, &domain.PersistenceError{Op: msgFetchFlight, Err: err}
	}

	rec := flight.Record()
	return &rec, nil
}

func (s *FlightService) Create(ctx context.Context, input domain.CreateFlightInput) (*domain.FlightRecord, error) {
	nf, err := s.validator.ValidateCreate(input)
	if err != nil {
		return nil, err
	}

	flight, err := s.repo.Create(ctx, nf)
	s.metrics.StoreQuery("create", err)
	if err != nil {
		s.logger.Error("failed to create flight", zap.String("flight_number", nf.FlightNumber), zap.Error(err))
		return nil, &domain.PersistenceError{Op: msgCreateFlight, Err: err}
	}

	s.invalidateSearches(ctx)
	s.publishCreated(ctx, *flight)

	s.logger.Info("flight created", zap.Int64("id", flight.ID), zap.String("flight_number", flight.FlightNumber))
	rec := flight.Record()
	return &rec, nil
}

func (s *FlightService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *FlightService) readCache(ctx context.Context, key string) ([]domain.FlightRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.degraded("get", key, err)
		return nil, false
	}
	if !ok {
		s.metrics.CacheMiss()
		return nil, false
	}

	var records []domain.FlightRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.degraded("decode", key, err)
		return nil, false
	}
	if records == nil {
		records = []domain.FlightRecord{}
	}
	s.metrics.CacheHit()
	return records, true
}

func (s *FlightService) writeCache(ctx context.Context, key string, records []domain.FlightRecord) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(records)
	if err != nil {
		s.degraded("encode", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.degraded("set", key, err)
	}
}

// invalidateSearches drops every cached search. Any filter may match the
// new flight, so nothing narrower is safe.
func (s *FlightService) invalidateSearches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys, err := s.cache.Keys(ctx, invalidationPattern)
	if err != nil {
		s.degraded("keys", invalidationPattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.degraded("delete", invalidationPattern, err)
		return
	}
	s.metrics.CacheInvalidated(len(keys))
	s.logger.Debug("search cache invalidated", zap.Int("keys", len(keys)))
}

func (s *FlightService) publishCreated(ctx context.Context, f domain.Flight) {
	if s.producer == nil {
		return
	}
	err := s.producer.Publish(ctx, s.eventsTopic, strconv.FormatInt(f.ID, 10), kafka.NewFlightCreatedEvent(f))
	s.metrics.EventPublished(err)
	if err != nil {
		s.logger.Warn("failed to publish flight event", zap.Int64("id", f.ID), zap.String("topic", s.eventsTopic), zap.Error(err))
	}
}

func (s *FlightService) degraded(op, key string, err error) {
	s.metrics.CacheError(op)
	s.logger.Warn("cache degraded, falling back to store",
		zap.String("key", key),
		zap.Error(&domain.CacheDegradedError{Op: op, Err: err}))
}

var _ FlightUseCase = (*FlightService)(nil)
