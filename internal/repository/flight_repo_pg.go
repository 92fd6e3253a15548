package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type FlightRepository interface {
	Search(ctx context.Context, filter *domain.SearchFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight domain.NewFlight) (*domain.Flight, error)
	Ping(ctx context.Context) error
}

type PGFlightRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFlightRepository(db *pgxpool.Pool, logger *zap.Logger) FlightRepository {
	return &PGFlightRepository{db: db, logger: logger}
}

func (r *PGFlightRepository) Search(ctx context.Context, filter *domain.SearchFilter) ([]domain.Flight, error) {
	q := BuildSearchQuery(Postgres, filter, r.logger)
	rows, err := r.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureCity, &f.DestinationCity, &f.DepartureTime, &f.ArrivalTime, &f.Price, &f.DistanceKm, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+Postgres.SelectColumns()+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureCity, &f.DestinationCity, &f.DepartureTime, &f.ArrivalTime, &f.Price, &f.DistanceKm, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, nf domain.NewFlight) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline, departure_city, destination_city, departure_time, arrival_time, price, distance_km)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+Postgres.SelectColumns(),
		nf.FlightNumber, nf.Airline, nf.DepartureCity, nf.DestinationCity, nf.DepartureTime, nf.ArrivalTime, nf.Price, nf.DistanceKm)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureCity, &f.DestinationCity, &f.DepartureTime, &f.ArrivalTime, &f.Price, &f.DistanceKm, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert flight: %w", err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
