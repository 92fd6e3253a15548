package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/migrations"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// sqliteTimeLayout matches strftime('%Y-%m-%d %H:%M:%f') so stored values
// sort and compare as text.
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

type SQLiteFlightRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens the database at path and makes sure the schema exists.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrations.ApplySQLiteSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewSQLiteFlightRepository(db *sql.DB, logger *zap.Logger) FlightRepository {
	return &SQLiteFlightRepository{db: db, logger: logger}
}

func (r *SQLiteFlightRepository) Search(ctx context.Context, filter *domain.SearchFilter) ([]domain.Flight, error) {
	q := BuildSearchQuery(SQLite, filter, r.logger)
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanSQLiteFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *SQLiteFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+SQLite.SelectColumns()+` FROM flights WHERE id = ?`, id)
	f, err := scanSQLiteFlight(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return &f, nil
}

func (r *SQLiteFlightRepository) Create(ctx context.Context, nf domain.NewFlight) (*domain.Flight, error) {
	row := r.db.QueryRowContext(ctx, `INSERT INTO flights (flight_number, airline, departure_city, destination_city, departure_time, arrival_time, price, distance_km)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+SQLite.SelectColumns(),
		nf.FlightNumber, nf.Airline, nf.DepartureCity, nf.DestinationCity,
		nf.DepartureTime.UTC().Format(sqliteTimeLayout), nf.ArrivalTime.UTC().Format(sqliteTimeLayout),
		nf.Price, nf.DistanceKm)
	f, err := scanSQLiteFlight(row)
	if err != nil {
		return nil, fmt.Errorf("insert flight: %w", err)
	}
	return &f, nil
}

func (r *SQLiteFlightRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFlight(s rowScanner) (domain.Flight, error) {
	var (
		f                           domain.Flight
		departure, arrival, created string
	)
	if err := s.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureCity, &f.DestinationCity, &departure, &arrival, &f.Price, &f.DistanceKm, &created); err != nil {
		return domain.Flight{}, err
	}

	var err error
	if f.DepartureTime, err = parseSQLiteTime(departure); err != nil {
		return domain.Flight{}, err
	}
	if f.ArrivalTime, err = parseSQLiteTime(arrival); err != nil {
		return domain.Flight{}, err
	}
	if f.CreatedAt, err = parseSQLiteTime(created); err != nil {
		return domain.Flight{}, err
	}
	return f, nil
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(sqliteTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

var _ FlightRepository = (*SQLiteFlightRepository)(nil)
