package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"go.uber.org/zap"
)

// Dialect holds the store-specific SQL fragments used by the search builder.
type Dialect interface {
	Placeholder(n int) string
	SelectColumns() string
	// DateOf extracts the UTC calendar date of a timestamp column.
	DateOf(column string) string
	DateParam(placeholder string) string
	Duration() string
}

type postgresDialect struct{}

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) SelectColumns() string {
	return "id, flight_number, airline, departure_city, destination_city, departure_time, arrival_time, price::float8, distance_km::float8, created_at"
}

func (postgresDialect) DateOf(column string) string {
	return fmt.Sprintf("(%s AT TIME ZONE 'UTC')::date", column)
}

func (postgresDialect) DateParam(placeholder string) string { return placeholder + "::date" }

func (postgresDialect) Duration() string { return "(arrival_time - departure_time)" }

type sqliteDialect struct{}

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) SelectColumns() string {
	return "id, flight_number, airline, departure_city, destination_city, departure_time, arrival_time, price, distance_km, created_at"
}

func (sqliteDialect) DateOf(column string) string { return "DATE(" + column + ")" }

func (sqliteDialect) DateParam(placeholder string) string { return placeholder }

func (sqliteDialect) Duration() string {
	return "(julianday(arrival_time) - julianday(departure_time))"
}

var (
	Postgres Dialect = postgresDialect{}
	SQLite   Dialect = sqliteDialect{}
)

type SearchQuery struct {
	SQL  string
	Args []any
}

// predicateSlot is one optional AND condition. Slots are applied in the
// order of searchSlots and each contributes exactly one bound parameter.
type predicateSlot struct {
	value  func(f *domain.SearchFilter) (any, bool)
	clause func(d Dialect, placeholder string) string
}

var searchSlots = []predicateSlot{
	{value: stringValue(func(f *domain.SearchFilter) *string { return f.DepartureCity }), clause: compare("departure_city", "=")},
	{value: stringValue(func(f *domain.SearchFilter) *string { return f.DestinationCity }), clause: compare("destination_city", "=")},
	{value: stringValue(func(f *domain.SearchFilter) *string { return f.Date }), clause: onDate("departure_time")},
	{value: stringValue(func(f *domain.SearchFilter) *string { return f.ArrivalDate }), clause: onDate("arrival_time")},
	{value: stringValue(func(f *domain.SearchFilter) *string { return f.Airline }), clause: compare("airline", "=")},
	{value: floatValue(func(f *domain.SearchFilter) *float64 { return f.MinPrice }), clause: compare("price", ">=")},
	{value: floatValue(func(f *domain.SearchFilter) *float64 { return f.MaxPrice }), clause: compare("price", "<=")},
}

func stringValue(get func(*domain.SearchFilter) *string) func(*domain.SearchFilter) (any, bool) {
	return func(f *domain.SearchFilter) (any, bool) {
		if v := get(f); v != nil {
			return *v, true
		}
		return nil, false
	}
}

func floatValue(get func(*domain.SearchFilter) *float64) func(*domain.SearchFilter) (any, bool) {
	return func(f *domain.SearchFilter) (any, bool) {
		if v := get(f); v != nil {
			return *v, true
		}
		return nil, false
	}
}

func compare(column, op string) func(Dialect, string) string {
	return func(_ Dialect, placeholder string) string {
		return column + " " + op + " " + placeholder
	}
}

func onDate(column string) func(Dialect, string) string {
	return func(d Dialect, placeholder string) string {
		return d.DateOf(column) + " = " + d.DateParam(placeholder)
	}
}

func sortExpression(d Dialect, sortBy string) (string, bool) {
	switch sortBy {
	case domain.SortByPrice:
		return "price", true
	case domain.SortByDepartureTime:
		return "departure_time", true
	case domain.SortByDuration:
		return d.Duration(), true
	default:
		return "", false
	}
}

// BuildSearchQuery renders filter as a parameterized SELECT over flights.
// A nil filter selects every row. Unknown sort fields are logged and skipped.
func BuildSearchQuery(d Dialect, filter *domain.SearchFilter, logger *zap.Logger) SearchQuery {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(d.SelectColumns())
	b.WriteString(" FROM flights WHERE 1=1")

	if filter == nil {
		return SearchQuery{SQL: b.String()}
	}

	args := make([]any, 0, len(searchSlots))
	for _, slot := range searchSlots {
		v, ok := slot.value(filter)
		if !ok {
			continue
		}
		args = append(args, v)
		b.WriteString(" AND ")
		b.WriteString(slot.clause(d, d.Placeholder(len(args))))
	}

	if filter.SortBy != nil && strings.TrimSpace(*filter.SortBy) != "" {
		if expr, ok := sortExpression(d, *filter.SortBy); ok {
			direction := "ASC"
			if filter.Descending() {
				direction = "DESC"
			}
			b.WriteString(" ORDER BY " + expr + " " + direction)
		} else if logger != nil {
			logger.Warn("ignoring invalid sortBy parameter", zap.String("sort_by", *filter.SortBy))
		}
	}

	return SearchQuery{SQL: b.String(), Args: args}
}
