package domain

import "time"

const (
	CO2EmissionsFactor = 0.115
	// TimestampLayout is the only timestamp form callers ever see.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

type Flight struct {
	ID              int64
	FlightNumber    string
	Airline         string
	DepartureCity   string
	DestinationCity string
	DepartureTime   time.Time
	ArrivalTime     time.Time
	Price           float64
	DistanceKm      float64
	CreatedAt       time.Time
}

// FlightRecord is a stored flight with its timestamps normalized to
// TimestampLayout. Search results are cached in this form.
type FlightRecord struct {
	ID              int64   `json:"id"`
	FlightNumber    string  `json:"flightNumber"`
	Airline         string  `json:"airline"`
	DepartureCity   string  `json:"departureCity"`
	DestinationCity string  `json:"destinationCity"`
	DepartureTime   string  `json:"departureTime"`
	ArrivalTime     string  `json:"arrivalTime"`
	Price           float64 `json:"price"`
	DistanceKm      float64 `json:"distanceKm"`
	CreatedAt       string  `json:"createdAt"`
}

// NewFlight is a validated flight ready to be inserted.
type NewFlight struct {
	FlightNumber    string
	Airline         string
	DepartureCity   string
	DestinationCity string
	DepartureTime   time.Time
	ArrivalTime     time.Time
	Price           float64
	DistanceKm      float64
}

// CreateFlightInput is the raw create payload as received from a client.
type CreateFlightInput struct {
	FlightNumber    string   `json:"flightNumber" validate:"required,max=10"`
	Airline         string   `json:"airline" validate:"required,max=100"`
	DepartureCity   string   `json:"departureCity" validate:"required,max=100"`
	DestinationCity string   `json:"destinationCity" validate:"required,max=100"`
	DepartureTime   string   `json:"departureTime" validate:"required,isotime"`
	ArrivalTime     string   `json:"arrivalTime" validate:"required,isotime"`
	Price           *float64 `json:"price" validate:"required,min=0"`
	DistanceKm      *float64 `json:"distanceKm" validate:"required,min=0"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func (f Flight) Record() FlightRecord {
	return FlightRecord{
		ID:              f.ID,
		FlightNumber:    f.FlightNumber,
		Airline:         f.Airline,
		DepartureCity:   f.DepartureCity,
		DestinationCity: f.DestinationCity,
		DepartureTime:   FormatTimestamp(f.DepartureTime),
		ArrivalTime:     FormatTimestamp(f.ArrivalTime),
		Price:           f.Price,
		DistanceKm:      f.DistanceKm,
		CreatedAt:       FormatTimestamp(f.CreatedAt),
	}
}

func CO2Emissions(distanceKm float64) float64 {
	return distanceKm * CO2EmissionsFactor
}
