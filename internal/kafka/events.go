package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/google/uuid"
)

const EventFlightCreated = "flight_created"

type FlightEvent struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	FlightID        int64     `json:"flight_id"`
	FlightNumber    string    `json:"flight_number"`
	DepartureCity   string    `json:"departure_city"`
	DestinationCity string    `json:"destination_city"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewFlightCreatedEvent(f domain.Flight) FlightEvent {
	return FlightEvent{
		ID:              uuid.NewString(),
		Type:            EventFlightCreated,
		FlightID:        f.ID,
		FlightNumber:    f.FlightNumber,
		DepartureCity:   f.DepartureCity,
		DestinationCity: f.DestinationCity,
		OccurredAt:      time.Now().UTC(),
	}
}

func DecodeFlightEvent(data []byte) (FlightEvent, error) {
	var ev FlightEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return FlightEvent{}, fmt.Errorf("decode flight event: %w", err)
	}
	if ev.Type == "" {
		return FlightEvent{}, fmt.Errorf("decode flight event: missing type")
	}
	return ev, nil
}
