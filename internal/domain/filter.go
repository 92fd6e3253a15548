package domain

const (
	SortByPrice         = "price"
	SortByDepartureTime = "departureTime"
	SortByDuration      = "duration"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// SearchFilter narrows a flight search. Nil fields are not applied.
// Field order here is the canonical order used for cache keys.
type SearchFilter struct {
	DepartureCity   *string  `json:"departureCity,omitempty" validate:"omitempty,min=1"`
	DestinationCity *string  `json:"destinationCity,omitempty" validate:"omitempty,min=1"`
	Date            *string  `json:"date,omitempty" validate:"omitempty,isodate"`
	ArrivalDate     *string  `json:"arrivalDate,omitempty" validate:"omitempty,isodate"`
	Airline         *string  `json:"airline,omitempty" validate:"omitempty,min=1"`
	MinPrice        *float64 `json:"minPrice,omitempty" validate:"omitempty,min=0"`
	MaxPrice        *float64 `json:"maxPrice,omitempty" validate:"omitempty,min=0"`
	SortBy          *string  `json:"sortBy,omitempty"`
	SortOrder       *string  `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
}

func (f *SearchFilter) Clone() *SearchFilter {
	if f == nil {
		return nil
	}
	c := &SearchFilter{
		DepartureCity:   cloneString(f.DepartureCity),
		DestinationCity: cloneString(f.DestinationCity),
		Date:            cloneString(f.Date),
		ArrivalDate:     cloneString(f.ArrivalDate),
		Airline:         cloneString(f.Airline),
		SortBy:          cloneString(f.SortBy),
		SortOrder:       cloneString(f.SortOrder),
	}
	if f.MinPrice != nil {
		v := *f.MinPrice
		c.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		c.MaxPrice = &v
	}
	return c
}

// Descending reports whether results should be sorted high to low.
func (f *SearchFilter) Descending() bool {
	return f != nil && f.SortOrder != nil && *f.SortOrder == SortOrderDesc
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
