package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

var isoMessages = map[string]string{
	"date":          "Departure date must be in ISO format (YYYY-MM-DD)",
	"arrivalDate":   "Arrival date must be in ISO format (YYYY-MM-DD)",
	"departureTime": "Departure time must be in ISO format",
	"arrivalTime":   "Arrival time must be in ISO format",
}

// Validator checks search, create and id inputs. It always reports every
// violation it finds.
type Validator struct {
	validate *validator.Validate
}

type idInput struct {
	ID string `json:"id" validate:"required,number"`
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseISO(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("isotime", func(fl validator.FieldLevel) bool {
		_, ok := parseISO(fl.Field().String())
		return ok
	})
	v.RegisterStructValidation(priceRange, domain.SearchFilter{})
	v.RegisterStructValidation(timeSequence, domain.CreateFlightInput{})
	return &Validator{validate: v}
}

// ValidateSearch returns a cleaned copy of f. A nil filter is valid.
func (v *Validator) ValidateSearch(f *domain.SearchFilter) (*domain.SearchFilter, error) {
	if f == nil {
		return nil, nil
	}
	clean := f.Clone()
	for _, s := range []*string{clean.DepartureCity, clean.DestinationCity, clean.Airline, clean.Date, clean.ArrivalDate, clean.SortBy, clean.SortOrder} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	if err := v.check(clean); err != nil {
		return nil, err
	}
	clean.Date = normalizeDate(clean.Date)
	clean.ArrivalDate = normalizeDate(clean.ArrivalDate)
	return clean, nil
}

func (v *Validator) ValidateCreate(in domain.CreateFlightInput) (domain.NewFlight, error) {
	in.FlightNumber = strings.TrimSpace(in.FlightNumber)
	in.Airline = strings.TrimSpace(in.Airline)
	in.DepartureCity = strings.TrimSpace(in.DepartureCity)
	in.DestinationCity = strings.TrimSpace(in.DestinationCity)
	in.DepartureTime = strings.TrimSpace(in.DepartureTime)
	in.ArrivalTime = strings.TrimSpace(in.ArrivalTime)
	if err := v.check(in); err != nil {
		return domain.NewFlight{}, err
	}

	departure, _ := parseISO(in.DepartureTime)
	arrival, _ := parseISO(in.ArrivalTime)
	return domain.NewFlight{
		FlightNumber:    in.FlightNumber,
		Airline:         in.Airline,
		DepartureCity:   in.DepartureCity,
		DestinationCity: in.DestinationCity,
		DepartureTime:   departure.UTC(),
		ArrivalTime:     arrival.UTC(),
		Price:           *in.Price,
		DistanceKm:      *in.DistanceKm,
	}, nil
}

func (v *Validator) ValidateID(id string) (int64, error) {
	in := idInput{ID: strings.TrimSpace(id)}
	if err := v.check(in); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(in.ID, 10, 64)
	if err != nil || n <= 0 {
		verr := &domain.ValidationError{}
		verr.Add("id", `"id" must be a valid flight identifier`)
		return 0, verr
	}
	return n, nil
}

func (v *Validator) check(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q is not allowed to be empty", field)
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "number":
		return fmt.Sprintf("%q must be a valid flight identifier", field)
	case "isodate", "isotime":
		if msg, ok := isoMessages[field]; ok {
			return msg
		}
		return fmt.Sprintf("%q must be in ISO format", field)
	case "pricerange":
		return "Minimum price cannot be greater than maximum price"
	case "timesequence":
		return "Arrival time must be after departure time"
	default:
		return fmt.Sprintf("%q failed the %s rule", field, fe.Tag())
	}
}

func priceRange(sl validator.StructLevel) {
	f := sl.Current().Interface().(domain.SearchFilter)
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		sl.ReportError(f.MinPrice, "minPrice", "MinPrice", "pricerange", "")
	}
}

func timeSequence(sl validator.StructLevel) {
	in := sl.Current().Interface().(domain.CreateFlightInput)
	departure, okDep := parseISO(in.DepartureTime)
	arrival, okArr := parseISO(in.ArrivalTime)
	if okDep && okArr && !arrival.After(departure) {
		sl.ReportError(in.ArrivalTime, "arrivalTime", "ArrivalTime", "timesequence", "")
	}
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeDate(s *string) *string {
	if s == nil {
		return nil
	}
	t, ok := parseISO(*s)
	if !ok {
		return s
	}
	d := t.Format(dateLayout)
	return &d
}
