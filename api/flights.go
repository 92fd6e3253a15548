package api

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/middleware"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"github.com/Domenick1991/flightsearch/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FlightResponse is a flight as exposed to clients, with emissions derived
// from its distance.
type FlightResponse struct {
	domain.FlightRecord
	CO2Emissions float64 `json:"co2Emissions"`
}

func NewFlightResponse(rec domain.FlightRecord) FlightResponse {
	return FlightResponse{FlightRecord: rec, CO2Emissions: domain.CO2Emissions(rec.DistanceKm)}
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type FlightHandler struct {
	service   flights.FlightUseCase
	validator *validation.Validator
	logger    *zap.Logger
	verbose   bool
}

// NewFlightHandler builds the REST handler. verbose exposes store error
// details to clients and is meant for development only.
func NewFlightHandler(service flights.FlightUseCase, logger *zap.Logger, verbose bool) *FlightHandler {
	return &FlightHandler{service: service, validator: validation.New(), logger: logger, verbose: verbose}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.POST("/search", h.search)
	router.GET("/:id", h.get)
}

// list serves GET /flights with the filter taken from the query string.
func (h *FlightHandler) list(c *gin.Context) {
	filter, parsed := filterFromQuery(c)
	if parsed.Len() > 0 {
		_, err := h.validator.ValidateSearch(filter)
		h.writeError(c, withChecks(parsed, err))
		return
	}
	h.respondSearch(c, filter)
}

// search serves POST /flights/search with a JSON filter body. An empty body
// or null matches every flight.
func (h *FlightHandler) search(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.writeError(c, domain.NewValidationError("Request body could not be read"))
		return
	}

	var filter *domain.SearchFilter
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		filter = &domain.SearchFilter{}
		if parsed := decodeFields(trimmed, filter); parsed.Len() > 0 {
			if !parsed.HasField("") {
				_, err := h.validator.ValidateSearch(filter)
				parsed = withChecks(parsed, err)
			}
			h.writeError(c, parsed)
			return
		}
	}
	h.respondSearch(c, filter)
}

func (h *FlightHandler) respondSearch(c *gin.Context, filter *domain.SearchFilter) {
	records, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]FlightResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, NewFlightResponse(rec))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	rec, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFlightResponse(*rec))
}

func (h *FlightHandler) create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.writeError(c, domain.NewValidationError("Request body could not be read"))
		return
	}

	var input domain.CreateFlightInput
	if parsed := decodeFields(body, &input); parsed.Len() > 0 {
		if !parsed.HasField("") {
			_, err := h.validator.ValidateCreate(input)
			parsed = withChecks(parsed, err)
		}
		h.writeError(c, parsed)
		return
	}

	rec, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewFlightResponse(*rec))
}

func (h *FlightHandler) writeError(c *gin.Context, err error) {
	var (
		vErr  *domain.ValidationError
		nfErr *domain.NotFoundError
		pErr  *domain.PersistenceError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: vErr.Error(), Details: vErr.Violations()})
	case errors.As(err, &nfErr):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: nfErr.Error()})
	case errors.As(err, &pErr):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: pErr.PublicMessage(h.verbose)})
	default:
		h.logger.Error("unexpected error", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong!"})
	}
}

// filterFromQuery reads the filter from the query string. Prices that are
// not finite numbers are reported in the returned error and left unset.
func filterFromQuery(c *gin.Context) (*domain.SearchFilter, *domain.ValidationError) {
	parsed := &domain.ValidationError{}
	if len(c.Request.URL.Query()) == 0 {
		return nil, parsed
	}

	f := &domain.SearchFilter{}
	textParams := []struct {
		name string
		dst  **string
	}{
		{"departureCity", &f.DepartureCity},
		{"destinationCity", &f.DestinationCity},
		{"date", &f.Date},
		{"arrivalDate", &f.ArrivalDate},
		{"airline", &f.Airline},
		{"sortBy", &f.SortBy},
		{"sortOrder", &f.SortOrder},
	}
	for _, s := range textParams {
		if v, ok := c.GetQuery(s.name); ok {
			*s.dst = &v
		}
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		raw, ok := c.GetQuery(p.name)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			parsed.Add(p.name, fmt.Sprintf("%q must be a number", p.name))
			continue
		}
		*p.dst = &v
	}
	return f, parsed
}

// withChecks adds the validator's findings for the fields that did decode.
func withChecks(parsed *domain.ValidationError, err error) *domain.ValidationError {
	var checked *domain.ValidationError
	if errors.As(err, &checked) {
		parsed.Merge(checked)
	}
	return parsed
}
