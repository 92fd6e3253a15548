package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Search(ctx context.Context, filter *domain.SearchFilter) ([]domain.FlightRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightRecord), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.FlightRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightRecord), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input domain.CreateFlightInput) (*domain.FlightRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightRecord), args.Error(1)
}

func (m *MockFlightUseCase) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func sampleRecord() domain.FlightRecord {
	return domain.FlightRecord{
		ID:              1,
		FlightNumber:    "BA117",
		Airline:         "British Airways",
		DepartureCity:   "London",
		DestinationCity: "New York",
		DepartureTime:   "2025-06-01T09:30:00.000Z",
		ArrivalTime:     "2025-06-01T17:45:00.000Z",
		Price:           450,
		DistanceKm:      1000,
		CreatedAt:       "2025-05-01T12:00:00.000Z",
	}
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodGet, "/api/v1/flights?departureCity=London&minPrice=100&sortBy=price&unknown=1", "")

	mockService.On("Search", c.Request.Context(), mock.MatchedBy(func(f *domain.SearchFilter) bool {
		return f != nil && *f.DepartureCity == "London" && *f.MinPrice == 100 && *f.SortBy == "price" && f.MaxPrice == nil
	})).Return([]domain.FlightRecord{sampleRecord()}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.InDelta(t, 115.0, body[0]["co2Emissions"], 1e-9)
	assert.Equal(t, "BA117", body[0]["flightNumber"])
	assert.Equal(t, "2025-06-01T09:30:00.000Z", body[0]["departureTime"])

	mockService.AssertExpectations(t)
}

func TestFlightHandler_list_NoQueryMeansNoFilter(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodGet, "/api/v1/flights", "")
	mockService.On("Search", c.Request.Context(), (*domain.SearchFilter)(nil)).Return([]domain.FlightRecord{}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	mockService.AssertExpectations(t)
}

func TestFlightHandler_list_BadPrice(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodGet, "/api/v1/flights?minPrice=cheap&maxPrice=Inf", "")

	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `\"minPrice\" must be a number`)
	assert.Contains(t, w.Body.String(), `\"maxPrice\" must be a number`)
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights/search", `{"sortOrder":"desc","departureCity":"London","maxPrice":500,"extra":true}`)
	mockService.On("Search", c.Request.Context(), &domain.SearchFilter{
		DepartureCity: strPtr("London"),
		MaxPrice:      floatPtr(500),
		SortOrder:     strPtr("desc"),
	}).Return([]domain.FlightRecord{sampleRecord()}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_search_EmptyBody(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights/search", "null")
	mockService.On("Search", c.Request.Context(), (*domain.SearchFilter)(nil)).Return([]domain.FlightRecord{}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_search_ValidationError(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights/search", `{"minPrice":500,"maxPrice":100}`)
	mockService.On("Search", c.Request.Context(), mock.Anything).
		Return(nil, domain.NewValidationError("Minimum price cannot be greater than maximum price"))

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Validation error: Minimum price cannot be greater than maximum price","details":["Minimum price cannot be greater than maximum price"]}`, w.Body.String())
}

func TestFlightHandler_search_TypeMismatch(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights/search", `{"minPrice":"cheap"}`)

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `\"minPrice\" must be a number`)
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodGet, "/api/v1/flights/1", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	rec := sampleRecord()
	mockService.On("GetByID", c.Request.Context(), "1").Return(&rec, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body FlightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, rec, body.FlightRecord)
	assert.InDelta(t, 115.0, body.CO2Emissions, 1e-9)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		verbose bool
		code    int
		message string
	}{
		{"not found", &domain.NotFoundError{ID: 9}, false, http.StatusNotFound, "Flight not found"},
		{"invalid id", domain.NewValidationError(`"id" must be a valid flight identifier`), false, http.StatusBadRequest, `Validation error: "id" must be a valid flight identifier`},
		{"store failure", &domain.PersistenceError{Op: "Failed to fetch flight", Err: errors.New("conn reset")}, false, http.StatusInternalServerError, "Failed to fetch flight"},
		{"store failure verbose", &domain.PersistenceError{Op: "Failed to fetch flight", Err: errors.New("conn reset")}, true, http.StatusInternalServerError, "Failed to fetch flight: conn reset"},
		{"unexpected", errors.New("boom"), true, http.StatusInternalServerError, "Something went wrong!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockFlightUseCase{}
			handler := NewFlightHandler(mockService, zap.NewNop(), tt.verbose)

			c, w := newTestContext(http.MethodGet, "/api/v1/flights/9", "")
			c.Params = gin.Params{{Key: "id", Value: "9"}}
			mockService.On("GetByID", c.Request.Context(), "9").Return(nil, tt.err)

			handler.get(c)

			assert.Equal(t, tt.code, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights", `{
		"flightNumber": "BA117",
		"airline": "British Airways",
		"departureCity": "London",
		"destinationCity": "New York",
		"departureTime": "2025-06-01T09:30:00Z",
		"arrivalTime": "2025-06-01T17:45:00Z",
		"price": 450,
		"distanceKm": 1000,
		"co2Emissions": 1
	}`)

	rec := sampleRecord()
	mockService.On("Create", c.Request.Context(), mock.MatchedBy(func(in domain.CreateFlightInput) bool {
		return in.FlightNumber == "BA117" && in.Price != nil && *in.Price == 450 && *in.DistanceKm == 1000
	})).Return(&rec, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var body FlightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ID)
	assert.InDelta(t, 115.0, body.CO2Emissions, 1e-9)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_create_MalformedJSON(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights", `{"flightNumber":`)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlightHandler_list_ReportsEveryViolation(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodGet, "/api/v1/flights?minPrice=abc&sortOrder=sideways&date=01/06/2025", "")

	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{
		`"minPrice" must be a number`,
		`"sortOrder" must be one of [asc, desc]`,
		"Departure date must be in ISO format (YYYY-MM-DD)",
	}, body.Details)
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFlightHandler_search_ReportsEveryViolation(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights/search", `{"minPrice":"abc","sortOrder":"sideways","date":"01/06/2025"}`)

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{
		`"minPrice" must be a number`,
		`"sortOrder" must be one of [asc, desc]`,
		"Departure date must be in ISO format (YYYY-MM-DD)",
	}, body.Details)
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFlightHandler_create_ReportsEveryViolation(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, zap.NewNop(), false)

	c, w := newTestContext(http.MethodPost, "/api/v1/flights", `{"price":"abc","flightNumber":"","airline":""}`)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Details, `"price" must be a number`)
	assert.Contains(t, body.Details, `"flightNumber" is required`)
	assert.Contains(t, body.Details, `"airline" is required`)
	assert.NotContains(t, body.Details, `"price" is required`)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDecodeFields(t *testing.T) {
	var f domain.SearchFilter
	verr := decodeFields([]byte(`{"DEPARTURECITY":"London","minPrice":"abc","maxPrice":300,"extra":1}`), &f)

	assert.Equal(t, []string{`"minPrice" must be a number`}, verr.Violations())
	require.NotNil(t, f.DepartureCity)
	assert.Equal(t, "London", *f.DepartureCity)
	assert.Nil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 300.0, *f.MaxPrice)

	verr = decodeFields([]byte(`[1,2]`), &f)
	assert.Equal(t, []string{"Request body must be valid JSON"}, verr.Violations())
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
