package flights_service_api

import (
	"context"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"google.golang.org/grpc"
)

const (
	serviceName = "flights.v1.FlightsService"

	searchFlightsMethod = "/" + serviceName + "/SearchFlights"
	getFlightMethod     = "/" + serviceName + "/GetFlight"
	createFlightMethod  = "/" + serviceName + "/CreateFlight"
)

type Flight struct {
	domain.FlightRecord
	CO2Emissions float64 `json:"co2Emissions"`
}

type SearchFlightsRequest struct {
	Filter *domain.SearchFilter `json:"filter,omitempty"`
}

type SearchFlightsResponse struct {
	Flights []*Flight `json:"flights"`
}

type GetFlightRequest struct {
	Id string `json:"id"`
}

type GetFlightResponse struct {
	Flight *Flight `json:"flight"`
}

type CreateFlightRequest struct {
	Flight domain.CreateFlightInput `json:"flight"`
}

type CreateFlightResponse struct {
	Flight *Flight `json:"flight"`
}

type FlightsServiceServer interface {
	SearchFlights(ctx context.Context, req *SearchFlightsRequest) (*SearchFlightsResponse, error)
	GetFlight(ctx context.Context, req *GetFlightRequest) (*GetFlightResponse, error)
	CreateFlight(ctx context.Context, req *CreateFlightRequest) (*CreateFlightResponse, error)
}

func RegisterFlightsServiceServer(s grpc.ServiceRegistrar, srv FlightsServiceServer) {
	s.RegisterService(&FlightsServiceDesc, srv)
}

var FlightsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FlightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SearchFlights", Handler: searchFlightsHandler},
		{MethodName: "GetFlight", Handler: getFlightHandler},
		{MethodName: "CreateFlight", Handler: createFlightHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flights/v1/flights.proto",
}

func searchFlightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SearchFlightsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).SearchFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: searchFlightsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).SearchFlights(ctx, req.(*SearchFlightsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getFlightHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetFlightRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).GetFlight(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getFlightMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).GetFlight(ctx, req.(*GetFlightRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func createFlightHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateFlightRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).CreateFlight(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createFlightMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).CreateFlight(ctx, req.(*CreateFlightRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls FlightsService using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) SearchFlights(ctx context.Context, in *SearchFlightsRequest, opts ...grpc.CallOption) (*SearchFlightsResponse, error) {
	out := new(SearchFlightsResponse)
	if err := c.cc.Invoke(ctx, searchFlightsMethod, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFlight(ctx context.Context, in *GetFlightRequest, opts ...grpc.CallOption) (*GetFlightResponse, error) {
	out := new(GetFlightResponse)
	if err := c.cc.Invoke(ctx, getFlightMethod, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateFlight(ctx context.Context, in *CreateFlightRequest, opts ...grpc.CallOption) (*CreateFlightResponse, error) {
	out := new(CreateFlightResponse)
	if err := c.cc.Invoke(ctx, createFlightMethod, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
