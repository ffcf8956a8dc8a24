package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type catalogServer interface {
	GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Server exposes a Lookup over gRPC.
type Server struct {
	lookup Lookup
	logger *slog.Logger
}

func NewServer(lookup Lookup, logger *slog.Logger) *Server {
	return &Server{lookup: lookup, logger: logger}
}

func (s *Server) GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := req.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	product, err := s.lookup.GetProduct(ctx, id)
	if errors.Is(err, domain.ErrProductNotFound) {
		return nil, status.Error(codes.NotFound, "product not found")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "catalog lookup failed", "product_id", id, "error", err)
		return nil, status.Error(codes.Internal, "failed to get product")
	}

	out, err := productToStruct(product)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode product")
	}
	return out, nil
}

func RegisterServer(s grpc.ServiceRegistrar, srv *Server) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*catalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProduct",
			Handler:    getProductHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

func getProductHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(catalogServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getProductMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(catalogServer).GetProduct(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
