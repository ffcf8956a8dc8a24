package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCLookup fetches products from a remote catalog service.
type GRPCLookup struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

func NewGRPCLookup(conn grpc.ClientConnInterface, timeout time.Duration) *GRPCLookup {
	return &GRPCLookup{conn: conn, timeout: timeout}
}

// Dial opens an instrumented plaintext connection to addr.
func Dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog service: %w", err)
	}
	return conn, nil
}

func (l *GRPCLookup) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := structpb.NewStruct(map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}

	resp := &structpb.Struct{}
	if err := l.conn.Invoke(ctx, getProductMethod, req, resp); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog GetProduct failed: %w", err)
	}

	return productFromStruct(resp)
}
