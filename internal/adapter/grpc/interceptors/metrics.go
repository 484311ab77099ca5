package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
)

// UnaryMetricsInterceptor creates a gRPC unary interceptor that records
// Prometheus metrics for each request: a counter for total requests and
// a histogram for request duration.
func UnaryMetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		st, _ := status.FromError(err)

		telemetry.GRPCRequestsTotal.WithLabelValues(info.FullMethod, st.Code().String()).Inc()
		telemetry.GRPCRequestDuration.WithLabelValues(info.FullMethod).Observe(duration.Seconds())

		return resp, err
	}
}
