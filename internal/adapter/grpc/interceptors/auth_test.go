package interceptors

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

func TestUnaryAuthInterceptor(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret"}
	interceptor := UnaryAuthInterceptor(cfg)
	called := false
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		return "ok", nil
	}

	tests := []struct {
		name     string
		method   string
		ctx      context.Context
		wantCode codes.Code
	}{
		{"health is open", "/grpc.health.v1.Health/Check", context.Background(), codes.OK},
		{"missing metadata", "/sigec.posto.v1.Admin/Do", context.Background(), codes.Unauthenticated},
		{"missing header", "/sigec.posto.v1.Admin/Do", metadata.NewIncomingContext(context.Background(), metadata.MD{}), codes.Unauthenticated},
		{"bad token", "/sigec.posto.v1.Admin/Do", metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope")), codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			_, err := interceptor(tt.ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)

			if got := status.Code(err); got != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, got)
			}
			if called != (tt.wantCode == codes.OK) {
				t.Errorf("handler called=%v", called)
			}
		})
	}
}
