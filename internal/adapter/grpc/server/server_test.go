package server

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

func dial(t *testing.T, lis *bufconn.Listener) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealthFollowsReadiness(t *testing.T) {
	// Arrange
	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(config.JWTConfig{Secret: "s3cret"}, zap.NewNop())
	go srv.Serve(lis)
	defer srv.Stop()

	ready := make(chan bool, 1)
	ready <- true
	probe := func(context.Context) bool {
		select {
		case v := <-ready:
			ready <- v
			return v
		default:
			return false
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.WatchReadiness(ctx, probe, 10*time.Millisecond)

	client := healthpb.NewHealthClient(dial(t, lis))

	// Act / Assert
	waitStatus(t, client, healthpb.HealthCheckResponse_SERVING)

	<-ready
	ready <- false
	waitStatus(t, client, healthpb.HealthCheckResponse_NOT_SERVING)
}

func waitStatus(t *testing.T, client healthpb.HealthClient, want healthpb.HealthCheckResponse_ServingStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		if err == nil && resp.Status == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %s, last response %v err %v", want, resp, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
