package server

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/seu-repo/sigec-posto/internal/adapter/grpc/interceptors"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// ServiceName is the health entry reported for the whole back office.
const ServiceName = "sigec.posto.v1.BackOffice"

// ReadinessProbe reports whether every dependency is usable.
type ReadinessProbe func(ctx context.Context) bool

// GRPCServer exposes the standard health protocol to the platform and other
// internal services.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	log    *zap.Logger
}

func NewGRPCServer(jwtCfg config.JWTConfig, log *zap.Logger) *GRPCServer {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.UnaryLoggingInterceptor(log),
			interceptors.UnaryMetricsInterceptor(),
			interceptors.UnaryAuthInterceptor(jwtCfg),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamAuthInterceptor(jwtCfg),
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	// Enable reflection for debugging (e.g. grpcurl)
	reflection.Register(s)

	return &GRPCServer{
		server: s,
		health: hs,
		log:    log,
	}
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// WatchReadiness mirrors probe into the health service every interval until
// ctx is cancelled.
func (s *GRPCServer) WatchReadiness(ctx context.Context, probe ReadinessProbe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		st := healthpb.HealthCheckResponse_NOT_SERVING
		if probe(ctx) {
			st = healthpb.HealthCheckResponse_SERVING
		}
		if st != last {
			s.health.SetServingStatus(ServiceName, st)
			s.health.SetServingStatus("", st)
			s.log.Info("gRPC health status changed", zap.String("status", st.String()))
			last = st
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
