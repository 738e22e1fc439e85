package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"bookingrisk/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// PredictorServiceName is the service name reported by the gRPC health server.
const PredictorServiceName = "bookingrisk.v1.Predictor"

const requestIDMetadataKey = "x-request-id"

// GRPCServer exposes the standard gRPC health service so orchestrators can
// check model readiness over gRPC as well as /readyz.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	ready    func() bool
	log      zerolog.Logger
}

func NewGRPCServer(cfg config.GRPCConfig, ready func() bool, logger *zerolog.Logger) (*GRPCServer, error) {
	addr := fmt.Sprintf(":%d", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen %s: %w", addr, err)
	}

	serverLogger := zerolog.Nop()
	if logger != nil {
		serverLogger = logger.With().Str("component", "grpc").Logger()
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(LoggingUnaryInterceptor(&serverLogger)))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	s := &GRPCServer{
		server:   grpcServer,
		health:   healthServer,
		listener: lis,
		ready:    ready,
		log:      serverLogger,
	}
	s.Refresh()
	return s, nil
}

// Refresh copies the readiness check into the health server.
func (s *GRPCServer) Refresh() {
	st := healthpb.HealthCheckResponse_SERVING
	if s.ready != nil && !s.ready() {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(PredictorServiceName, st)
}

func (s *GRPCServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *GRPCServer) Serve() error {
	s.log.Info().Str("addr", s.Addr()).Msg("gRPC health listening")
	return s.server.Serve(s.listener)
}

// Shutdown reports NOT_SERVING to watchers, then stops gracefully or
// forcibly once ctx is done.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s.server == nil {
		return
	}
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	}
	_ = s.listener.Close()
}

func LoggingUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	base := zerolog.Nop()
	if logger != nil {
		base = *logger
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := requestIDFromMetadata(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			code = status.Code(err)
		}
		remote := "unknown"
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		base.Info().
			Str("request_id", requestID).
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Str("remote", remote).
			Dur("duration", time.Since(start)).
			Msg("grpc request")
		return resp, err
	}
}

func requestIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(requestIDMetadataKey); len(vals) > 0 && vals[0] != "" && len(vals[0]) <= 128 {
			return vals[0]
		}
	}
	return uuid.NewString()
}
