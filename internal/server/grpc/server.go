// Package grpc serves the standard gRPC health service. The client pings it
// to decide whether it is online.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/invaders/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-checked service name besides the overall "".
const ServiceName = "invaders.API"

// Prober reports whether a backing dependency is usable.
type Prober func(ctx context.Context) error

// ProbeObserver is told the outcome of each probe.
type ProbeObserver func(up bool)

type GRPCServer struct {
	address       string
	logger        logging.Logger
	health        *health.Server
	probe         Prober
	probeInterval time.Duration
	onProbe       ProbeObserver
}

func NewGRPCServer(a string, l logging.Logger, probe Prober, probeInterval time.Duration, onProbe ProbeObserver) *GRPCServer {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		health:        health.NewServer(),
		probe:         probe,
		probeInterval: probeInterval,
		onProbe:       onProbe,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.checkOnce(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) watch(ctx context.Context) {
	if s.probe == nil || s.probeInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkOnce(ctx)
		}
	}
}

// checkOnce runs the probe and publishes SERVING or NOT_SERVING. Without a
// probe the server is always SERVING.
func (s *GRPCServer) checkOnce(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.probe(probeCtx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn(ctx, "health probe failed", "error", err)
		}
	}
	if s.onProbe != nil {
		s.onProbe(status == healthpb.HealthCheckResponse_SERVING)
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
