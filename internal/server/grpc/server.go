// Package grpc serves the standard gRPC health service and keeps its status
// in step with the key-value store.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

// BoardServiceName is the health service name reported next to the overall
// ("") status.
const BoardServiceName = "siegesync.Board"

// HealthServer serves grpc.health.v1 with statuses driven by store pings.
type HealthServer struct {
	address  string
	pinger   kv.Pinger
	interval time.Duration
	logger   logging.Logger
	health   *health.Server
	serving  *bool
}

// NewHealthServer returns a server that probes pinger every interval. A nil
// pinger is always reported as serving.
func NewHealthServer(address string, pinger kv.Pinger, interval time.Duration, l logging.Logger) *HealthServer {
	if l == nil {
		l = logging.Nop()
	}
	return &HealthServer{
		address:  address,
		pinger:   pinger,
		interval: interval,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())
	return s.serve(ctx, listen)
}

func (s *HealthServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)

	go func() {
		if s.interval <= 0 {
			<-ctx.Done()
		} else {
			s.probeLoop(ctx)
		}
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *HealthServer) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

// probe pings the store and publishes the result. Only transitions are
// logged.
func (s *HealthServer) probe(ctx context.Context) {
	serving := true
	if s.pinger != nil {
		pctx := ctx
		if s.interval > 0 {
			var cancel context.CancelFunc
			pctx, cancel = context.WithTimeout(ctx, s.interval)
			defer cancel()
		}
		if err := s.pinger.Ping(pctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			serving = false
			if s.serving == nil || *s.serving {
				s.logger.Warn(ctx, "store probe failed", "error", err)
			}
		}
	}

	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(BoardServiceName, st)

	if s.serving == nil || *s.serving != serving {
		s.logger.Info(ctx, "health status", "status", st.String())
	}
	s.serving = &serving
}
