package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vaultview/vaultview/pkg/configuration"
	"github.com/vaultview/vaultview/pkg/devices"
	"github.com/vaultview/vaultview/pkg/logging"
	"github.com/vaultview/vaultview/pkg/portfolio"
)

// Server wires the aggregation layer behind an HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *zerolog.Logger
}

func NewServer(config configuration.Configuration, logger *zerolog.Logger, scrubber logging.ScrubbingWriter) *Server {
	promRegistry := prometheus.NewRegistry()
	metrics := NewMetrics(promRegistry)

	registry := portfolio.NewRegistry()
	orchestrator := portfolio.NewOrchestrator(registry, config, logger)
	orchestrator.SetObserver(metrics)
	fetcher := devices.NewFetcher(config, logger)

	handler := NewHandler(registry, orchestrator, fetcher, metrics, logger, scrubber)

	return &Server{
		httpServer: &http.Server{
			Addr:              config.GetString(configuration.LISTEN_ADDR),
			Handler:           handler.Router(promRegistry),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("serving portfolio API")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
