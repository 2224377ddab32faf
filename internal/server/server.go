// Package server wires the CRM client, schema composer, and tool families
// into a running MCP server.
//
// The MCP session itself speaks JSON-RPC over stdio, so the process logs to
// stderr only. An optional HTTP listener serves Prometheus metrics and
// health probes next to the stdio transport.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/crmgate/crmgate/internal/config"
	"github.com/crmgate/crmgate/internal/health"
	"github.com/crmgate/crmgate/internal/lacrm"
	"github.com/crmgate/crmgate/internal/observe"
	"github.com/crmgate/crmgate/internal/schema"
	"github.com/crmgate/crmgate/internal/tools"
	"github.com/crmgate/crmgate/internal/tools/contacts"
	"github.com/crmgate/crmgate/internal/tools/discovery"
	"github.com/crmgate/crmgate/internal/tools/events"
	"github.com/crmgate/crmgate/internal/tools/files"
	"github.com/crmgate/crmgate/internal/tools/notes"
	"github.com/crmgate/crmgate/internal/tools/pipelines"
	"github.com/crmgate/crmgate/internal/tools/tasks"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// shutdownTimeout bounds how long the metrics listener may take to drain
// on shutdown.
const shutdownTimeout = 5 * time.Second

// Server bundles the MCP server with its optional metrics listener.
type Server struct {
	mcp         *mcpsdk.Server
	client      *lacrm.Client
	metricsAddr string
}

// New builds the MCP server and registers every tool family against the
// given CRM client.
func New(cfg *config.Config, client *lacrm.Client, metrics *observe.Metrics) *Server {
	s := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "crmgate",
		Version: Version,
	}, nil)

	deps := tools.Deps{API: client, Metrics: metrics}
	composer := schema.NewComposer(client)

	contacts.Register(s, deps)
	events.Register(s, deps)
	tasks.Register(s, deps)
	notes.Register(s, deps)
	pipelines.Register(s, deps)
	files.Register(s, deps)
	discovery.Register(s, deps, composer)

	return &Server{
		mcp:         s,
		client:      client,
		metricsAddr: cfg.Server.MetricsAddr,
	}
}

// Run serves the MCP session over stdio until ctx is cancelled or the
// client disconnects. When a metrics address is configured, the metrics
// and health listener runs alongside it.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.mcp.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server: stdio session: %w", err)
		}
		return nil
	})

	if s.metricsAddr != "" {
		g.Go(func() error {
			return s.serveMetrics(ctx)
		})
	}

	return g.Wait()
}

// serveMetrics runs the Prometheus and health endpoint listener until ctx
// is cancelled.
func (s *Server) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(health.Checker{Name: "crm", Check: s.client.Ping}).Register(mux)

	srv := &http.Server{
		Addr:    s.metricsAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("metrics listener started", "addr", s.metricsAddr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("server: metrics shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: metrics listener: %w", err)
		}
		return nil
	}
}
