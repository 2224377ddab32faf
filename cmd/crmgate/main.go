// Command crmgate is an MCP server that exposes a CRM account as tool
// calls for AI agents.
//
// The server speaks the Model Context Protocol over stdio: the host
// process (an agent runtime) owns stdin/stdout, so all logs go to stderr.
// Configuration is a YAML file plus the CRMGATE_API_TOKEN environment
// variable for the credential.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/crmgate/crmgate/internal/config"
	"github.com/crmgate/crmgate/internal/lacrm"
	"github.com/crmgate/crmgate/internal/observe"
	"github.com/crmgate/crmgate/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("crmgate exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "crmgate.yaml", "path to the YAML config file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("crmgate", server.Version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: server.Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	token, err := config.ResolveToken(cfg)
	if err != nil {
		if errors.Is(err, config.ErrNoToken) {
			return fmt.Errorf("no API token found: set %s or add api.token to %s", config.TokenEnvVar, *configPath)
		}
		return err
	}

	var opts []lacrm.Option
	if cfg.API.Endpoint != "" {
		opts = append(opts, lacrm.WithEndpoint(cfg.API.Endpoint))
	}
	client, err := lacrm.New(token, opts...)
	if err != nil {
		return err
	}

	slog.Info("starting crmgate", "version", server.Version, "metrics_addr", cfg.Server.MetricsAddr)
	return server.New(cfg, client, observe.DefaultMetrics()).Run(ctx)
}

// newLogger builds the process logger. Output goes to stderr because the
// MCP session owns stdout.
func newLogger(level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
