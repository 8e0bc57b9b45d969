// Command fithome-mcp serves the workout tools over MCP stdio, either against
// a running fithome server or an in-process session manager.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/fithome/internal/alarm"
	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/config"
	"github.com/meltforce/fithome/internal/mcp"
	"github.com/meltforce/fithome/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "base URL of a running fithome server (in-process when empty)")
	apiKey := flag.String("api-key", os.Getenv("FITHOME_AUTH_API_KEY"), "API key for -server")
	configPath := flag.String("config", "", "config file for in-process mode")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend mcp.Backend
	if *serverURL != "" {
		backend = mcp.NewHTTPClient(*serverURL, *apiKey)
		log.Info("using remote server", "url", *serverURL)
	} else {
		mgr, err := localManager(*configPath, log)
		if err != nil {
			log.Error("failed to start sessions", "error", err)
			os.Exit(1)
		}
		defer mgr.Shutdown()
		go mgr.Run(ctx)
		backend = mcp.NewLocal(mgr)
	}

	if err := mcpserver.ServeStdio(mcp.New(backend, Version, log)); err != nil {
		log.Error("serve MCP", "error", err)
		os.Exit(1)
	}
}

func localManager(configPath string, log *slog.Logger) (*session.Manager, error) {
	cfg, err := config.LoadEnv()
	if configPath != "" {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return nil, err
	}

	cat := catalog.Default()
	if cfg.Catalog.Source == "file" {
		if cat, err = catalog.Load(context.Background(), catalog.FileSource{Path: cfg.Catalog.Path}); err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
	}

	return session.NewManager(cat, session.Config{
		InitialSeconds: cfg.Timer.InitialSeconds,
		QuickAdd:       cfg.Timer.QuickAdd,
		IdleTTL:        cfg.Session.IdleTTL,
		SweepInterval:  cfg.Session.SweepInterval,
		Player:         alarm.Resolve(cfg.Alarm.Player),
	}, log), nil
}
