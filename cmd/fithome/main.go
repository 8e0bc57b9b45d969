package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/meltforce/fithome/internal/alarm"
	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/config"
	"github.com/meltforce/fithome/internal/mcp"
	"github.com/meltforce/fithome/internal/server"
	"github.com/meltforce/fithome/internal/session"
	"github.com/meltforce/fithome/internal/storage"
	"github.com/meltforce/fithome/internal/telemetry"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and FITHOME_* env when empty)")
	migrateOnly := flag.Bool("migrate-only", false, "run catalog migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("fithome starting", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateOnly {
		if err := cfg.ValidateDatabase(); err != nil {
			log.Error("invalid database config", "error", err)
			os.Exit(1)
		}
		if err := storage.RunMigrations(cfg.Database.MigrateURL()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	shutdownTracing, err := telemetry.Setup(ctx, "fithome", Version, cfg.OTel.Endpoint)
	if err != nil {
		log.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("telemetry shutdown", "error", err)
		}
	}()

	cat, err := openCatalog(ctx, cfg, log)
	if err != nil {
		log.Error("failed to load catalog", "source", cfg.Catalog.Source, "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "source", cfg.Catalog.Source, "days", cat.Len())

	player := alarm.Resolve(cfg.Alarm.Player)
	log.Info("alarm player", "player", fmt.Sprintf("%T", player))

	mgr := session.NewManager(cat, session.Config{
		InitialSeconds: cfg.Timer.InitialSeconds,
		QuickAdd:       cfg.Timer.QuickAdd,
		IdleTTL:        cfg.Session.IdleTTL,
		SweepInterval:  cfg.Session.SweepInterval,
		Player:         player,
	}, log)
	go mgr.Run(ctx)

	srv := server.New(mgr, cfg.Auth.APIKey, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcp.New(mcp.NewLocal(mgr), Version, log)))

	// Start server on tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	// SSE streams stay open until their sessions close, so sessions go first.
	mgr.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadEnv()
	}
	return config.Load(path)
}

// openCatalog loads the workout plan from the configured source. The database
// source is read once at startup.
func openCatalog(ctx context.Context, cfg *config.Config, log *slog.Logger) (*catalog.Catalog, error) {
	switch cfg.Catalog.Source {
	case "file":
		return catalog.Load(ctx, catalog.FileSource{Path: cfg.Catalog.Path})
	case "database":
		if err := storage.RunMigrations(cfg.Database.MigrateURL()); err != nil {
			return nil, err
		}
		log.Info("migrations applied", "driver", cfg.Database.Driver)

		store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return catalog.Load(ctx, store)
	default:
		return catalog.Default(), nil
	}
}
