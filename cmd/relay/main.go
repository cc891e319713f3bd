package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/m-ota618/shachoai-sub000/internal/config"
	"github.com/m-ota618/shachoai-sub000/internal/metrics"
	"github.com/m-ota618/shachoai-sub000/internal/relay"
	"github.com/m-ota618/shachoai-sub000/internal/tenant/pgstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config/relay.yaml", "path to the relay config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg := &config.Relay{}
	if err := config.NewLoader(configPath).Load(cfg); err != nil {
		return err
	}

	tenants, err := pgstore.New(ctx, cfg.Tenants.DSN)
	if err != nil {
		return fmt.Errorf("connecting to tenant registry: %w", err)
	}
	defer tenants.Close()

	m := metrics.New(cfg.Metrics.Enabled, cfg.Metrics.Port)
	e := relay.NewEcho(cfg.GetRelayConfig(), tenants, m)

	go func() {
		slog.Info("starting relay", "port", cfg.Server.Port, "env", cfg.Env)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("relay server stopped", "err", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}
