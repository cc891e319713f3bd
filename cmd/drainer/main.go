package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/m-ota618/shachoai-sub000/internal/app"
	"github.com/m-ota618/shachoai-sub000/internal/config"
	"github.com/m-ota618/shachoai-sub000/internal/healthcheck"
)

func main() {
	configPath := flag.String("config", "config/drainer.yaml", "path to the drainer config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	run(ctx, *configPath)
}

func run(ctx context.Context, configPath string) {
	cfg := &config.Drainer{}
	if err := config.NewLoader(configPath).Load(cfg); err != nil {
		log.Fatal(err)
	}

	runner, err := app.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := healthcheck.NewServer(cfg.HealthCheck.Port).ListenAndServe(ctx); err != nil {
			log.Print(err.Error())
		}
	}()

	runner.Run(ctx)
	wg.Wait()
}
