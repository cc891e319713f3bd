// Package app wires the drainer daemon from its configuration.
package app

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/m-ota618/shachoai-sub000/internal/config"
	"github.com/m-ota618/shachoai-sub000/internal/gasapi"
	"github.com/m-ota618/shachoai-sub000/internal/locker"
	"github.com/m-ota618/shachoai-sub000/internal/metrics"
	"github.com/m-ota618/shachoai-sub000/internal/outbox"
	"github.com/m-ota618/shachoai-sub000/internal/pipeline"
	"github.com/m-ota618/shachoai-sub000/internal/store"
)

type pipelineProcessor interface {
	Process(ctx context.Context)
}

type App struct {
	Queue *outbox.Queue
	pipes []pipelineProcessor
}

func New(cfg *config.Drainer) (*App, error) {
	storeCfg := cfg.GetStoreConfig()

	var redisClient *redis.Client
	if storeCfg.Driver == store.DriverRedis {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Store.Redis.Addr})
		storeCfg.Redis = redisClient
	}

	itemStore, err := store.New(storeCfg)
	if err != nil {
		return nil, err
	}

	opts := []outbox.Option{
		outbox.WithMaxAttempts(cfg.Drain.MaxAttempts),
	}
	// A shared store needs a shared guard; a local one does not.
	if redisClient != nil {
		opts = append(opts, outbox.WithGuard(locker.NewRedis(redisClient, "outbox")))
	}

	queue := outbox.NewQueue(itemStore, gasapi.New(cfg.GetGasClientConfig()), opts...)

	m := metrics.New(cfg.Metrics.Enabled, cfg.Metrics.Port)
	drainPipe := pipeline.NewDrainPipeline(queue, m, cfg.GetDrainInterval())

	return &App{
		Queue: queue,
		pipes: []pipelineProcessor{drainPipe},
	}, nil
}

// Run executes every pipeline until the context is done.
func (a *App) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, proc := range a.pipes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.runPipelineUntilContextIsDone(ctx, proc)
		}()
	}

	wg.Wait()
}

func (a *App) runPipelineUntilContextIsDone(ctx context.Context, proc pipelineProcessor) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			proc.Process(ctx)
		}
	}
}
