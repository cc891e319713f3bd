// Package pipeline holds the drainer's processing loops.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-ota618/shachoai-sub000/internal/metrics"
	"github.com/m-ota618/shachoai-sub000/internal/outbox"
)

type queueService interface {
	SubmitReady(ctx context.Context) (outbox.Result, error)
	Pending(ctx context.Context) (int, error)
}

// DrainPipeline drains the outbox once per interval.
type DrainPipeline struct {
	queue    queueService
	metrics  *metrics.Metrics
	interval time.Duration
	logger   *slog.Logger
}

func NewDrainPipeline(queue queueService, m *metrics.Metrics, interval time.Duration) *DrainPipeline {
	return &DrainPipeline{
		queue:    queue,
		metrics:  m,
		interval: interval,
		logger:   slog.With("pipe", "drain"),
	}
}

// Process runs one drain pass and sleeps the configured interval. It is
// called in a loop until the context is done.
func (p *DrainPipeline) Process(ctx context.Context) {
	res, err := p.queue.SubmitReady(ctx)
	if err != nil {
		p.logger.Error("drain failed", "err", err)
	} else if res.Processed > 0 {
		p.logger.Info("drained outbox",
			"processed", res.Processed,
			"succeeded", res.Succeeded,
			"failed", res.Failed,
		)
		if p.metrics != nil {
			p.metrics.DrainResultCounter.WithLabelValues("success").Add(float64(res.Succeeded))
			p.metrics.DrainResultCounter.WithLabelValues("failure").Add(float64(res.Failed))
		}
	}

	if p.metrics != nil {
		if pending, err := p.queue.Pending(ctx); err == nil {
			p.metrics.QueueDepthGauge.Set(float64(pending))
		}
		if err := p.metrics.CollectMemoryAndCpu(); err != nil {
			p.logger.Warn("host metrics collection failed", "err", err)
		}
	}

	p.sleep(ctx)
}

func (p *DrainPipeline) sleep(ctx context.Context) {
	if p.interval <= 0 {
		return
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
