// Package metrics exposes Prometheus collectors for the drainer and the
// relay, plus host memory/CPU gauges.
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

type Metrics struct {
	QueueDepthGauge      prometheus.Gauge
	DrainResultCounter   *prometheus.CounterVec
	RelayRequestsTotal   *prometheus.CounterVec
	RelayRequestDuration *prometheus.HistogramVec
	MemoryUsageGauge     *prometheus.GaugeVec
	CpuUsageGauge        *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New builds and registers the collectors. When startHttpServer is set,
// a /metrics endpoint is served on httpPort.
func New(startHttpServer bool, httpPort int) *Metrics {
	m := &Metrics{
		QueueDepthGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "outbox_queue_depth",
				Help: "Number of items currently persisted in the outbox.",
			},
		),
		DrainResultCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outbox_drained_items_total",
				Help: "Total number of drained items by result.",
			},
			[]string{"result"},
		),
		RelayRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_requests_total",
				Help: "Total number of relay requests.",
			},
			[]string{"action", "status"},
		),
		RelayRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_request_duration_seconds",
				Help:    "Relay request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		MemoryUsageGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "app_memory_usage_bytes",
				Help: "Amount of memory used by the application host.",
			},
			[]string{"type"},
		),
		CpuUsageGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "app_cpu_usage_percent",
				Help: "CPU usage percentage.",
			},
			[]string{"cpu"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.QueueDepthGauge,
		m.DrainResultCounter,
		m.RelayRequestsTotal,
		m.RelayRequestDuration,
		m.MemoryUsageGauge,
		m.CpuUsageGauge,
	)

	if startHttpServer {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
			slog.Info("starting metrics server", "port", httpPort)
			if err := http.ListenAndServe(fmt.Sprintf(":%d", httpPort), mux); err != nil {
				slog.Error("metrics server stopped", "err", err)
			}
		}()
	}

	return m
}

// CollectMemoryAndCpu samples host memory and per-core CPU usage.
func (m *Metrics) CollectMemoryAndCpu() error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("metrics: reading memory stats: %w", err)
	}
	m.MemoryUsageGauge.WithLabelValues("used").Set(float64(vm.Used))
	m.MemoryUsageGauge.WithLabelValues("total").Set(float64(vm.Total))

	percentages, err := cpu.Percent(0, true)
	if err != nil {
		return fmt.Errorf("metrics: reading cpu stats: %w", err)
	}
	for i, p := range percentages {
		m.CpuUsageGauge.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(p)
	}

	return nil
}
