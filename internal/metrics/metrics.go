// Package metrics exposes crawl progress as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

const namespace = "domaincrawl"

// Metrics holds the collectors of one run. It satisfies the state store's
// observer and the crawl engine's recorder interfaces.
type Metrics struct {
	registry *prometheus.Registry

	Fetches        *prometheus.CounterVec
	FetchedBytes   prometheus.Counter
	Domains        *prometheus.GaugeVec
	Discoveries    *prometheus.CounterVec
	PersistErrors  prometheus.Counter
	DomainsCrawled prometheus.Counter
	CrawlDuration  prometheus.Histogram
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "URLs fetched, by link kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_bytes_total",
			Help:      "Body bytes written to disk.",
		}),
		Domains: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domains",
			Help:      "Domains per state.",
		}, []string{"state"}),
		Discoveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discoveries_total",
			Help:      "Cross-domain candidates proposed, by decision.",
		}, []string{"decision"}),
		PersistErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_errors_total",
			Help:      "Failed rewrites of the domain list files.",
		}),
		DomainsCrawled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domains_crawled_total",
			Help:      "Domain crawls finished.",
		}),
		CrawlDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "domain_crawl_duration_seconds",
			Help:      "Duration of a domain crawl.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveStates sets the per-state domain gauges.
func (m *Metrics) ObserveStates(pending, processing, scraped int) {
	m.Domains.WithLabelValues(model.StatePending.String()).Set(float64(pending))
	m.Domains.WithLabelValues(model.StateProcessing.String()).Set(float64(processing))
	m.Domains.WithLabelValues(model.StateScraped.String()).Set(float64(scraped))
}

// ObserveDiscovery counts a proposed candidate.
func (m *Metrics) ObserveDiscovery(_ string, admitted bool) {
	decision := "rejected"
	if admitted {
		decision = "admitted"
	}
	m.Discoveries.WithLabelValues(decision).Inc()
}

// ObservePersistError counts a failed list rewrite.
func (m *Metrics) ObservePersistError() {
	m.PersistErrors.Inc()
}

// RecordFetch counts a fetch and its saved bytes.
func (m *Metrics) RecordFetch(rec *model.FetchRecord) {
	outcome := "ok"
	if !rec.OK() {
		outcome = "failed"
	}
	m.Fetches.WithLabelValues(rec.Kind.String(), outcome).Inc()
	if rec.Bytes > 0 {
		m.FetchedBytes.Add(float64(rec.Bytes))
	}
}

// ObserveDomain records a finished domain crawl.
func (m *Metrics) ObserveDomain(stats *model.DomainStats) {
	m.DomainsCrawled.Inc()
	if d := stats.Duration(); d > 0 {
		m.CrawlDuration.Observe(d.Seconds())
	}
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve serves /metrics on addr until ctx is done. The listener is opened
// before Serve returns so bind errors are reported synchronously.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) (net.Addr, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	return ln.Addr(), nil
}
