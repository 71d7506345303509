// Package metrics exposes upload and cache counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	uploadsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgdrop_uploads_started_total",
		Help: "Upload attempts dispatched, by transport.",
	}, []string{"transport"})

	uploadsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgdrop_uploads_finished_total",
		Help: "Upload attempts that reached a terminal state, by transport and outcome.",
	}, []string{"transport", "outcome"})

	uploadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imgdrop_upload_duration_seconds",
		Help:    "Time from dispatch to terminal state.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"transport"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imgdrop_catalog_cache_hits_total",
		Help: "Catalog listings served from cache.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imgdrop_catalog_cache_misses_total",
		Help: "Catalog listings loaded from the database.",
	})
)

// Recorder receives upload lifecycle notifications.
type Recorder interface {
	UploadStarted(transport string)
	UploadFinished(transport, outcome string, elapsed time.Duration)
}

// Prometheus records into the package collectors.
type Prometheus struct{}

func (Prometheus) UploadStarted(transport string) {
	uploadsStarted.WithLabelValues(transport).Inc()
}

func (Prometheus) UploadFinished(transport, outcome string, elapsed time.Duration) {
	uploadsFinished.WithLabelValues(transport, outcome).Inc()
	uploadDuration.WithLabelValues(transport).Observe(elapsed.Seconds())
}

type Nop struct{}

func (Nop) UploadStarted(string)                         {}
func (Nop) UploadFinished(string, string, time.Duration) {}

func CacheHit()  { cacheHits.Inc() }
func CacheMiss() { cacheMisses.Inc() }

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, l logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	l.Info(ctx, "metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
