// Package metrics implements the MetricsRecorder port on Prometheus and
// serves the /metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// Recorder implements ports.MetricsRecorder on a Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	fetchTotal   *prometheus.CounterVec
	unitTotal    *prometheus.CounterVec
	unitNew      *prometheus.GaugeVec
	unitChanged  *prometheus.GaugeVec
	unitDeleted  *prometheus.GaugeVec
	lastSyncUnix *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymsync",
			Name:      "fetch_total",
			Help:      "Source fetch attempts by gym and outcome.",
		}, []string{"gym", "status"}),
		unitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymsync",
			Name:      "unit_total",
			Help:      "Completed unit passes by gym, event type and terminal state.",
		}, []string{"gym", "event_type", "state"}),
		unitNew: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gymsync",
			Name:      "unit_new_events",
			Help:      "New events found in the most recent pass of a unit.",
		}, []string{"gym", "event_type"}),
		unitChanged: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gymsync",
			Name:      "unit_changed_events",
			Help:      "Changed events in the most recent pass of a unit.",
		}, []string{"gym", "event_type"}),
		unitDeleted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gymsync",
			Name:      "unit_deleted_events",
			Help:      "Soft-deleted events in the most recent pass of a unit.",
		}, []string{"gym", "event_type"}),
		lastSyncUnix: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gymsync",
			Name:      "unit_last_sync_timestamp_seconds",
			Help:      "Unix time of the most recent completed pass of a unit.",
		}, []string{"gym", "event_type"}),
	}
	r.registry.MustRegister(r.fetchTotal, r.unitTotal, r.unitNew, r.unitChanged, r.unitDeleted, r.lastSyncUnix)
	return r
}

// RecordFetch counts one source request by outcome.
func (r *Recorder) RecordFetch(gymID string, status string) {
	r.fetchTotal.WithLabelValues(gymID, status).Inc()
}

// RecordUnit records the outcome of one unit pass.
func (r *Recorder) RecordUnit(gymID string, eventType entities.EventType, state string, summary entities.ComparisonSummary) {
	et := string(eventType)
	r.unitTotal.WithLabelValues(gymID, et, state).Inc()
	r.unitNew.WithLabelValues(gymID, et).Set(float64(summary.New))
	r.unitChanged.WithLabelValues(gymID, et).Set(float64(summary.Changed))
	r.unitDeleted.WithLabelValues(gymID, et).Set(float64(summary.Deleted))
	r.lastSyncUnix.WithLabelValues(gymID, et).SetToCurrentTime()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Nop is a no-op MetricsRecorder for deployments without a metrics
// endpoint.
type Nop struct{}

// RecordFetch implements ports.MetricsRecorder.
func (Nop) RecordFetch(string, string) {}

// RecordUnit implements ports.MetricsRecorder.
func (Nop) RecordUnit(string, entities.EventType, string, entities.ComparisonSummary) {}
