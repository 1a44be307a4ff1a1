// Package metrics exposes Prometheus metrics for the identity cache, the
// classification pipeline and outbound backend calls.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/skincare/internal/client/pipeline"
)

// Collector implements identity.Observer and pipeline.Observer.
type Collector struct {
	identity    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	uploads     *prometheus.CounterVec
	uploadTime  prometheus.Histogram
	inFlight    prometheus.Gauge
	requests    *prometheus.CounterVec
	reqLatency  *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		identity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skincare_identity_resolutions_total",
			Help: "Identity resolutions by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skincare_pipeline_transitions_total",
			Help: "Pipeline state changes.",
		}, []string{"from", "to"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skincare_uploads_total",
			Help: "Image uploads by outcome.",
		}, []string{"outcome"}),
		uploadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skincare_upload_duration_seconds",
			Help:    "Time from submit to the end of the upload workflow.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skincare_backend_requests_in_flight",
			Help: "Backend requests currently running.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skincare_backend_requests_total",
			Help: "Backend requests by method and status code.",
		}, []string{"code", "method"}),
		reqLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skincare_backend_request_duration_seconds",
			Help:    "Backend request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}

	reg.MustRegister(
		c.identity,
		c.transitions,
		c.uploads,
		c.uploadTime,
		c.inFlight,
		c.requests,
		c.reqLatency,
	)

	return c
}

func (c *Collector) IdentityResolved(outcome string) {
	c.identity.WithLabelValues(outcome).Inc()
}

func (c *Collector) StateChanged(from, to pipeline.State) {
	c.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (c *Collector) UploadFinished(outcome string, elapsed time.Duration) {
	c.uploads.WithLabelValues(outcome).Inc()
	c.uploadTime.Observe(elapsed.Seconds())
}

// InstrumentTransport wraps next so backend calls are counted and timed.
func (c *Collector) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(c.inFlight,
		promhttp.InstrumentRoundTripperCounter(c.requests,
			promhttp.InstrumentRoundTripperDuration(c.reqLatency, next)))
}

// Router serves /metrics and /healthz.
func Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Serve listens on addr until ctx is done. The bound address is sent on
// ready once the listener is up; ready may be nil.
func Serve(ctx context.Context, addr string, h http.Handler, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
