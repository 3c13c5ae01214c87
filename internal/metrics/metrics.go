package metrics

import (
	"net/http"
	"strconv"
	"time"

	"rtoassist/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service's Prometheus collectors.
type Recorder struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	statusUpdates   *prometheus.CounterVec
}

func New() *Recorder {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rto_submissions_total",
		Help: "RTO assistance submissions by service type and outcome",
	}, []string{"service_type", "outcome"})

	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rto_status_updates_total",
		Help: "Dashboard status updates by target status and outcome",
	}, []string{"status", "outcome"})

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestDuration,
		requestTotal,
		submissions,
		statusUpdates,
	)

	return &Recorder{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		submissions:     submissions,
		statusUpdates:   statusUpdates,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return r.handler
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	r.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	r.requestTotal.WithLabelValues(method, path, code).Inc()
}

func (r *Recorder) ObserveSubmission(serviceType types.ServiceType, outcome string) {
	label := string(serviceType)
	if !serviceType.Valid() {
		label = "unknown"
	}
	r.submissions.WithLabelValues(label, outcome).Inc()
}

func (r *Recorder) ObserveStatusUpdate(status types.RequestStatus, outcome string) {
	label := string(status)
	if !status.Valid() {
		label = "unknown"
	}
	r.statusUpdates.WithLabelValues(label, outcome).Inc()
}
