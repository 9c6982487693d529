package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/domain/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the claim desk metrics and their registry
type Collector struct {
	registry *prometheus.Registry

	eventsTotal        *prometheus.CounterVec
	claimsSubmitted    prometheus.Counter
	claimDecisions     *prometheus.CounterVec
	claimsByStatus     *prometheus.GaugeVec
	documentsTotal     *prometheus.CounterVec
	submittedAmount    prometheus.Counter
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with Go runtime and process metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimdesk_events_total",
				Help: "Total number of dispatched domain events",
			},
			[]string{"type"},
		),
		claimsSubmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "claimdesk_claims_submitted_total",
				Help: "Total number of submitted claims",
			},
		),
		claimDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimdesk_claim_decisions_total",
				Help: "Total number of approve and reject operations",
			},
			[]string{"status"},
		),
		claimsByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "claimdesk_claims_by_status",
				Help: "Number of claims currently in each status",
			},
			[]string{"status"},
		),
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimdesk_documents_total",
				Help: "Total number of picked supporting documents by outcome",
			},
			[]string{"outcome"},
		),
		submittedAmount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "claimdesk_submitted_amount_total",
				Help: "Sum of submitted claim totals",
			},
		),
		apiRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimdesk_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		apiRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "claimdesk_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	c.registry.MustRegister(
		c.eventsTotal,
		c.claimsSubmitted,
		c.claimDecisions,
		c.claimsByStatus,
		c.documentsTotal,
		c.submittedAmount,
		c.apiRequestsTotal,
		c.apiRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the registry the metrics are registered on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the Prometheus exposition handler
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Attach subscribes the collector to every event
func (c *Collector) Attach(d dispatcher.Dispatcher) {
	d.SubscribeNamed(dispatcher.AnyType, "metrics", c.HandleEvent)
}

// HandleEvent updates counters for one event
func (c *Collector) HandleEvent(ctx context.Context, evt *event.Event) error {
	c.eventsTotal.WithLabelValues(evt.Type.String()).Inc()

	switch evt.Type {
	case event.TypeClaimSubmitted:
		c.claimsSubmitted.Inc()
		c.submittedAmount.Add(evt.GetPayloadFloat(event.KeyTotal))
		c.claimsByStatus.WithLabelValues(evt.GetPayloadString(event.KeyStatus)).Inc()
	case event.TypeClaimStatusChanged:
		status := evt.GetPayloadString(event.KeyStatus)
		c.claimDecisions.WithLabelValues(status).Inc()
		c.claimsByStatus.WithLabelValues(evt.GetPayloadString(event.KeyPrevious)).Dec()
		c.claimsByStatus.WithLabelValues(status).Inc()
	case event.TypeDocumentAccepted:
		c.documentsTotal.WithLabelValues("accepted").Inc()
	case event.TypeDocumentRejected:
		c.documentsTotal.WithLabelValues("rejected").Inc()
	}
	return nil
}

// RecordAPIRequest records an HTTP request
func (c *Collector) RecordAPIRequest(method, path string, status int, duration time.Duration) {
	c.apiRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.apiRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
