// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline on a dedicated listener.
package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	PositionsAccepted  prometheus.Counter
	PositionsDuplicate prometheus.Counter
	PositionsRejected  *prometheus.CounterVec // reason: rate_limited|not_active|invalid|unauthorized|error

	IngestDuration prometheus.Histogram

	EventsPublished    prometheus.Counter
	EventPublishErrs   prometheus.Counter
	PublisherConnected prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PositionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_positions_accepted_total",
			Help: "Total accepted position fixes.",
		}),
		PositionsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_positions_duplicate_total",
			Help: "Total fixes absorbed by the dedup window.",
		}),
		PositionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_positions_rejected_total",
			Help: "Total rejected fixes by reason.",
		}, []string{"reason"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracking_ingest_duration_seconds",
			Help:    "Duration of the ingestion pipeline per fix.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_events_published_total",
			Help: "Total position events published to the broker.",
		}),
		EventPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_event_publish_errors_total",
			Help: "Total position event publish errors.",
		}),
		PublisherConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracking_publisher_connected",
			Help: "1 if the broker connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.PositionsAccepted, c.PositionsDuplicate, c.PositionsRejected,
		c.IngestDuration,
		c.EventsPublished, c.EventPublishErrs, c.PublisherConnected,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

// Publisher metric hooks, consumed by the events publisher.

func (c *Collector) EventPublishedInc()  { c.EventsPublished.Inc() }
func (c *Collector) EventPublishErrInc() { c.EventPublishErrs.Inc() }
func (c *Collector) SetPublisherConnected(up bool) {
	if up {
		c.PublisherConnected.Set(1)
	} else {
		c.PublisherConnected.Set(0)
	}
}
func (c *Collector) ObserveIngest(d time.Duration) { c.IngestDuration.Observe(d.Seconds()) }
