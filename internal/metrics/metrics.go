// Package metrics exposes the service's Prometheus instrumentation on a
// dedicated registry, keeping default-registry noise out of the scrape.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var auto = promauto.With(registry)

var (
	// CyclesTotal counts started refresh cycles.
	CyclesTotal = auto.NewCounter(prometheus.CounterOpts{
		Name: "gramps_ha_refresh_cycles_total",
		Help: "Number of refresh cycles started.",
	})

	// CycleFailures counts cycles that degraded to an empty snapshot.
	CycleFailures = auto.NewCounter(prometheus.CounterOpts{
		Name: "gramps_ha_refresh_failures_total",
		Help: "Number of refresh cycles that failed and published an empty snapshot.",
	})

	// CycleDuration observes end-to-end refresh cycle latency.
	CycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gramps_ha_refresh_duration_seconds",
		Help:    "Duration of refresh cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// UpcomingBirthdays tracks the result count of the last cycle.
	UpcomingBirthdays = auto.NewGauge(prometheus.GaugeOpts{
		Name: "gramps_ha_upcoming_birthdays",
		Help: "Number of upcoming birthdays in the current snapshot.",
	})

	// PeopleListed tracks the size of the last fetched person list.
	PeopleListed = auto.NewGauge(prometheus.GaugeOpts{
		Name: "gramps_ha_people_listed",
		Help: "Number of person records returned by the last list call.",
	})

	// EventFetches counts individual event lookups.
	EventFetches = auto.NewCounter(prometheus.CounterOpts{
		Name: "gramps_ha_event_fetches_total",
		Help: "Number of event fetches issued by the pipeline.",
	})

	// EventFetchFailures counts lookups that were skipped as missing data.
	EventFetchFailures = auto.NewCounter(prometheus.CounterOpts{
		Name: "gramps_ha_event_fetch_failures_total",
		Help: "Number of event fetches that failed and were treated as missing data.",
	})

	// HTTPRequests counts requests on the serving surface per route.
	HTTPRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramps_ha_http_requests_total",
			Help: "Number of HTTP requests served, labeled by route.",
		},
		[]string{"route"},
	)
)

// Registry returns the registry handed to the metrics HTTP handler.
func Registry() *prometheus.Registry {
	return registry
}
