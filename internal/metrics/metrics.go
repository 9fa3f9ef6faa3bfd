// Package metrics holds the Prometheus registry and collectors for the events API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventsapi"

// Registry is the registry every collector in this package is registered with.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// EventChangesPublished counts lifecycle notifications by change type and outcome.
var EventChangesPublished = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_changes_published_total",
		Help:      "Event lifecycle notifications handed to the publisher",
	},
	[]string{"type", "outcome"},
)

// CreatorNameLookups counts creator display-name lookups served by the cache.
var CreatorNameLookups = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "creator_name_lookups_total",
		Help:      "Creator display-name lookups by cache result",
	},
	[]string{"result"},
)

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
