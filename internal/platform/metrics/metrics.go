package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered    prometheus.Counter
	ConfessionsCreated prometheus.Counter
	CommentsCreated    prometheus.Counter
	ReactionsApplied   *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	EventsDropped      prometheus.Counter
	LiveClients        prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confide_users_registered_total",
			Help: "Total number of anonymous users registered",
		}),
		ConfessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confide_confessions_created_total",
			Help: "Total number of confessions created",
		}),
		CommentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confide_comments_created_total",
			Help: "Total number of comments created",
		}),
		ReactionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confide_reactions_applied_total",
			Help: "Reaction ledger transitions by resulting action",
		}, []string{"action"}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confide_live_events_published_total",
			Help: "Live events handed to the broadcaster by type",
		}, []string{"type"}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confide_live_events_dropped_total",
			Help: "Live events dropped because a client or mirror buffer was full",
		}),
		LiveClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "confide_live_clients",
			Help: "Currently connected websocket clients",
		}),
	}
}

// NewForTest returns metrics bound to a private registry so parallel tests do
// not trip duplicate registration panics.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "confide_users_registered_total",
			Help: "Total number of anonymous users registered",
		}),
		ConfessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "confide_confessions_created_total",
			Help: "Total number of confessions created",
		}),
		CommentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "confide_comments_created_total",
			Help: "Total number of comments created",
		}),
		ReactionsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confide_reactions_applied_total",
			Help: "Reaction ledger transitions by resulting action",
		}, []string{"action"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confide_live_events_published_total",
			Help: "Live events handed to the broadcaster by type",
		}, []string{"type"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "confide_live_events_dropped_total",
			Help: "Live events dropped because a client or mirror buffer was full",
		}),
		LiveClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "confide_live_clients",
			Help: "Currently connected websocket clients",
		}),
	}
}
