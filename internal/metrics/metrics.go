package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the server's prometheus collectors on a private
// registry. All record methods are nil-safe so components can run
// without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	connectedPlayers prometheus.Gauge
	queueDepth       prometheus.Gauge
	proposedMatches  prometheus.Gauge
	activeGames      prometheus.Gauge

	connects         prometheus.Counter
	matchesProposed  prometheus.Counter
	matchesConfirmed prometheus.Counter
	matchesCancelled *prometheus.CounterVec
	queueEvictions   prometheus.Counter
	actionsApplied   *prometheus.CounterVec
	actionsRejected  prometheus.Counter
	gamesClosed      *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.connectedPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "connected_players",
		Help: "Connected player sessions.",
	})
	m.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "queue_depth",
		Help: "Players waiting in the matchmaking queue.",
	})
	m.proposedMatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "proposed_matches",
		Help: "Matches awaiting confirmation.",
	})
	m.activeGames = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "active_games",
		Help: "Running game sessions.",
	})

	m.connects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "connects_total",
		Help: "Player connects counted per the reconnect policy.",
	})
	m.matchesProposed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "matches_proposed_total",
		Help: "Match proposals created by the pairing engine.",
	})
	m.matchesConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "matches_confirmed_total",
		Help: "Matches confirmed by both players.",
	})
	m.matchesCancelled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "matches_cancelled_total",
		Help: "Cancelled matches by reason.",
	}, []string{"reason"})
	m.queueEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "queue_evictions_total",
		Help: "Queue entries evicted as stale.",
	})
	m.actionsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "actions_applied_total",
		Help: "Game actions applied by kind.",
	}, []string{"kind"})
	m.actionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "actions_rejected_total",
		Help: "Game actions rejected as unsupported.",
	})
	m.gamesClosed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "games_closed_total",
		Help: "Game sessions torn down by reason.",
	}, []string{"reason"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.connectedPlayers, m.queueDepth, m.proposedMatches, m.activeGames,
		m.connects, m.matchesProposed, m.matchesConfirmed, m.matchesCancelled,
		m.queueEvictions, m.actionsApplied, m.actionsRejected, m.gamesClosed,
	)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetConnectedPlayers(n int) {
	if m == nil {
		return
	}
	m.connectedPlayers.Set(float64(n))
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) SetProposedMatches(n int) {
	if m == nil {
		return
	}
	m.proposedMatches.Set(float64(n))
}

func (m *Metrics) SetActiveGames(n int) {
	if m == nil {
		return
	}
	m.activeGames.Set(float64(n))
}

func (m *Metrics) IncConnects() {
	if m == nil {
		return
	}
	m.connects.Inc()
}

func (m *Metrics) IncMatchesProposed() {
	if m == nil {
		return
	}
	m.matchesProposed.Inc()
}

func (m *Metrics) IncMatchesConfirmed() {
	if m == nil {
		return
	}
	m.matchesConfirmed.Inc()
}

func (m *Metrics) IncMatchesCancelled(reason string) {
	if m == nil {
		return
	}
	m.matchesCancelled.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncQueueEvictions(n int) {
	if m == nil {
		return
	}
	m.queueEvictions.Add(float64(n))
}

func (m *Metrics) IncActionsApplied(kind string) {
	if m == nil {
		return
	}
	m.actionsApplied.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncActionsRejected() {
	if m == nil {
		return
	}
	m.actionsRejected.Inc()
}

func (m *Metrics) IncGamesClosed(reason string) {
	if m == nil {
		return
	}
	m.gamesClosed.WithLabelValues(reason).Inc()
}
