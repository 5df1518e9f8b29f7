package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Lobbies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luna_lobbies_total",
			Help: "Resolved lobbies by outcome",
		},
		[]string{"outcome"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "luna_active_sessions",
			Help: "Lobbies and games currently running",
		},
	)
	SessionErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "luna_session_errors_total",
			Help: "Sessions aborted by a fatal error",
		},
	)
	Checkpoints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luna_statistics_checkpoints_total",
			Help: "Statistics checkpoints by name",
		},
		[]string{"checkpoint"},
	)
	RecorderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luna_statistics_errors_total",
			Help: "Failed statistics writes by checkpoint",
		},
		[]string{"checkpoint"},
	)
	GameDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "luna_game_duration_seconds",
			Help:    "Wall time of finished games",
			Buckets: []float64{60, 120, 300, 600, 1200, 1800, 3600},
		},
	)
	GamePlayers = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "luna_game_players",
			Help:    "Players per finished game",
			Buckets: prometheus.LinearBuckets(2, 1, 9),
		},
	)
)

func init() {
	prometheus.MustRegister(Lobbies, ActiveSessions, SessionErrors, Checkpoints, RecorderErrors, GameDuration, GamePlayers)
}
