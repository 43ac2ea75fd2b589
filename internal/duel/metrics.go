package duel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	duelsPaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duel_sessions_paired_total",
		Help: "Number of sessions created by the matchmaker.",
	})
	duelsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duel_sessions_started_total",
		Help: "Number of sessions that reached the in-progress state.",
	})
	duelsFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duel_sessions_finished_total",
		Help: "Number of sessions that finished, forfeits included.",
	})
	duelsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duel_sessions_cancelled_total",
		Help: "Number of sessions cancelled before starting.",
	})
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duel_submissions_total",
		Help: "Answer submissions by outcome.",
	}, []string{"result"})
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "duel_queue_depth",
		Help: "Players currently waiting for an opponent across all subjects.",
	})
)

const (
	submissionAccepted = "accepted"
	submissionRejected = "rejected"
)
