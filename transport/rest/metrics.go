package rest

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	gamesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rps_games_started_total",
		Help: "Total games hosted",
	})
	gamesResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rps_games_resolved_total",
		Help: "Total games settled by reveal",
	})
	gamesCanceled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rps_games_canceled_total",
		Help: "Total games canceled by the host",
	})
	forfeitsForced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rps_forfeits_forced_total",
		Help: "Total games resolved through forced forfeiture",
	})
	withdrawals = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rps_withdrawals_total",
		Help: "Total successful balance withdrawals",
	})
	feesCollected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rps_fees_collected_total",
		Help: "Total fee value credited to the operator",
	})
)

func init() {
	prometheus.MustRegister(gamesStarted, gamesResolved, gamesCanceled, forfeitsForced, withdrawals, feesCollected)
}
