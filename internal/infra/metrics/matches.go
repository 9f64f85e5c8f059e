package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		matchesOpenedTotal,
		matchPoolSize,
		poolJoinsTotal,
		poolLeavesTotal,
		balanceRunsTotal,
		balanceDuration,
		balanceDifference,
		cooldownsSweptTotal,
	)
}

var (
	matchesOpenedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_opened_total",
			Help: "Total number of recruiting sessions opened.",
		},
	)

	matchPoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "match_pool_size",
			Help: "Number of players currently in the active match pool.",
		},
	)

	poolJoinsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_joins_total",
			Help: "Total number of successful pool joins.",
		},
	)

	poolLeavesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_leaves_total",
			Help: "Total number of pool leaves.",
		},
	)

	balanceRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_runs_total",
			Help: "Team balancing attempts by outcome.",
		},
		[]string{"outcome"}, // 'ok', 'locked', 'error'
	)

	balanceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "balance_duration_seconds",
			Help:    "Wall time of a team balancing run.",
			Buckets: prometheus.DefBuckets,
		},
	)

	balanceDifference = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "balance_difference_adr",
			Help:    "ADR-sum difference between the two produced teams.",
			Buckets: []float64{0, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	cooldownsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cooldowns_swept_total",
			Help: "Expired cooldown rows removed by the background sweeper.",
		},
	)
)

func IncMatchesOpened()            { matchesOpenedTotal.Inc() }
func SetMatchPoolSize(n int)       { matchPoolSize.Set(float64(n)) }
func IncPoolJoins()                { poolJoinsTotal.Inc() }
func IncPoolLeaves()               { poolLeavesTotal.Inc() }
func IncBalanceRun(outcome string) { balanceRunsTotal.WithLabelValues(outcome).Inc() }
func ObserveBalanceDuration(sec float64) {
	balanceDuration.Observe(sec)
}
func ObserveBalanceDifference(diff float64) {
	balanceDifference.Observe(diff)
}
func AddCooldownsSwept(n int64) { cooldownsSweptTotal.Add(float64(n)) }
