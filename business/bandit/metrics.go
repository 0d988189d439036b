package bandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BanditSelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_selections_total",
			Help: "Count of Thompson Sampling selections by strategy.",
		},
		[]string{"strategy"},
	)

	BanditRewardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_rewards_total",
			Help: "Count of rewards applied to bandits by strategy.",
		},
		[]string{"strategy"},
	)

	BanditUpdateConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bandit_update_conflicts_total",
		Help: "Optimistic update collisions on bandit statistics.",
	})

	BanditCacheWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bandit_project_cache_write_failures_total",
		Help: "Failed best-effort writes of the cached optimal price.",
	})

	BanditSweepRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_sweep_runs_total",
			Help: "Scheduled sweeps by outcome (completed, skipped, lock_held, failed).",
		},
		[]string{"outcome"},
	)

	BanditSweepProjectFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bandit_sweep_project_failures_total",
		Help: "Projects omitted from a run-all because their selection failed.",
	})

	BanditSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bandit_sweep_duration_seconds",
		Help:    "Duration of project-wide selection sweeps.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		BanditSelectionsTotal,
		BanditRewardsTotal,
		BanditUpdateConflictsTotal,
		BanditCacheWriteFailuresTotal,
		BanditSweepRunsTotal,
		BanditSweepProjectFailuresTotal,
		BanditSweepDuration,
	)
}
