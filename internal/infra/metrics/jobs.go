package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsCreatedTotal, jobsFinishedTotal, jobsReapedTotal, jobsInFlight) }

var (
	jobsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scenario_jobs_created_total",
			Help: "Total number of scenario jobs accepted for processing.",
		},
	)

	jobsFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_jobs_finished_total",
			Help: "Total number of scenario jobs finished, labeled by status.",
		},
		[]string{"status"}, // 'completed', 'failed'
	)

	jobsReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scenario_jobs_reaped_total",
			Help: "Total number of aged-out job records evicted by the reaper.",
		},
	)

	jobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scenario_jobs_in_flight",
			Help: "Number of scenario jobs currently queued or in progress.",
		},
	)
)

func IncJobCreated() { jobsCreatedTotal.Inc() }

func IncJobFinished(status string) {
	jobsFinishedTotal.WithLabelValues(norm(status)).Inc()
}

func AddJobsReaped(n int) { jobsReapedTotal.Add(float64(n)) }

// The in-flight gauge is owned by the job lifecycle: one increment per
// accepted create, one decrement when its task returns, whatever the outcome.
func IncJobsInFlight() { jobsInFlight.Inc() }

func DecJobsInFlight() { jobsInFlight.Dec() }
