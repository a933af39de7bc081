// internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProposalsDetected = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_proposals_detected_total", Help: "new match proposals detected"})
	ProposalsPruned   = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_proposals_pruned_total", Help: "proposals dropped because the pair no longer matched"})
	ProposalsAccepted = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_proposals_accepted_total", Help: "proposals accepted"})
	ProposalsRejected = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_proposals_rejected_total", Help: "proposals rejected"})
	AcceptConflicts   = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_accept_conflicts_total", Help: "accepts refused because the lobby filled"})
	DetectionErrors   = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_detection_errors_total", Help: "detection cycles aborted by a collaborator failure"})
	LobbiesCreated    = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_lobbies_created_total", Help: "lobbies created"})
	QueueEntries      = prometheus.NewCounter(prometheus.CounterOpts{Name: "premade_queue_entries_total", Help: "queue entries created"})
	ActiveWatchers    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "premade_active_watchers", Help: "viewers with a running detection loop"})

	DetectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "premade_detection_duration_seconds",
		Help:    "time spent in one detection cycle",
		Buckets: prometheus.DefBuckets,
	})
)

var once sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			ProposalsDetected, ProposalsPruned, ProposalsAccepted, ProposalsRejected,
			AcceptConflicts, DetectionErrors, LobbiesCreated, QueueEntries,
			ActiveWatchers, DetectionDuration,
		)
	})
}
