package securejoin

import "github.com/prometheus/client_golang/prometheus"

var stagesReached = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "securejoin_joiner_stages_total",
		Help: "Number of joiner handshake stages reached",
	},
	[]string{"stage"},
)

var handshakesAborted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "securejoin_joiner_aborted_total",
		Help: "Number of joiner handshakes aborted by a newer one",
	},
)

var handshakesCompleted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "securejoin_joiner_completed_total",
		Help: "Number of joiner handshakes completed",
	},
)

func init() {
	prometheus.MustRegister(stagesReached)
	prometheus.MustRegister(handshakesAborted)
	prometheus.MustRegister(handshakesCompleted)
}

func observeStage(s Stage) {
	label := s.String()
	if s.Kind == StageTerminated {
		label = "terminated"
	}
	stagesReached.With(prometheus.Labels{"stage": label}).Inc()
}
