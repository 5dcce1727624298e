package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Mutations counts roster mutations by feature area, action and outcome.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusdesk",
		Name:      "roster_mutations_total",
		Help:      "Roster mutations by area, action and outcome.",
	}, []string{"area", "action", "outcome"})

	// LockRejections counts actions rejected because another one was in
	// flight.
	LockRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusdesk",
		Name:      "action_lock_rejections_total",
		Help:      "Actions rejected by the single-flight action lock.",
	}, []string{"area"})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
