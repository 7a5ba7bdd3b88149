package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelType   = "type"
	typeSuccess = "success"
	typeFailed  = "failed"
)

var (
	submissionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inscriber_submission_attempts",
		Help: "The total number of submission attempts (counter)",
	}, []string{labelType})

	confirmationTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inscriber_confirmation_time",
		Help:    "A histogram of attempt duration from broadcast to receipt",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30},
	})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inscriber_in_flight",
		Help: "The number of submission attempts currently awaiting resolution",
	})

	storedInscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inscriber_stored_inscriptions",
		Help: "The total number of confirmed inscriptions in the storage",
	})
)

func IncSuccessAttempts() {
	submissionAttempts.With(prometheus.Labels{
		labelType: typeSuccess,
	}).Inc()
}

func IncFailedAttempts() {
	submissionAttempts.With(prometheus.Labels{
		labelType: typeFailed,
	}).Inc()
}

func AddConfirmationTime(dur float64) {
	confirmationTime.Observe(dur)
}

func SetInFlight(n int) {
	inFlight.Set(float64(n))
}

func SetStoredInscriptions(n int) {
	storedInscriptions.Set(float64(n))
}
