package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "galaxyfit",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout log persisted to Postgres.",
	})
	templatePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "galaxyfit",
		Subsystem: "persistence",
		Name:      "last_template_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent template tree persisted to Postgres.",
	})
	templateActivations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "galaxyfit",
		Subsystem: "templates",
		Name:      "activations_total",
		Help:      "Number of successful template activations.",
	})
	signups = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "galaxyfit",
		Subsystem: "identity",
		Name:      "signups_total",
		Help:      "Number of user rows created.",
	})
)

func init() {
	prometheus.MustRegister(workoutPersistGauge, templatePersistGauge, templateActivations, signups)
}

// RecordWorkoutPersisted updates the workout persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordTemplatePersisted updates the template persistence watermark gauge.
func RecordTemplatePersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	templatePersistGauge.Set(float64(ts.Unix()))
}

// RecordTemplateActivated counts a successful activation.
func RecordTemplateActivated() {
	templateActivations.Inc()
}

// RecordSignup counts a persisted user row.
func RecordSignup() {
	signups.Inc()
}
