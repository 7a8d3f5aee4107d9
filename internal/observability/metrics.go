// Package observability registers Prometheus collectors shared across components.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsRecordedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ftracker",
		Subsystem: "workouts",
		Name:      "recorded_total",
		Help:      "Number of workouts computed and persisted, labeled by training type.",
	}, []string{"training_type"})

	unknownTypeCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ftracker",
		Subsystem: "workouts",
		Name:      "unknown_type_total",
		Help:      "Number of sensor packages rejected for an unrecognized type code.",
	})

	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ftracker",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout persisted to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(workoutsRecordedCounter, unknownTypeCounter, workoutPersistGauge)
}

// RecordWorkoutRecorded counts a successfully stored workout.
func RecordWorkoutRecorded(trainingType string) {
	workoutsRecordedCounter.WithLabelValues(trainingType).Inc()
}

// RecordUnknownType counts a rejected sensor package.
func RecordUnknownType() {
	unknownTypeCounter.Inc()
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}
