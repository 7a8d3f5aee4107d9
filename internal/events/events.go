// Package events defines payloads published to downstream consumers.
package events

import "time"

// WorkoutRecorded is emitted after a sensor package was computed and stored.
type WorkoutRecorded struct {
	WorkoutID    string    `json:"workout_id"`
	TenantID     string    `json:"tenant_id"`
	UserID       string    `json:"user_id"`
	WorkoutType  string    `json:"workout_type"`
	TrainingType string    `json:"training_type"`
	Duration     float64   `json:"duration_h"`
	Distance     float64   `json:"distance_km"`
	MeanSpeed    float64   `json:"mean_speed_kmh"`
	Calories     float64   `json:"calories_kcal"`
	Source       string    `json:"source"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// SensorPackage is the raw telemetry message trackers push to Kafka before
// any formulas run.
type SensorPackage struct {
	UserID      string    `json:"user_id"`
	WorkoutType string    `json:"workout_type"`
	Data        []float64 `json:"data"`
	RecordedAt  time.Time `json:"recorded_at"`
}
