package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotentReplay indicates an existing workout was found for the provided idempotency key.
	ErrIdempotentReplay = errors.New("workout already exists for idempotency key")
	// ErrWorkoutNotFound is returned when a workout cannot be located.
	ErrWorkoutNotFound = errors.New("workout not found")
)

// Workout is the canonical record stored in Postgres: the raw package the
// tracker sent plus the summary derived from it.
type Workout struct {
	ID           string
	TenantID     string
	UserID       string
	TypeCode     TypeCode
	TrainingType string
	Duration     float64 // hours
	Distance     float64 // km
	MeanSpeed    float64 // km/h
	Calories     float64 // kcal
	Source       string
	RecordedAt   time.Time
	CreatedAt    time.Time
}

// Summary rebuilds the derived report from the stored columns.
func (w Workout) Summary() Summary {
	return Summary{
		TrainingType: w.TrainingType,
		Duration:     w.Duration,
		Distance:     w.Distance,
		MeanSpeed:    w.MeanSpeed,
		Calories:     w.Calories,
	}
}

// Cursor models the keyset pagination token for workout listings.
type Cursor struct {
	RecordedAt time.Time
	ID         string
}

// WorkoutStats aggregates per-user totals over a time window.
type WorkoutStats struct {
	Total          int
	TotalDuration  float64 // hours
	TotalDistance  float64 // km
	TotalCalories  float64 // kcal
	CountByType    map[TypeCode]int
	LastRecordedAt *time.Time
}

// WorkoutRepository captures persistence operations.
type WorkoutRepository interface {
	FindByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*Workout, error)
	Create(ctx context.Context, workout Workout, idempotencyKey string) error
	Get(ctx context.Context, tenantID, workoutID string) (*Workout, error)
	ListByUser(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]Workout, *Cursor, error)
	Stats(ctx context.Context, tenantID, userID string, since time.Time) (*WorkoutStats, error)
}
