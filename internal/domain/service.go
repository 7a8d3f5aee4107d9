package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates workout workflows on top of a repository.
type Service struct {
	repo WorkoutRepository
}

// NewService constructs a Service.
func NewService(repo WorkoutRepository) *Service {
	return &Service{repo: repo}
}

// RecordWorkoutInput captures a sensor package handed in by the API or the
// telemetry consumer.
type RecordWorkoutInput struct {
	TenantID       string
	UserID         string
	WorkoutType    TypeCode
	Data           []float64
	Source         string
	RecordedAt     time.Time
	IdempotencyKey string
}

// RecordWorkout dispatches the package to its formula set, derives the
// summary, and persists the workout. The bool result reports an idempotent
// replay of a previously stored workout.
func (s *Service) RecordWorkout(ctx context.Context, input RecordWorkoutInput) (*Workout, bool, error) {
	if existing, err := s.repo.FindByIdempotency(ctx, input.TenantID, input.UserID, input.IdempotencyKey); err == nil && existing != nil {
		return existing, true, nil
	}

	training, err := ParsePackage(input.WorkoutType, input.Data)
	if err != nil {
		return nil, false, err
	}
	summary := NewSummary(training)

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	workout := Workout{
		ID:           uuid.NewString(),
		TenantID:     input.TenantID,
		UserID:       input.UserID,
		TypeCode:     input.WorkoutType,
		TrainingType: summary.TrainingType,
		Duration:     summary.Duration,
		Distance:     summary.Distance,
		MeanSpeed:    summary.MeanSpeed,
		Calories:     summary.Calories,
		Source:       input.Source,
		RecordedAt:   recordedAt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, workout, input.IdempotencyKey); err != nil {
		return nil, false, err
	}
	return &workout, false, nil
}

// GetWorkout loads a single workout scoped to the tenant.
func (s *Service) GetWorkout(ctx context.Context, tenantID, workoutID string) (*Workout, error) {
	workout, err := s.repo.Get(ctx, tenantID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, ErrWorkoutNotFound
	}
	return workout, nil
}

// ListWorkoutsByUser returns a page of workouts for the user, newest first.
func (s *Service) ListWorkoutsByUser(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]Workout, *Cursor, error) {
	return s.repo.ListByUser(ctx, tenantID, userID, cursor, limit)
}

// GetWorkoutStats aggregates the user's workouts over the trailing window.
// A zero window means all time.
func (s *Service) GetWorkoutStats(ctx context.Context, tenantID, userID string, window time.Duration) (*WorkoutStats, error) {
	var since time.Time
	if window > 0 {
		since = time.Now().UTC().Add(-window)
	}
	return s.repo.Stats(ctx, tenantID, userID, since)
}
