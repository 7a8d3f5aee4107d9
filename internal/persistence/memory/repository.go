// Package memory stores workouts in memory for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/ftracker/internal/domain"
	"example.com/ftracker/internal/observability"
)

type idemKey struct {
	tenantID, userID, key string
}

// Repository is a RWMutex-guarded in-memory implementation of domain.WorkoutRepository.
type Repository struct {
	mu       sync.RWMutex
	workouts map[string]domain.Workout
	byIdem   map[idemKey]string
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		workouts: make(map[string]domain.Workout),
		byIdem:   make(map[idemKey]string),
	}
}

// FindByIdempotency implements domain.WorkoutRepository.
func (r *Repository) FindByIdempotency(_ context.Context, tenantID, userID, idempotencyKey string) (*domain.Workout, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byIdem[idemKey{tenantID, userID, idempotencyKey}]
	if !ok {
		return nil, nil
	}
	workout := r.workouts[id]
	return &workout, nil
}

// Create implements domain.WorkoutRepository.
func (r *Repository) Create(_ context.Context, workout domain.Workout, idempotencyKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.workouts[workout.ID] = workout
	if idempotencyKey != "" {
		r.byIdem[idemKey{workout.TenantID, workout.UserID, idempotencyKey}] = workout.ID
	}
	observability.RecordWorkoutPersisted(workout.CreatedAt)
	observability.RecordWorkoutRecorded(workout.TrainingType)
	return nil
}

// Get implements domain.WorkoutRepository.
func (r *Repository) Get(_ context.Context, tenantID, workoutID string) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workout, ok := r.workouts[workoutID]
	if !ok || workout.TenantID != tenantID {
		return nil, nil
	}
	return &workout, nil
}

// ListByUser implements domain.WorkoutRepository with newest-first keyset pages.
func (r *Repository) ListByUser(_ context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	matched := make([]domain.Workout, 0)
	for _, workout := range r.workouts {
		if workout.TenantID != tenantID || workout.UserID != userID {
			continue
		}
		matched = append(matched, workout)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].RecordedAt.Equal(matched[j].RecordedAt) {
			return matched[i].RecordedAt.After(matched[j].RecordedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if cursor != nil {
		idx := 0
		for i, workout := range matched {
			if workout.RecordedAt.Before(cursor.RecordedAt) ||
				(workout.RecordedAt.Equal(cursor.RecordedAt) && workout.ID < cursor.ID) {
				idx = i
				break
			}
			idx = i + 1
		}
		matched = matched[idx:]
	}

	var next *domain.Cursor
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		next = &domain.Cursor{RecordedAt: last.RecordedAt, ID: last.ID}
	}
	return matched, next, nil
}

// Stats implements domain.WorkoutRepository.
func (r *Repository) Stats(_ context.Context, tenantID, userID string, since time.Time) (*domain.WorkoutStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.WorkoutStats{CountByType: make(map[domain.TypeCode]int)}
	for _, workout := range r.workouts {
		if workout.TenantID != tenantID || workout.UserID != userID {
			continue
		}
		if workout.RecordedAt.Before(since) {
			continue
		}
		stats.Total++
		stats.TotalDuration += workout.Duration
		stats.TotalDistance += workout.Distance
		stats.TotalCalories += workout.Calories
		stats.CountByType[workout.TypeCode]++
		if stats.LastRecordedAt == nil || workout.RecordedAt.After(*stats.LastRecordedAt) {
			ts := workout.RecordedAt
			stats.LastRecordedAt = &ts
		}
	}
	return &stats, nil
}
