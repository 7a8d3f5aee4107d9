// Package postgres provides Postgres-backed persistence for workouts and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/ftracker/internal/domain"
	"example.com/ftracker/internal/events"
	"example.com/ftracker/internal/observability"
)

const workoutColumns = `workout_id, tenant_id, user_id, type_code, training_type,
        duration_h, distance_km, mean_speed_kmh, calories_kcal, source, recorded_at, created_at`

// Repository stores workouts and their outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByIdempotency checks if a workout already exists for the supplied idempotency key.
func (r *Repository) FindByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*domain.Workout, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM workouts WHERE tenant_id=$1 AND user_id=$2 AND idempotency_key=$3`, workoutColumns)

	row := r.pool.QueryRow(ctx, query, tenantID, userID, idempotencyKey)
	workout, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return workout, nil
}

// Create persists the workout and records the outbox event inside a single transaction.
func (r *Repository) Create(ctx context.Context, workout domain.Workout, idempotencyKey string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	insertWorkout := `INSERT INTO workouts (workout_id, tenant_id, user_id, type_code, training_type,
        duration_h, distance_km, mean_speed_kmh, calories_kcal, source, idempotency_key, recorded_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err = tx.Exec(ctx, insertWorkout,
		workout.ID,
		workout.TenantID,
		workout.UserID,
		string(workout.TypeCode),
		workout.TrainingType,
		workout.Duration,
		workout.Distance,
		workout.MeanSpeed,
		workout.Calories,
		workout.Source,
		nullIfEmpty(idempotencyKey),
		workout.RecordedAt,
		workout.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, workout); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordWorkoutPersisted(workout.CreatedAt)
	observability.RecordWorkoutRecorded(workout.TrainingType)
	return nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, workout domain.Workout) error {
	payload := events.WorkoutRecorded{
		WorkoutID:    workout.ID,
		TenantID:     workout.TenantID,
		UserID:       workout.UserID,
		WorkoutType:  string(workout.TypeCode),
		TrainingType: workout.TrainingType,
		Duration:     workout.Duration,
		Distance:     workout.Distance,
		MeanSpeed:    workout.MeanSpeed,
		Calories:     workout.Calories,
		Source:       workout.Source,
		RecordedAt:   workout.RecordedAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	dedupeKey := fmt.Sprintf("%s:workout.recorded", workout.ID)

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = tx.Exec(ctx, stmt,
		workout.TenantID,
		workout.ID,
		"workout.recorded",
		"ftracker.workouts",
		workout.UserID,
		body,
		dedupeKey,
	)
	return err
}

// Get loads a workout scoped to the tenant.
func (r *Repository) Get(ctx context.Context, tenantID, workoutID string) (*domain.Workout, error) {
	query := fmt.Sprintf(`SELECT %s FROM workouts WHERE tenant_id=$1 AND workout_id=$2`, workoutColumns)

	row := r.pool.QueryRow(ctx, query, tenantID, workoutID)
	workout, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return workout, nil
}

// ListByUser returns a keyset page of workouts, newest first.
func (r *Repository) ListByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{tenantID, userID}
	query := fmt.Sprintf(`SELECT %s FROM workouts WHERE tenant_id=$1 AND user_id=$2`, workoutColumns)
	if cursor != nil {
		query += ` AND (recorded_at, workout_id) < ($3, $4)`
		args = append(args, cursor.RecordedAt, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY recorded_at DESC, workout_id DESC LIMIT %d`, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	workouts := make([]domain.Workout, 0, limit)
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, nil, err
		}
		workouts = append(workouts, *workout)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(workouts) > limit {
		workouts = workouts[:limit]
		last := workouts[len(workouts)-1]
		next = &domain.Cursor{RecordedAt: last.RecordedAt, ID: last.ID}
	}
	return workouts, next, nil
}

// Stats aggregates per-user totals since the given time. A zero since means all time.
func (r *Repository) Stats(ctx context.Context, tenantID, userID string, since time.Time) (*domain.WorkoutStats, error) {
	const query = `SELECT type_code, COUNT(*), COALESCE(SUM(duration_h),0), COALESCE(SUM(distance_km),0),
        COALESCE(SUM(calories_kcal),0), MAX(recorded_at)
        FROM workouts
        WHERE tenant_id=$1 AND user_id=$2 AND recorded_at >= $3
        GROUP BY type_code`

	rows, err := r.pool.Query(ctx, query, tenantID, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := domain.WorkoutStats{CountByType: make(map[domain.TypeCode]int)}
	for rows.Next() {
		var (
			typeCode string
			count    int
			duration float64
			distance float64
			calories float64
			last     time.Time
		)
		if err := rows.Scan(&typeCode, &count, &duration, &distance, &calories, &last); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.TotalDuration += duration
		stats.TotalDistance += distance
		stats.TotalCalories += calories
		stats.CountByType[domain.TypeCode(typeCode)] = count
		if stats.LastRecordedAt == nil || last.After(*stats.LastRecordedAt) {
			ts := last
			stats.LastRecordedAt = &ts
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkout(row rowScanner) (*domain.Workout, error) {
	var (
		workout  domain.Workout
		typeCode string
	)
	if err := row.Scan(
		&workout.ID,
		&workout.TenantID,
		&workout.UserID,
		&typeCode,
		&workout.TrainingType,
		&workout.Duration,
		&workout.Distance,
		&workout.MeanSpeed,
		&workout.Calories,
		&workout.Source,
		&workout.RecordedAt,
		&workout.CreatedAt,
	); err != nil {
		return nil, err
	}
	workout.TypeCode = domain.TypeCode(typeCode)
	return &workout, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
