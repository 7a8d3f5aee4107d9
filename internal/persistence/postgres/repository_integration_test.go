//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/ftracker/internal/domain"
)

func startDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("ftracker"),
		postgrescontainer.WithUsername("ftracker"),
		postgrescontainer.WithPassword("ftracker"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func sampleWorkout(tenantID, userID string, recordedAt time.Time) domain.Workout {
	return domain.Workout{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		UserID:       userID,
		TypeCode:     domain.TypeRunning,
		TrainingType: "Running",
		Duration:     1,
		Distance:     9.75,
		MeanSpeed:    9.75,
		Calories:     797.805,
		Source:       "integration-test",
		RecordedAt:   recordedAt,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	repo := NewRepository(pool)

	tenantID := uuid.NewString()
	workout := sampleWorkout(tenantID, uuid.NewString(), time.Now().UTC())

	require.NoError(t, repo.Create(ctx, workout, "key-1"))

	stored, err := repo.Get(ctx, tenantID, workout.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, workout.ID, stored.ID)
	require.Equal(t, domain.TypeRunning, stored.TypeCode)
	require.InDelta(t, 797.805, stored.Calories, 1e-9)

	otherTenant, err := repo.Get(ctx, uuid.NewString(), workout.ID)
	require.NoError(t, err)
	require.Nil(t, otherTenant, "workouts must be tenant-scoped")

	replay, err := repo.FindByIdempotency(ctx, tenantID, workout.UserID, "key-1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	require.Equal(t, workout.ID, replay.ID)
}

func TestRepositoryCreateWritesOutboxRow(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	repo := NewRepository(pool)

	workout := sampleWorkout(uuid.NewString(), uuid.NewString(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, workout, ""))

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE aggregate_id=$1 AND event_type='workout.recorded' AND published_at IS NULL`,
		workout.ID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRepositoryListAndStats(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	repo := NewRepository(pool)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		workout := sampleWorkout(tenantID, userID, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, workout, ""))
	}

	page1, cursor, err := repo.ListByUser(ctx, tenantID, userID, nil, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, cursor)

	page2, cursor, err := repo.ListByUser(ctx, tenantID, userID, cursor, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.Nil(t, cursor)
	require.True(t, page1[0].RecordedAt.After(page2[len(page2)-1].RecordedAt))

	stats, err := repo.Stats(ctx, tenantID, userID, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 5, stats.Total)
	require.Equal(t, 5, stats.CountByType[domain.TypeRunning])
	require.InDelta(t, 5*9.75, stats.TotalDistance, 1e-6)
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../migrations/001_init.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
