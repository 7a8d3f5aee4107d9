package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/ftracker/internal/domain"
	"example.com/ftracker/internal/events"
	"example.com/ftracker/internal/persistence/memory"
)

func sensorMessage(t *testing.T, offset int64, pkg events.SensorPackage) Message {
	t.Helper()
	payload, err := json.Marshal(pkg)
	require.NoError(t, err)
	return Message{
		Topic:     "ftracker.telemetry",
		Partition: 0,
		Offset:    offset,
		Timestamp: time.Now().UTC(),
		EventType: "sensor.package",
		TenantID:  "tenant-1",
		Payload:   payload,
	}
}

func TestTelemetryHandlerRecordsWorkout(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewTelemetryHandler(domain.NewService(repo))

	recordedAt := time.Date(2025, time.August, 2, 6, 45, 0, 0, time.UTC)
	msg := sensorMessage(t, 7, events.SensorPackage{
		UserID:      "user-1",
		WorkoutType: "SWM",
		Data:        []float64{720, 1, 80, 25, 40},
		RecordedAt:  recordedAt,
	})

	require.NoError(t, handler.Handle(context.Background(), msg))

	workouts, _, err := repo.ListByUser(context.Background(), "tenant-1", "user-1", nil, 10)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "Swimming", workouts[0].TrainingType)
	assert.InDelta(t, 1.0, workouts[0].MeanSpeed, 1e-9)
	assert.InDelta(t, 336.0, workouts[0].Calories, 1e-9)
	assert.True(t, workouts[0].RecordedAt.Equal(recordedAt))
}

func TestTelemetryHandlerDeduplicatesReplays(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewTelemetryHandler(domain.NewService(repo))

	msg := sensorMessage(t, 11, events.SensorPackage{
		UserID:      "user-1",
		WorkoutType: "RUN",
		Data:        []float64{15000, 1, 75},
	})

	require.NoError(t, handler.Handle(context.Background(), msg))
	require.NoError(t, handler.Handle(context.Background(), msg))

	workouts, _, err := repo.ListByUser(context.Background(), "tenant-1", "user-1", nil, 10)
	require.NoError(t, err)
	assert.Len(t, workouts, 1, "same topic/partition/offset must not store twice")
}

func TestTelemetryHandlerDropsUnknownType(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewTelemetryHandler(domain.NewService(repo))

	msg := sensorMessage(t, 13, events.SensorPackage{
		UserID:      "user-1",
		WorkoutType: "XYZ",
		Data:        []float64{100, 1, 70},
	})

	require.NoError(t, handler.Handle(context.Background(), msg), "bad packages are dropped, not retried")

	workouts, _, err := repo.ListByUser(context.Background(), "tenant-1", "user-1", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

func TestTelemetryHandlerRejectsGarbagePayload(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewTelemetryHandler(domain.NewService(repo))

	msg := Message{
		Topic:    "ftracker.telemetry",
		TenantID: "tenant-1",
		Payload:  []byte("not-json"),
	}

	assert.Error(t, handler.Handle(context.Background(), msg))
}
