package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"example.com/ftracker/internal/domain"
	"example.com/ftracker/internal/events"
	"example.com/ftracker/internal/observability"
)

// TelemetryHandler turns raw sensor packages into stored workouts.
type TelemetryHandler struct {
	service *domain.Service
	logger  *log.Logger
}

// NewTelemetryHandler constructs a handler backed by the domain service.
func NewTelemetryHandler(service *domain.Service) *TelemetryHandler {
	return &TelemetryHandler{
		service: service,
		logger:  log.New(log.Writer(), "[telemetry] ", log.LstdFlags),
	}
}

// Handle decodes the sensor package and records the workout. Packages with
// unrecognized type codes or broken data are dropped after counting; they
// never become valid on retry.
func (h *TelemetryHandler) Handle(ctx context.Context, msg Message) error {
	var pkg events.SensorPackage
	if err := json.Unmarshal(msg.Payload, &pkg); err != nil {
		return fmt.Errorf("decode sensor package: %w", err)
	}

	// Replays after a rebalance dedupe on the record coordinates.
	idempotencyKey := fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)

	_, replay, err := h.service.RecordWorkout(ctx, domain.RecordWorkoutInput{
		TenantID:       msg.TenantID,
		UserID:         pkg.UserID,
		WorkoutType:    domain.TypeCode(pkg.WorkoutType),
		Data:           pkg.Data,
		Source:         "telemetry",
		RecordedAt:     pkg.RecordedAt,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTrainingType) || errors.Is(err, domain.ErrInvalidPackage) {
			observability.RecordUnknownType()
			h.logger.Printf("dropping bad package (tenant=%s, user=%s): %v", msg.TenantID, pkg.UserID, err)
			return nil
		}
		return err
	}
	if replay {
		h.logger.Printf("replayed package deduplicated (key=%s)", idempotencyKey)
	}
	return nil
}
