// Package api exposes HTTP handlers for the workout tracker.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/ftracker/internal/auth"
	"example.com/ftracker/internal/domain"
	"example.com/ftracker/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/workouts/stats", h.workoutStats)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.recordWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getWorkout(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) recordWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:write required")
		return
	}

	var req RecordWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	workout, replay, err := h.service.RecordWorkout(r.Context(), domain.RecordWorkoutInput{
		TenantID:       claims.TenantID,
		UserID:         req.UserID,
		WorkoutType:    domain.TypeCode(req.WorkoutType),
		Data:           req.Data,
		Source:         req.Source,
		RecordedAt:     req.RecordedAt,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTrainingType) || errors.Is(err, domain.ErrInvalidPackage) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := RecordWorkoutResponse{
		WorkoutID: workout.ID,
		Summary:   toSummaryView(workout.Summary()),
		Replay:    replay,
	}

	status := http.StatusAccepted
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsRead) && !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:read required")
		return
	}

	workout, err := h.service.GetWorkout(r.Context(), claims.TenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutView(*workout))
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsRead) && !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:read required")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursorToken := r.URL.Query().Get("cursor")
	cursor, err := persistence.DecodeCursor(cursorToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	workouts, next, err := h.service.ListWorkoutsByUser(r.Context(), claims.TenantID, userID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WorkoutView, 0, len(workouts))
	for _, workout := range workouts {
		items = append(items, toWorkoutView(workout))
	}

	resp := ListWorkoutsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) workoutStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsRead) && !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:read required")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return
	}

	windowHours := 0
	if raw := r.URL.Query().Get("window_hours"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			windowHours = parsed
		}
	}

	window := time.Duration(windowHours) * time.Hour
	stats, err := h.service.GetWorkoutStats(r.Context(), claims.TenantID, userID, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	byType := make(map[string]int, len(stats.CountByType))
	for code, count := range stats.CountByType {
		byType[string(code)] = count
	}

	resp := WorkoutStatsResponse{
		Total:          stats.Total,
		TotalDuration:  stats.TotalDuration,
		TotalDistance:  stats.TotalDistance,
		TotalCalories:  stats.TotalCalories,
		CountByType:    byType,
		LastRecordedAt: stats.LastRecordedAt,
		WindowSeconds:  int64(window / time.Second),
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecordWorkoutRequest is the payload for POST /v1/workouts.
type RecordWorkoutRequest struct {
	UserID      string    `json:"user_id"`
	WorkoutType string    `json:"workout_type"`
	Data        []float64 `json:"data"`
	Source      string    `json:"source"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Validate ensures request correctness.
func (r RecordWorkoutRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.WorkoutType) == "" {
		return errors.New("workout_type is required")
	}
	if len(r.Data) == 0 {
		return errors.New("data is required")
	}
	return nil
}

// SummaryView mirrors the derived training summary.
type SummaryView struct {
	TrainingType string  `json:"training_type"`
	Duration     float64 `json:"duration_h"`
	Distance     float64 `json:"distance_km"`
	MeanSpeed    float64 `json:"mean_speed_kmh"`
	Calories     float64 `json:"calories_kcal"`
	Message      string  `json:"message"`
}

// RecordWorkoutResponse describes the response body for create.
type RecordWorkoutResponse struct {
	WorkoutID string      `json:"workout_id"`
	Summary   SummaryView `json:"summary"`
	Replay    bool        `json:"idempotent_replay"`
}

// WorkoutView exposes full details about a stored workout.
type WorkoutView struct {
	WorkoutID   string      `json:"workout_id"`
	TenantID    string      `json:"tenant_id"`
	UserID      string      `json:"user_id"`
	WorkoutType string      `json:"workout_type"`
	Summary     SummaryView `json:"summary"`
	Source      string      `json:"source"`
	RecordedAt  time.Time   `json:"recorded_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// WorkoutStatsResponse describes aggregate stats for a user.
type WorkoutStatsResponse struct {
	Total          int            `json:"total"`
	TotalDuration  float64        `json:"total_duration_h"`
	TotalDistance  float64        `json:"total_distance_km"`
	TotalCalories  float64        `json:"total_calories_kcal"`
	CountByType    map[string]int `json:"count_by_type"`
	LastRecordedAt *time.Time     `json:"last_recorded_at,omitempty"`
	WindowSeconds  int64          `json:"window_seconds"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toSummaryView(s domain.Summary) SummaryView {
	return SummaryView{
		TrainingType: s.TrainingType,
		Duration:     s.Duration,
		Distance:     s.Distance,
		MeanSpeed:    s.MeanSpeed,
		Calories:     s.Calories,
		Message:      s.Message(),
	}
}

func toWorkoutView(w domain.Workout) WorkoutView {
	return WorkoutView{
		WorkoutID:   w.ID,
		TenantID:    w.TenantID,
		UserID:      w.UserID,
		WorkoutType: string(w.TypeCode),
		Summary:     toSummaryView(w.Summary()),
		Source:      w.Source,
		RecordedAt:  w.RecordedAt,
		CreatedAt:   w.CreatedAt,
	}
}
