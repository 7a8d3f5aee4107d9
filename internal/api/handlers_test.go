package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/ftracker/internal/auth"
	"example.com/ftracker/internal/domain"
	"example.com/ftracker/internal/persistence/memory"
)

func testClaims(scopes ...string) *auth.Claims {
	set := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		set[scope] = struct{}{}
	}
	return &auth.Claims{
		Subject:   "tester",
		TenantID:  "tenant-1",
		Scopes:    set,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newTestMux(repo domain.WorkoutRepository) *http.ServeMux {
	handler := NewHandler(domain.NewService(repo))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, target, body string, claims *auth.Claims) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if claims != nil {
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestRecordWorkoutReturnsSummary(t *testing.T) {
	mux := newTestMux(memory.NewRepository())

	body := `{"user_id":"user-1","workout_type":"SWM","data":[720,1,80,25,40],"source":"api"}`
	rr := doRequest(mux, http.MethodPost, "/v1/workouts", body, testClaims(auth.ScopeWorkoutsWrite))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp RecordWorkoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.WorkoutID == "" {
		t.Fatal("expected workout_id to be set")
	}
	if resp.Summary.TrainingType != "Swimming" {
		t.Fatalf("expected Swimming got %q", resp.Summary.TrainingType)
	}
	if resp.Summary.MeanSpeed != 1.0 {
		t.Fatalf("expected mean speed 1.0 got %v", resp.Summary.MeanSpeed)
	}
	if resp.Summary.Calories != 336.0 {
		t.Fatalf("expected 336 kcal got %v", resp.Summary.Calories)
	}
	if !strings.HasPrefix(resp.Summary.Message, "Тип тренировки: Swimming;") {
		t.Fatalf("unexpected message: %q", resp.Summary.Message)
	}
}

func TestRecordWorkoutRejectsUnknownType(t *testing.T) {
	mux := newTestMux(memory.NewRepository())

	body := `{"user_id":"user-1","workout_type":"XYZ","data":[100,1,70]}`
	rr := doRequest(mux, http.MethodPost, "/v1/workouts", body, testClaims(auth.ScopeWorkoutsWrite))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRecordWorkoutRequiresWriteScope(t *testing.T) {
	mux := newTestMux(memory.NewRepository())

	body := `{"user_id":"user-1","workout_type":"RUN","data":[15000,1,75]}`
	rr := doRequest(mux, http.MethodPost, "/v1/workouts", body, testClaims(auth.ScopeWorkoutsRead))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestRecordWorkoutIdempotentReplayReturns200(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewHandler(domain.NewService(repo))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	body := `{"user_id":"user-1","workout_type":"RUN","data":[15000,1,75]}`
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/workouts", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "key-1")
		req = req.WithContext(auth.WithClaims(req.Context(), testClaims(auth.ScopeWorkoutsWrite)))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", first.Code)
	}
	second := send()
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay got %d", second.Code)
	}

	var resp RecordWorkoutResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Replay {
		t.Fatal("expected idempotent_replay to be true")
	}
}

func TestGetWorkoutNotFound(t *testing.T) {
	mux := newTestMux(memory.NewRepository())

	rr := doRequest(mux, http.MethodGet, "/v1/workouts/missing", "", testClaims(auth.ScopeWorkoutsRead))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestListWorkoutsReturnsStoredItems(t *testing.T) {
	repo := memory.NewRepository()
	now := time.Now().UTC()
	seed := domain.Workout{
		ID:           "w-1",
		TenantID:     "tenant-1",
		UserID:       "user-1",
		TypeCode:     domain.TypeWalking,
		TrainingType: "SportsWalking",
		Duration:     1,
		Distance:     5.85,
		MeanSpeed:    5.85,
		Calories:     349.252,
		Source:       "api",
		RecordedAt:   now,
		CreatedAt:    now,
	}
	if err := repo.Create(context.Background(), seed, ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mux := newTestMux(repo)
	rr := doRequest(mux, http.MethodGet, "/v1/workouts?user_id=user-1", "", testClaims(auth.ScopeWorkoutsRead))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ListWorkoutsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item got %d", len(resp.Items))
	}
	if resp.Items[0].WorkoutType != "WLK" {
		t.Fatalf("expected WLK got %q", resp.Items[0].WorkoutType)
	}
}

func TestListWorkoutsRequiresUserID(t *testing.T) {
	mux := newTestMux(memory.NewRepository())

	rr := doRequest(mux, http.MethodGet, "/v1/workouts", "", testClaims(auth.ScopeWorkoutsRead))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestWorkoutStats(t *testing.T) {
	repo := memory.NewRepository()
	now := time.Now().UTC()
	for i, code := range []domain.TypeCode{domain.TypeRunning, domain.TypeRunning, domain.TypeSwimming} {
		workout := domain.Workout{
			ID:         string(rune('a' + i)),
			TenantID:   "tenant-1",
			UserID:     "user-1",
			TypeCode:   code,
			Duration:   1,
			Distance:   5,
			Calories:   300,
			RecordedAt: now.Add(-time.Duration(i) * time.Hour),
			CreatedAt:  now,
		}
		if err := repo.Create(context.Background(), workout, ""); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	mux := newTestMux(repo)
	rr := doRequest(mux, http.MethodGet, "/v1/workouts/stats?user_id=user-1&window_hours=0", "", testClaims(auth.ScopeWorkoutsRead))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp WorkoutStatsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("expected total 3 got %d", resp.Total)
	}
	if resp.CountByType["RUN"] != 2 {
		t.Fatalf("expected 2 runs got %d", resp.CountByType["RUN"])
	}
	if resp.TotalCalories != 900 {
		t.Fatalf("expected 900 kcal got %v", resp.TotalCalories)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	mux := newTestMux(memory.NewRepository())

	rr := doRequest(mux, http.MethodGet, "/v1/workouts?user_id=user-1", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
