package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	httpH "github.com/yungbote/practicecoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/practicecoach-backend/internal/http/middleware"
	"github.com/yungbote/practicecoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
	"github.com/yungbote/practicecoach-backend/internal/practice/engine"
)

const routerSecret = "router-secret"

// stubPractice records the last call and returns canned results.
type stubPractice struct {
	lastUser string
	lastCall string
	args     []any
	err      error
}

func (s *stubPractice) record(ctx context.Context, call string, args ...any) (engine.Snapshot, error) {
	s.lastUser = ctxutil.UserID(ctx)
	s.lastCall = call
	s.args = args
	if s.err != nil {
		return engine.Snapshot{}, s.err
	}
	return engine.Snapshot{UserID: s.lastUser, SessionLength: 30, Activities: []types.Activity{}, State: engine.StateResolved}, nil
}

func (s *stubPractice) Draft(ctx context.Context, wait bool) (engine.Snapshot, error) {
	return s.record(ctx, "Draft", wait)
}
func (s *stubPractice) SetSessionLength(ctx context.Context, minutes int) (engine.Snapshot, error) {
	return s.record(ctx, "SetSessionLength", minutes)
}
func (s *stubPractice) AddExercise(ctx context.Context, id string) (engine.Snapshot, error) {
	return s.record(ctx, "AddExercise", id)
}
func (s *stubPractice) ReplaceActivity(ctx context.Context, index int, id string) (engine.Snapshot, error) {
	return s.record(ctx, "ReplaceActivity", index, id)
}
func (s *stubPractice) ResizeActivity(ctx context.Context, index, minutes int) (engine.Snapshot, error) {
	return s.record(ctx, "ResizeActivity", index, minutes)
}
func (s *stubPractice) RemoveActivity(ctx context.Context, index int) (engine.Snapshot, error) {
	return s.record(ctx, "RemoveActivity", index)
}
func (s *stubPractice) Reorder(ctx context.Context, source, target int, edge string) (engine.Snapshot, error) {
	return s.record(ctx, "Reorder", source, target, edge)
}
func (s *stubPractice) Commit(ctx context.Context) (*types.Session, error) {
	if _, err := s.record(ctx, "Commit"); err != nil {
		return nil, err
	}
	return &types.Session{ID: "s-1", UserID: s.lastUser, TotalDuration: 30}, nil
}
func (s *stubPractice) RecentSessions(ctx context.Context, limit int) ([]*types.Session, error) {
	if _, err := s.record(ctx, "RecentSessions", limit); err != nil {
		return nil, err
	}
	return []*types.Session{}, nil
}
func (s *stubPractice) SkillSummary(ctx context.Context) (string, error) {
	if _, err := s.record(ctx, "SkillSummary"); err != nil {
		return "", err
	}
	return "No specific practice goal set.", nil
}
func (s *stubPractice) UpdatePreferences(ctx context.Context, prefs types.UserPreferences) (*types.UserPreferences, error) {
	if _, err := s.record(ctx, "UpdatePreferences", prefs.DefaultSessionLength); err != nil {
		return nil, err
	}
	return &prefs, nil
}
func (s *stubPractice) Exercises(category string) ([]types.Exercise, error) {
	s.lastCall = "Exercises"
	s.args = []any{category}
	return []types.Exercise{{ID: "major-scales", Name: "Major Scales", Category: types.CategoryScales, DefaultDuration: 10}}, s.err
}
func (s *stubPractice) ExerciseCategories() []types.ExerciseCategory {
	s.lastCall = "ExerciseCategories"
	return []types.ExerciseCategory{types.CategoryScales, types.CategoryArpeggios}
}
func (s *stubPractice) Close() {}

func newTestRouter(t *testing.T, svc *stubPractice) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Log:             logger.Nop(),
		AuthMiddleware:  httpMW.NewAuthMiddleware(logger.Nop(), routerSecret),
		PracticeHandler: httpH.NewPracticeHandler(svc),
		HealthHandler:   httpH.NewHealthHandler(),
	})
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(routerSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok
}

func do(t *testing.T, r *gin.Engine, method, path, body, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRoutesDispatch(t *testing.T) {
	cases := []struct {
		method, path, body string
		wantStatus         int
		wantCall           string
		wantArgs           []any
	}{
		{http.MethodGet, "/api/practice/draft", "", http.StatusOK, "Draft", []any{false}},
		{http.MethodGet, "/api/practice/draft?wait=true", "", http.StatusOK, "Draft", []any{true}},
		{http.MethodPut, "/api/practice/draft/length", `{"sessionLength":45}`, http.StatusOK, "SetSessionLength", []any{45}},
		{http.MethodPost, "/api/practice/draft/activities", `{"exerciseId":"major-scales"}`, http.StatusOK, "AddExercise", []any{"major-scales"}},
		{http.MethodPut, "/api/practice/draft/activities/2", `{"exerciseId":"trills"}`, http.StatusOK, "ReplaceActivity", []any{2, "trills"}},
		{http.MethodPatch, "/api/practice/draft/activities/1", `{"duration":12}`, http.StatusOK, "ResizeActivity", []any{1, 12}},
		{http.MethodDelete, "/api/practice/draft/activities/0", "", http.StatusOK, "RemoveActivity", []any{0}},
		{http.MethodPost, "/api/practice/draft/reorder", `{"sourceIndex":2,"targetIndex":0,"edge":"top"}`, http.StatusOK, "Reorder", []any{2, 0, "top"}},
		{http.MethodPost, "/api/practice/sessions", "", http.StatusCreated, "Commit", nil},
		{http.MethodGet, "/api/practice/sessions?limit=5", "", http.StatusOK, "RecentSessions", []any{5}},
		{http.MethodGet, "/api/practice/summary", "", http.StatusOK, "SkillSummary", nil},
		{http.MethodPut, "/api/practice/preferences", `{"defaultSessionLength":90}`, http.StatusOK, "UpdatePreferences", []any{90}},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			svc := &stubPractice{}
			rec := do(t, newTestRouter(t, svc), tc.method, tc.path, tc.body, bearer(t, "user-7"))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if svc.lastCall != tc.wantCall || svc.lastUser != "user-7" {
				t.Fatalf("call=%s user=%q", svc.lastCall, svc.lastUser)
			}
			if fmt.Sprint(svc.args) != fmt.Sprint(tc.wantArgs) {
				t.Fatalf("args=%v want %v", svc.args, tc.wantArgs)
			}
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	svc := &stubPractice{}
	rec := do(t, newTestRouter(t, svc), http.MethodGet, "/api/practice/draft", "", "")
	if rec.Code != http.StatusUnauthorized || svc.lastCall != "" {
		t.Fatalf("status=%d call=%s", rec.Code, svc.lastCall)
	}
}

func TestPublicRoutes(t *testing.T) {
	svc := &stubPractice{}
	r := newTestRouter(t, svc)

	rec := do(t, r, http.MethodGet, "/healthcheck", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/api/exercises?category=Scales", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("exercises: %d", rec.Code)
	}
	var body struct {
		Exercises []types.Exercise `json:"exercises"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Exercises) != 1 || svc.args[0] != "Scales" {
		t.Fatalf("exercises body=%+v args=%v", body, svc.args)
	}

	rec = do(t, r, http.MethodGet, "/api/exercises/categories", "", "")
	if rec.Code != http.StatusOK || svc.lastCall != "ExerciseCategories" {
		t.Fatalf("categories: %d last=%s", rec.Code, svc.lastCall)
	}
	var cats struct {
		Categories []types.ExerciseCategory `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(cats.Categories) != 2 || cats.Categories[0] != types.CategoryScales {
		t.Fatalf("categories body=%+v", cats)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"in_flight", types.ErrGenerationInFlight, http.StatusConflict, "generation_in_flight"},
		{"empty_draft", types.ErrEmptyDraft, http.StatusConflict, "empty_draft"},
		{"index", fmt.Errorf("%w: 9", types.ErrIndexOutOfRange), http.StatusBadRequest, "index_out_of_range"},
		{"unknown_exercise", fmt.Errorf("%w: %q", types.ErrUnknownExercise, "x"), http.StatusNotFound, "unknown_exercise"},
		{"duration", types.ErrInvalidDuration, http.StatusBadRequest, "invalid_duration"},
		{"length", types.ErrInvalidSessionLength, http.StatusBadRequest, "invalid_session_length"},
		{"wait_timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"internal", fmt.Errorf("database is on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubPractice{err: tc.err}
			rec := do(t, newTestRouter(t, svc), http.MethodPatch, "/api/practice/draft/activities/0", `{"duration":5}`, bearer(t, "u"))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d want %d", rec.Code, tc.wantStatus)
			}
			var env struct {
				Error struct {
					Message string `json:"message"`
					Code    string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Fatalf("code=%q want %q", env.Error.Code, tc.wantCode)
			}
			if tc.wantStatus == http.StatusInternalServerError && strings.Contains(env.Error.Message, "fire") {
				t.Fatalf("internal error text leaked: %q", env.Error.Message)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	cases := []struct {
		method, path, body string
		wantCode           string
	}{
		{http.MethodPatch, "/api/practice/draft/activities/abc", `{"duration":5}`, "invalid_index"},
		{http.MethodPost, "/api/practice/draft/activities", `{}`, "invalid_request"},
		{http.MethodPost, "/api/practice/draft/reorder", `{"sourceIndex":1}`, "invalid_request"},
		{http.MethodPut, "/api/practice/draft/length", `not json`, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			svc := &stubPractice{}
			rec := do(t, newTestRouter(t, svc), tc.method, tc.path, tc.body, bearer(t, "u"))
			if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), tc.wantCode) {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
			if svc.lastCall != "" {
				t.Fatalf("service called on bad request: %s", svc.lastCall)
			}
		})
	}
}
