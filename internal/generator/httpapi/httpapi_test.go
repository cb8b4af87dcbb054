package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practicecoach-backend/internal/generator/config"
	"github.com/yungbote/practicecoach-backend/internal/generator/sessiongen"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type stubGenerator struct {
	acts   []sessiongen.Activity
	err    error
	calls  int
	length int
}

func (s *stubGenerator) Generate(ctx context.Context, skillSummary string, sessionLength int) ([]sessiongen.Activity, error) {
	s.calls++
	s.length = sessionLength
	return s.acts, s.err
}

func testHandler(t *testing.T, gen SessionGenerator) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: "test", HTTP: config.HTTPConfig{MaxRequestBytes: 1 << 10}}
	return NewHandler(cfg, logger.Nop(), gen)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGenerateSession(t *testing.T) {
	five := 5.0
	gen := &stubGenerator{acts: []sessiongen.Activity{{ID: "activity-1-0", Title: "W", Duration: &five, Kind: "warmup", Suggestions: []string{}}}}
	h := testHandler(t, gen)

	rr := do(h, http.MethodPost, "/generateSession", `{"skillSummary":"beginner","sessionLength":30}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Activities []sessiongen.Activity `json:"activities"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Activities) != 1 || out.Activities[0].ID != "activity-1-0" || gen.length != 30 {
		t.Fatalf("out=%+v length=%d", out, gen.length)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestGenerateSessionBadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{name: "missing_summary", body: `{"sessionLength":30}`, code: http.StatusBadRequest},
		{name: "missing_length", body: `{"skillSummary":"x"}`, code: http.StatusBadRequest},
		{name: "not_json", body: `nope`, code: http.StatusBadRequest},
		{name: "too_long", body: `{"skillSummary":"x","sessionLength":100000}`, code: http.StatusBadRequest},
		{name: "oversized", body: `{"skillSummary":"` + strings.Repeat("x", 2048) + `","sessionLength":30}`, code: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{}
			rr := do(testHandler(t, gen), http.MethodPost, "/generateSession", tc.body)
			if rr.Code != tc.code {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			if gen.calls != 0 {
				t.Fatalf("generator called")
			}
		})
	}
}

func TestGenerateSessionFailure(t *testing.T) {
	h := testHandler(t, &stubGenerator{err: errors.New("model overloaded")})
	rr := do(h, http.MethodPost, "/generateSession", `{"skillSummary":"x","sessionLength":30}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	var out map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out["error"] != "Failed to generate session" || out["message"] != "model overloaded" {
		t.Fatalf("body=%v", out)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := do(testHandler(t, &stubGenerator{}), http.MethodGet, "/generateSession", "")
	if rr.Code != http.StatusMethodNotAllowed || rr.Body.String() != "Method Not Allowed" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	rr := do(testHandler(t, &stubGenerator{}), http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}
