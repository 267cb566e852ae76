package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/store"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	seed, err := store.DefaultSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store.New(seed)
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		MaxBodyBytes:   1 << 20,
		RateRPS:        1000,
		RateBurst:      1000,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	st := newTestStore(t)
	RegisterRoutes(r, st, newTestDB(t), cfg)
	return r, st
}

func send(r http.Handler, method, target, body string, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		RequestID string `json:"request_id"`
		Code      string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error JSON %q: %v", w.Body.String(), err)
	}
	if body.RequestID == "" {
		t.Fatalf("error envelope without request_id: %s", w.Body.String())
	}
	return body.Code
}

func TestRegisterRoutes_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := send(r, http.MethodGet, "/health", "", "Origin", "http://anywhere.test")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"questions":3`) {
		t.Fatalf("health should report seeded counts: %s", w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("empty allowlist should allow any origin, got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("request id / security headers missing: %v", w.Header())
	}

	w = send(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "qa_questions") {
		t.Fatalf("GET /metrics bad: code=%d", w.Code)
	}

	w = send(r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound || errCode(t, w) != "not_found" {
		t.Fatalf("GET /nope = %d %s", w.Code, w.Body.String())
	}

	w = send(r, http.MethodPost, "/health", "")
	if w.Code != http.StatusMethodNotAllowed || errCode(t, w) != "method_not_allowed" {
		t.Fatalf("POST /health = %d %s", w.Code, w.Body.String())
	}

	if w := send(r, http.MethodGet, "/swagger/index.html", ""); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off by default, got %d", w.Code)
	}
}

func TestRegisterRoutes_OriginAllowlist(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"http://example.com"}
	r, _ := newRouter(t, cfg)

	w := send(r, http.MethodGet, "/api/v1/questions", "", "Origin", "http://example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("allowed origin = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("ACAO = %q", got)
	}

	w = send(r, http.MethodGet, "/api/v1/questions", "", "Origin", "http://evil.test")
	if w.Code != http.StatusForbidden || errCode(t, w) != "forbidden" {
		t.Fatalf("foreign origin = %d %s", w.Code, w.Body.String())
	}

	if w := send(r, http.MethodGet, "/api/v1/questions", ""); w.Code != http.StatusOK {
		t.Fatalf("same-origin request = %d", w.Code)
	}
}

func TestRegisterRoutes_QuestionLifecycle(t *testing.T) {
	r, st := newRouter(t, testConfig())
	base := "/api/v1/questions"

	w := send(r, http.MethodGet, base, "")
	var all []domain.Question
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil || len(all) != 3 {
		t.Fatalf("list = %d %s (%v)", w.Code, w.Body.String(), err)
	}

	w = send(r, http.MethodGet, base+"?start=1&end=3", "")
	var page []domain.Question
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil || len(page) != 2 || page[0].ID != "2" {
		t.Fatalf("page = %d %s", w.Code, w.Body.String())
	}

	for target, want := range map[string]int{
		base + "?start=0":          http.StatusBadRequest,
		base + "?start=x&end=1":    http.StatusBadRequest,
		base + "?start=0&end=10":   http.StatusRequestedRangeNotSatisfiable,
		base + "?start=2&end=1":    http.StatusRequestedRangeNotSatisfiable,
		base + "/404-no-such-id":   http.StatusNotFound,
		base + "/404-no-such-id/x": http.StatusNotFound,
	} {
		if w := send(r, http.MethodGet, target, ""); w.Code != want {
			t.Fatalf("GET %s = %d; want %d (%s)", target, w.Code, want, w.Body.String())
		}
	}

	w = send(r, http.MethodPost, base, `{"id":"4","title":"T","content":"C","tags":["Go","go"]}`)
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), "Question added") {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	got, err := st.GetQuestion(context.Background(), "4")
	if err != nil || len(got.Tags) != 1 {
		t.Fatalf("stored question = %+v, %v", got, err)
	}

	w = send(r, http.MethodPost, base, `{"id":`)
	if w.Code != http.StatusUnprocessableEntity || errCode(t, w) != "unprocessable_entity" {
		t.Fatalf("malformed body = %d %s", w.Code, w.Body.String())
	}

	w = send(r, http.MethodPut, base+"/4", `{"id":"ignored","title":"T2","content":"C2"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Question updated") {
		t.Fatalf("update = %d %s", w.Code, w.Body.String())
	}
	w = send(r, http.MethodGet, base+"/4", "")
	if !strings.Contains(w.Body.String(), `"title":"T2"`) || !strings.Contains(w.Body.String(), `"id":"4"`) {
		t.Fatalf("after update = %s", w.Body.String())
	}

	if w := send(r, http.MethodPut, base+"/99", `{"title":"x","content":"y"}`); w.Code != http.StatusNotFound {
		t.Fatalf("update missing = %d", w.Code)
	}

	if w := send(r, http.MethodDelete, base+"/4", ""); w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := send(r, http.MethodDelete, base+"/4", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", w.Code)
	}
}

func TestRegisterRoutes_Answers(t *testing.T) {
	r, st := newRouter(t, testConfig())
	base := "/api/v1/questions"

	w := send(r, http.MethodPost, base+"/1/answers", `{"content":"Use a mutex."}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add answer = %d %s", w.Code, w.Body.String())
	}

	_, before := st.Counts()
	w = send(r, http.MethodPost, base+"/missing/answers", `{"content":"x"}`)
	if w.Code != http.StatusNotFound || errCode(t, w) != "not_found" {
		t.Fatalf("answer to missing question = %d %s", w.Code, w.Body.String())
	}
	if _, after := st.Counts(); after != before {
		t.Fatalf("answers changed on failure: %d -> %d", before, after)
	}

	for _, body := range []string{`{}`, `{"content":""}`, `{"content":"  \t "}`} {
		if w := send(r, http.MethodPost, base+"/1/answers", body); w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("answer %s = %d; want 422", body, w.Code)
		}
	}
	if _, n := st.Counts(); n != 1 {
		t.Fatalf("answers = %d after rejected bodies; want 1", n)
	}

	w = send(r, http.MethodGet, base+"/1/answers", "")
	var list []domain.Answer
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0].QuestionID != "1" {
		t.Fatalf("list answers = %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_IdempotentReplayBypassesLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, st := newRouter(t, cfg)

	target := "/api/v1/questions/2/answers"
	first := send(r, http.MethodPost, target, `{"content":"once"}`, middleware.HeaderIdempotencyKey, "k-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("first = %d %s", first.Code, first.Body.String())
	}

	second := send(r, http.MethodPost, target, `{"content":"once"}`, middleware.HeaderIdempotencyKey, "k-1")
	if second.Code != http.StatusCreated {
		t.Fatalf("replay = %d %s", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay header missing: %v", second.Header())
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body differs: %s vs %s", first.Body.String(), second.Body.String())
	}
	if _, n := st.Counts(); n != 1 {
		t.Fatalf("answers = %d; want 1", n)
	}

	third := send(r, http.MethodPost, target, `{"content":"other"}`, middleware.HeaderIdempotencyKey, "k-2")
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("fresh key should hit the limiter, got %d", third.Code)
	}

	bad := send(r, http.MethodPost, target, `{"content":"x"}`, middleware.HeaderIdempotencyKey, "bad key!")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("invalid key = %d", bad.Code)
	}
}

func TestRegisterRoutes_ReplayKeyDoesNotBypassLimiterOnOtherRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, st := newRouter(t, cfg)

	first := send(r, http.MethodPost, "/api/v1/questions/2/answers", `{"content":"once"}`, middleware.HeaderIdempotencyKey, "k")
	if first.Code != http.StatusCreated {
		t.Fatalf("first = %d %s", first.Code, first.Body.String())
	}

	put := send(r, http.MethodPut, "/api/v1/questions/2",
		`{"id":"2","title":"t","content":"c"}`, middleware.HeaderIdempotencyKey, "k")
	if put.Code != http.StatusTooManyRequests {
		t.Fatalf("PUT with a used key = %d; want 429", put.Code)
	}
	del := send(r, http.MethodDelete, "/api/v1/questions/2", "", middleware.HeaderIdempotencyKey, "k")
	if del.Code != http.StatusTooManyRequests {
		t.Fatalf("DELETE with a used key = %d; want 429", del.Code)
	}
	if _, err := st.GetQuestion(context.Background(), "2"); err != nil {
		t.Fatalf("question 2 changed: %v", err)
	}
}

func TestRegisterRoutes_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 32
	r, _ := newRouter(t, cfg)

	body := `{"id":"big","title":"` + strings.Repeat("x", 64) + `","content":"c"}`
	if w := send(r, http.MethodPost, "/api/v1/questions", body); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("oversized body = %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_SwaggerEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ := newRouter(t, cfg)

	w := send(r, http.MethodGet, "/swagger/doc.json", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/questions/{id}/answers") {
		t.Fatalf("swagger doc = %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, prefix := range []string{"", "/", "/api"} {
		r := gin.New()
		groupWithPrefix(r, prefix).GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		target := "/ping"
		if prefix == "/api" {
			target = "/api/ping"
		}
		if w := send(r, http.MethodGet, target, ""); w.Code != http.StatusNoContent {
			t.Fatalf("prefix %q: GET %s = %d", prefix, target, w.Code)
		}
	}
}
