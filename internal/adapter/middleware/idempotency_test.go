package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl))
	e.POST("/applications", handler)
	e.GET("/applications", handler)
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func validHeaders() map[string]string {
	return map[string]string{
		"Lm-Request-Id": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"Lm-Request-At": time.Now().UTC().Format(time.RFC3339),
		"Lm-Caller-Ref": "9876543210",
	}
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/applications", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
	})

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing Lm-Request-Id", func(h map[string]string) { delete(h, "Lm-Request-Id") }},
		{"invalid Lm-Request-Id", func(h map[string]string) { h["Lm-Request-Id"] = "NOT-VALID" }},
		{"missing Lm-Request-At", func(h map[string]string) { delete(h, "Lm-Request-At") }},
		{"naive Lm-Request-At", func(h map[string]string) { h["Lm-Request-At"] = "2026-04-10T09:30:00" }},
		{"skewed Lm-Request-At", func(h map[string]string) {
			h["Lm-Request-At"] = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
		}},
		{"missing caller", func(h map[string]string) { delete(h, "Lm-Caller-Ref") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeaders()
			tt.mutate(h)
			rec := doReq(t, e, http.MethodPost, "/applications", mkJSONBody(t, map[string]int{"x": 1}), h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_ReplayStoredResponse(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int64
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		n := atomic.AddInt64(&calls, 1)
		return c.JSON(http.StatusCreated, map[string]int64{"call": n})
	})

	h := validHeaders()
	body := map[string]string{"name": "Asha"}

	first := doReq(t, e, http.MethodPost, "/applications", mkJSONBody(t, body), h)
	if first.Code != http.StatusCreated {
		t.Fatalf("first code=%d", first.Code)
	}

	second := doReq(t, e, http.MethodPost, "/applications", mkJSONBody(t, body), h)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay code=%d body=%s", second.Code, second.Body.String())
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func Test_SameIDDifferentBodyConflicts(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
	})

	h := validHeaders()
	if rec := doReq(t, e, http.MethodPost, "/applications", mkJSONBody(t, map[string]int{"x": 1}), h); rec.Code != http.StatusCreated {
		t.Fatalf("first code=%d", rec.Code)
	}
	rec := doReq(t, e, http.MethodPost, "/applications", mkJSONBody(t, map[string]int{"x": 2}), h)
	if rec.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_DistinctCallersDoNotCollide(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int64
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		atomic.AddInt64(&calls, 1)
		return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
	})

	body := map[string]int{"x": 1}
	h1 := validHeaders()
	h2 := validHeaders()
	h2["Lm-Caller-Ref"] = "9123456789"

	doReq(t, e, http.MethodPost, "/applications", mkJSONBody(t, body), h1)
	doReq(t, e, http.MethodPost, "/applications", mkJSONBody(t, body), h2)
	if atomic.LoadInt64(&calls) != 2 {
		t.Fatalf("handler ran %d times, want 2", calls)
	}
}
