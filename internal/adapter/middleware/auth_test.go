package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const secret = "test-secret"

func signToken(t *testing.T, userID, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.GET("/who", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"user": CallerID(c), "role": CallerRole(c)})
	}, mw...)
	return e
}

func TestAuth(t *testing.T) {
	e := authEcho(Auth(secret))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, "u1", "admin", -time.Minute), http.StatusUnauthorized},
		{"valid token", "Bearer " + signToken(t, "u1", "admin", time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("code=%d want=%d body=%s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := authEcho(Auth(secret), RequireRole("admin", "credit_head"))

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "agent", time.Hour))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("agent code=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u2", "credit_head", time.Hour))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("credit_head code=%d body=%s", rec.Code, rec.Body.String())
	}
}
