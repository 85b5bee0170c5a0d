package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"parking_ledger/internal/clock"
	"parking_ledger/internal/domain"
	"parking_ledger/internal/service"
)

func newProtectedRouter(as *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", NewAuthMiddleware(as, nil).Authenticate(), func(c *gin.Context) {
		c.String(http.StatusOK, "%s/%s", c.GetString(UsernameKey), c.GetString(UserRoleKey))
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	clk := clock.NewManual(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	as := service.NewAuthService(domain.Operator{Username: "desk", PasswordHash: string(hash)}, "secret", time.Hour, clk)
	resp, err := as.Login(context.Background(), domain.LoginUserDTO{Username: "desk", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	router := newProtectedRouter(as)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "missing header", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", wantCode: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer not-a-jwt", wantCode: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + resp.Token, wantCode: http.StatusOK, wantBody: "desk/operator"},
		{name: "lowercase scheme", header: "bearer " + resp.Token, wantCode: http.StatusOK, wantBody: "desk/operator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestAuthenticateDisabled(t *testing.T) {
	t.Parallel()

	as := service.NewAuthService(domain.Operator{}, "", time.Hour, clock.NewSystem())
	router := newProtectedRouter(as)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
