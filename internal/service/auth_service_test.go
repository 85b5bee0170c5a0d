package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"parking_ledger/internal/clock"
	"parking_ledger/internal/domain"
)

func newTestAuthService(t *testing.T, clk clock.Clock) *AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewAuthService(domain.Operator{Username: "desk", PasswordHash: string(hash)}, "test-secret", time.Hour, clk)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("issues a token that validates", func(t *testing.T) {
		svc := newTestAuthService(t, clock.NewSystem())

		resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "desk", Password: "s3cret!"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Role != domain.RoleOperator || resp.Username != "desk" || resp.Token == "" {
			t.Fatalf("unexpected response %+v", resp)
		}

		_, claims, err := svc.ValidateToken(resp.Token)
		if err != nil {
			t.Fatalf("expected valid token, got %v", err)
		}
		if claims["sub"] != "desk" || claims["role"] != domain.RoleOperator {
			t.Fatalf("unexpected claims %v", claims)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := newTestAuthService(t, clock.NewSystem())
		_, err := svc.Login(ctx, domain.LoginUserDTO{Username: "desk", Password: "nope"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("wrong username", func(t *testing.T) {
		svc := newTestAuthService(t, clock.NewSystem())
		_, err := svc.Login(ctx, domain.LoginUserDTO{Username: "other", Password: "s3cret!"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("disabled without operator", func(t *testing.T) {
		svc := NewAuthService(domain.Operator{}, "", time.Hour, clock.NewSystem())
		if svc.Enabled() {
			t.Fatalf("expected auth to be disabled")
		}
		_, err := svc.Login(ctx, domain.LoginUserDTO{Username: "desk", Password: "s3cret!"})
		if !errors.Is(err, ErrAuthDisabled) {
			t.Fatalf("expected ErrAuthDisabled, got %v", err)
		}
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("expired token", func(t *testing.T) {
		clk := clock.NewManual(time.Now())
		svc := newTestAuthService(t, clk)

		resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "desk", Password: "s3cret!"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		clk.Advance(2 * time.Hour)

		if _, _, err := svc.ValidateToken(resp.Token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid, got %v", err)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		svc := newTestAuthService(t, clock.NewSystem())
		if _, _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid, got %v", err)
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		issuer := newTestAuthService(t, clock.NewSystem())
		resp, err := issuer.Login(ctx, domain.LoginUserDTO{Username: "desk", Password: "s3cret!"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		other := NewAuthService(domain.Operator{Username: "desk", PasswordHash: "x"}, "other-secret", time.Hour, clock.NewSystem())
		if _, _, err := other.ValidateToken(resp.Token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid, got %v", err)
		}
	})
}
