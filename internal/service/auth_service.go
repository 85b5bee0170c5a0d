package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"parking_ledger/internal/clock"
	"parking_ledger/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrTokenInvalid = errors.New("token is invalid or expired")
var ErrAuthDisabled = errors.New("no operator account is configured")

// AuthService issues and checks operator tokens. Without a configured operator the
// service is disabled and the ledger's mutating routes stay open.
type AuthService struct {
	operator      domain.Operator
	jwtSecret     string
	jwtExpiration time.Duration
	clock         clock.Clock
}

func NewAuthService(operator domain.Operator, jwtSecret string, jwtExpiration time.Duration, clk clock.Clock) *AuthService {
	if operator.Role == "" {
		operator.Role = domain.RoleOperator
	}
	return &AuthService{
		operator:      operator,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		clock:         clk,
	}
}

func (s *AuthService) Enabled() bool {
	return s.operator.Username != "" && s.operator.PasswordHash != "" && s.jwtSecret != ""
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}
	if dto.Username != s.operator.Username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.operator.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	expirationTime := now.Add(s.jwtExpiration)
	claims := jwt.MapClaims{
		"sub":  s.operator.Username,
		"exp":  expirationTime.Unix(),
		"iat":  now.Unix(),
		"role": s.operator.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token:     tokenString,
		Username:  s.operator.Username,
		Role:      s.operator.Role,
		ExpiresAt: expirationTime.Unix(),
	}, nil
}

// ValidateToken is used by the auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, nil, fmt.Errorf("%w: malformed token", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, fmt.Errorf("%w: token expired", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, nil, fmt.Errorf("%w: token not valid yet", ErrTokenInvalid)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, nil, ErrTokenInvalid
	}
	return token, claims, nil
}
