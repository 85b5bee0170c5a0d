package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parking_ledger/internal/service"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"
	UsernameKey             = "username"
	UserRoleKey             = "userRole"
)

type AuthMiddleware struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthMiddleware(authService *service.AuthService, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{authService: authService, logger: logger.Named("auth")}
}

// Authenticate checks the bearer token. When no operator is configured every request
// passes through untouched.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authService.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || !strings.EqualFold(fields[0], AuthorizationTypeBearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		_, claims, err := m.authService.ValidateToken(fields[1])
		if err != nil {
			m.logger.Info("rejected token", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token", "details": err.Error()})
			return
		}

		username, okUsername := claims["sub"].(string)
		role, okRole := claims["role"].(string)
		if !okUsername || !okRole {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is missing operator claims"})
			return
		}

		c.Set(UsernameKey, username)
		c.Set(UserRoleKey, role)
		c.Next()
	}
}
