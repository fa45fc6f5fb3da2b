package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireRole returns echo middleware that accepts only bearer tokens signed
// with secret and carrying role. An empty secret disables the check.
func RequireRole(secret []byte, role string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if len(secret) == 0 {
			return next
		}

		return func(c echo.Context) error {
			var token string
			authHeader := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if token == "" {
				logger.Warn("Request rejected: missing token", zap.String("path", c.Path()))
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "missing_token",
					"message": "JWT token is required in Authorization header",
				})
			}

			claims, err := ValidateToken(secret, token)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "invalid_token",
					"message": "Invalid or expired JWT token",
				})
			}

			if claims.Role != role {
				logger.Warn("Request rejected: invalid role", zap.String("role", claims.Role))
				return c.JSON(http.StatusForbidden, map[string]string{
					"error":   "invalid_role",
					"message": "Token role is not allowed for this endpoint",
				})
			}

			return next(c)
		}
	}
}
