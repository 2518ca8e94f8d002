package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session resolves the signed-in user from a bearer token, when one is
// present. Requests without a token proceed as guests; invalid tokens are
// ignored rather than rejected, because checkout allows guests anyway.
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" || secret == "" {
				return next(c)
			}

			claims := &sessionClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !parsed.Valid {
				return next(c)
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RequireAdmin guards the operator endpoints.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if role != "admin" {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin access required")
			}
			return next(c)
		}
	}
}

// UserID returns the signed-in user's id, or nil for guests.
func UserID(c echo.Context) *string {
	id, _ := c.Get(ContextUserID).(string)
	if id == "" {
		return nil
	}
	return &id
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
