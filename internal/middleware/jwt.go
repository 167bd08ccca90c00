package middleware // reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"
)

// ContextUserKey is where JWTAuth stores the caller's login.  Handlers
// read it back with c.Get(ContextUserKey).(string).
const ContextUserKey = "user_login"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject claim, the user login, into the request
// context.  Tokens are issued by the platform's identity provider; this
// service only verifies them, it never mints its own.  The secret must
// match the one the issuer signs with.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any other signing
			// method so an attacker cannot downgrade to "none".
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no subject"})
			}

			c.Set(ContextUserKey, sub)
			return next(c)
		}
	}
}

// UserLogin extracts the authenticated login set by JWTAuth, or "" when
// the route was not wrapped by it.
func UserLogin(c echo.Context) string {
	if v, ok := c.Get(ContextUserKey).(string); ok {
		return v
	}
	return ""
}
