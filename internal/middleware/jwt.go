package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the account id and email claims into the request context.
// Handlers read them via c.Get("user_id") / c.Get("user_email") and thread
// them into audit entries. A missing token yields 401; a malformed or
// expired token yields 403 so clients can tell the two apart.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token de acceso requerido"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Reject tokens signed with anything but HMAC.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Token inválido"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Token inválido"})
			}

			// Numeric JSON claims decode as float64.
			id, ok := claims["id"].(float64)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Token inválido"})
			}
			email, _ := claims["email"].(string)

			c.Set("user_id", uint64(id))
			c.Set("user_email", email)
			return next(c)
		}
	}
}
