// Package echomw provides Echo middlewares used by the mock sales API.
package echomw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// Realm for WWW-Authenticate header.
const authRealm = "sales-api"

/*
RequireBearerToken validates Authorization: Bearer <token> against expectedToken.

On failure responds 401. An empty expectedToken rejects every request.
*/
func RequireBearerToken(expectedToken string) echo.MiddlewareFunc {
	expected := strings.TrimSpace(expectedToken)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				// Fail closed if not configured.
				return unauthorized(c)
			}

			received, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorized(c)
			}

			if subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
				return unauthorized(c)
			}

			return next(c)
		}
	}
}

// bearerToken extracts the token. The scheme is case-insensitive per RFC 6750.
func bearerToken(header string) (token string, ok bool) {
	auth := strings.TrimSpace(header)

	const bearer = "bearer "
	if len(auth) < len(bearer) || !strings.EqualFold(auth[:len(bearer)], bearer) {
		return "", false
	}

	token = strings.TrimSpace(auth[len(bearer):])
	return token, token != ""
}

func unauthorized(c echo.Context) error {
	LogRouteAccess(c, tl.Info, "Unauthorized access attempt", palette.Yellow)

	c.Response().Header().Set("WWW-Authenticate", `Bearer realm="`+authRealm+`"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "unauthorized",
	})
}
