package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloodcare/donation-system/internal/core/ports"
)

// ctxIdentity extracts the caller identity injected by the Auth middleware.
// A missing email claim means the middleware did not run (or the token was
// minted without an identity); reject with 401 before any service call.
func ctxIdentity(c echo.Context) (ports.Identity, error) {
	email, _ := c.Get("email").(string)
	if email == "" {
		return ports.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	name, _ := c.Get("name").(string)
	return ports.Identity{Email: email, Name: name}, nil
}
