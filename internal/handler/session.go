package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hrportal/internal/auth"
	"hrportal/internal/errors"
	"hrportal/internal/model"
)

// Context keys set by the session middleware.
const (
	ContextKeyClaims   = "claims"
	ContextKeyIdentity = "identity"
)

// SetSession stores the decoded access token on the request context.
func SetSession(c echo.Context, claims *auth.Claims) {
	c.Set(ContextKeyClaims, claims)
	c.Set(ContextKeyIdentity, claims.Identity())
}

// ClaimsFrom returns the access token claims of the request, if any.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ContextKeyClaims).(*auth.Claims)
	return claims
}

// IdentityFrom returns the session identity of the request, if any.
func IdentityFrom(c echo.Context) *model.Identity {
	identity, _ := c.Get(ContextKeyIdentity).(*model.Identity)
	return identity
}

func unauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: "authentication required",
		Code:  "UNAUTHORIZED",
	})
}

func fromDomainError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
