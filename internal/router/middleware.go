package router

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hrportal/internal/auth"
	"hrportal/internal/errors"
	"hrportal/internal/handler"
	"hrportal/internal/logging"
)

// Session turns the token validated by the JWT middleware into the request
// identity. Access tokens revoked at logout and refresh tokens are rejected.
func Session(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return invalidToken()
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.TokenType != auth.TokenTypeAccess || claims.Identifier == "" {
				return invalidToken()
			}

			if claims.ID != "" {
				revoked, _ := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
				if revoked {
					return invalidToken()
				}
			}

			handler.SetSession(c, claims)
			return next(c)
		}
	}
}

// AdminOnly rejects sessions whose identity is not an administrator.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := handler.IdentityFrom(c)
		if identity == nil || !identity.Admin {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "administrator access required",
				Code:  "FORBIDDEN",
			})
		}
		return next(c)
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			ctx := c.Request().Context()
			if v.Error != nil {
				logger.Warn(ctx, "request failed", append(args, "error", v.Error)...)
				return nil
			}
			logger.Info(ctx, "request", args...)
			return nil
		},
	})
}

func jwtErrorHandler(c echo.Context, err error) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: "missing or invalid access token",
		Code:  "UNAUTHORIZED",
	})
}

func invalidToken() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: "invalid or revoked access token",
		Code:  "UNAUTHORIZED",
	})
}
