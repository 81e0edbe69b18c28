package router

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hrportal/internal/auth"
	"hrportal/internal/config"
	"hrportal/internal/handler"
	"hrportal/internal/logging"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger logging.Logger,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	documentHandler *handler.DocumentHandler,
	contentHandler *handler.ContentHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.UploadMaxBytes)))

	// Add validator
	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Signed document links; the token in the query authorises the request.
	if contentHandler != nil {
		e.GET("/file/d/:ref/view", contentHandler.View)
	}

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:    jwtService.Secret(),
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(auth.Claims) },
		ErrorHandler:  jwtErrorHandler,
	}), Session(tokenStore))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", authHandler.Me)

	// Employee routes
	secured.GET("/documents", documentHandler.ListMine)
	secured.GET("/documents/:ref/link", documentHandler.OpenLink)

	// Admin routes
	admin := secured.Group("/admin", AdminOnly)
	admin.POST("/users", userHandler.CreateUser)
	admin.GET("/users", userHandler.ListUsers)
	admin.GET("/users/:identifier/documents", documentHandler.ListForUser)
	admin.POST("/documents", documentHandler.Upload)
}

// bodyLimit leaves room for the multipart envelope around the largest
// accepted upload.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return fmt.Sprintf("%dK", maxUpload>>10+1024)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator registered on the echo instance.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
