// Package httpserver exposes the SecurePass JSON API over echo.
package httpserver

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/and161185/securepass/internal/service"
)

// Options tunes the HTTP surface.
type Options struct {
	// Static is a directory served at "/". Skipped when empty or missing.
	Static string
	// BodyLimit caps request bodies, e.g. "10M". Empty disables the limit.
	BodyLimit string
}

// requestValidator adapts go-playground/validator to echo.Validator.
type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// New builds the echo instance with middleware and routes.
func New(accounts service.AccountService, log *zap.Logger, opts Options) *echo.Echo {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(RequestID())
	e.Use(AccessLog(log))
	e.Use(Recover(log))
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	h := &handler{accounts: accounts}
	e.POST("/signup", h.signup)
	e.POST("/login", h.login)
	e.POST("/vault", h.updateVault)
	e.GET("/health", h.health)

	if opts.Static != "" {
		if fi, err := os.Stat(opts.Static); err == nil && fi.IsDir() {
			e.Static("/", opts.Static)
		} else {
			log.Warn("static dir not served", zap.String("dir", opts.Static))
		}
	}
	return e
}
