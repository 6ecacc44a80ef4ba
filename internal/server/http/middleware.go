package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestID keeps a caller-supplied X-Request-ID or assigns a UUIDv4.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			id, err := uuid.NewV4()
			if err != nil {
				return ""
			}
			return id.String()
		},
	})
}

// AccessLog writes one line per request. Bodies are never logged.
func AccessLog(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			lvl := zapcore.InfoLevel
			if res.Status >= http.StatusInternalServerError {
				lvl = zapcore.ErrorLevel
			}
			log.Log(lvl, "http",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", res.Status),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", c.RealIP()),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

// Recover turns handler panics into 500 responses and logs the stack.
func Recover(log *zap.Logger) echo.MiddlewareFunc {
	cfg := middleware.DefaultRecoverConfig
	cfg.LogErrorFunc = func(c echo.Context, err error, stack []byte) error {
		log.Error("panic",
			zap.Error(err),
			zap.ByteString("stack", stack),
			zap.String("path", c.Request().URL.Path),
		)
		return err
	}
	return middleware.RecoverWithConfig(cfg)
}

// errorHandler renders errors that escaped the handlers as {"error": msg}.
// Server-side faults never expose their text.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := http.StatusInternalServerError, msgServerError
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			code, msg = he.Code, http.StatusText(he.Code)
		} else {
			log.Error("unhandled error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, errorResponse{Error: msg})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
