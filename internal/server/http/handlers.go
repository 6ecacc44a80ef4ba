package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/and161185/securepass/internal/errs"
	"github.com/and161185/securepass/internal/service"
)

// Fixed client-facing messages.
const (
	msgMissingFields      = "Missing fields"
	msgUsernameTaken      = "Username already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "User not found"
	msgServerError        = "Server error"
	msgInvalidBody        = "Invalid request body"
)

type signupRequest struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required"`
	EncryptedVault string `json:"encryptedVault" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type vaultRequest struct {
	Username       string `json:"username" validate:"required"`
	EncryptedVault string `json:"encryptedVault" validate:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type vaultResponse struct {
	EncryptedVault string `json:"encryptedVault"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	accounts service.AccountService
}

// bind decodes and validates the body. It writes the 400 response itself and
// reports whether the handler should continue.
func bind(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnsupportedMediaType {
			return false, c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		}
		// Non-JSON bodies are ignored, so every field stays empty.
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, errorResponse{Error: msgMissingFields})
	}
	return true, nil
}

func (h *handler) signup(c echo.Context) error {
	var req signupRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if err := h.accounts.Register(c.Request().Context(), req.Username, req.Password, req.EncryptedVault); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *handler) login(c echo.Context) error {
	var req loginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	vault, err := h.accounts.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, vaultResponse{EncryptedVault: vault})
}

func (h *handler) updateVault(c echo.Context) error {
	var req vaultRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if err := h.accounts.UpdateVault(c.Request().Context(), req.Username, req.EncryptedVault); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps service errors to status codes with fixed messages.
func fail(c echo.Context, err error) error {
	code, msg := http.StatusInternalServerError, msgServerError
	switch {
	case errors.Is(err, errs.ErrMissingFields):
		code, msg = http.StatusBadRequest, msgMissingFields
	case errors.Is(err, errs.ErrUsernameTaken):
		code, msg = http.StatusConflict, msgUsernameTaken
	case errors.Is(err, errs.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, errs.ErrAccountNotFound):
		code, msg = http.StatusNotFound, msgUserNotFound
	}
	return c.JSON(code, errorResponse{Error: msg})
}
