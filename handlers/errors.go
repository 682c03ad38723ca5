package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/services/auth"
	"github.com/nri-matrimony/matrimony/services/phone"
	"github.com/nri-matrimony/matrimony/services/profile"
	"github.com/nri-matrimony/matrimony/services/verification"
)

const (
	MsgNotConfigured      = "Phone verification is not configured"
	MsgInvalidOrExpired   = "Invalid or expired verification code"
	MsgInvalidCredentials = "Invalid username or password"
	MsgInvalidRequestBody = "Invalid request body"
	MsgProfileNotFound    = "Profile not found"
)

// toHTTPError maps service errors onto client-safe responses. Errors it does not recognise are
// returned unchanged and end up as a generic 500.
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	var cfgErr *verification.ConfigurationError
	if errors.As(err, &cfgErr) {
		return echo.NewHTTPError(http.StatusInternalServerError, MsgNotConfigured).SetInternal(err)
	}

	if de, ok := phone.AsDeliveryError(err); ok {
		status := http.StatusInternalServerError
		if de.CallerFault {
			status = http.StatusBadRequest
		}
		return echo.NewHTTPError(status, de.Message).SetInternal(err)
	}

	var pwErr *auth.PasswordError
	if errors.As(err, &pwErr) {
		return echo.NewHTTPError(http.StatusBadRequest, pwErr.Message)
	}

	switch {
	case errors.Is(err, verification.ErrInvalidOrExpiredCode):
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidOrExpired)
	case errors.Is(err, profile.ErrPhoneNotVerified):
		return echo.NewHTTPError(http.StatusBadRequest, "Phone number must be verified before creating a profile")
	case errors.Is(err, profile.ErrPhoneMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, "Phone number does not match the profile")
	case errors.Is(err, profile.ErrProfileNotFound), errors.Is(err, profile.ErrNotOwner):
		return echo.NewHTTPError(http.StatusNotFound, MsgProfileNotFound)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, auth.ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	case errors.Is(err, auth.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	return err
}

type normalizer interface {
	normalize()
}

// bindAndValidate decodes the JSON body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidRequestBody).SetInternal(err)
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
