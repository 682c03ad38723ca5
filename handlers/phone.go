package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/profile"
	"github.com/nri-matrimony/matrimony/services/verification"
	"github.com/nri-matrimony/matrimony/session"
	"go.uber.org/zap"
)

type SendCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10,max=32" example:"+14155551234"`
}

type VerifyCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10,max=32" example:"+14155551234"`
	Code        string `json:"code" validate:"required,len=6" example:"482913"`
	// ProfileID optionally stamps an existing profile as phone-verified.
	ProfileID uint `json:"profileId,omitempty" doc:"Existing profile to mark phone-verified"`
}

type PhoneStatusRequest struct {
	PhoneNumber string `json:"phoneNumber" query:"phoneNumber" validate:"required,min=10,max=32"`
}

type PhoneStatusResponse struct {
	PhoneNumber string             `json:"phoneNumber" example:"+14155551234"`
	State       verification.State `json:"state" example:"pending" doc:"none, pending, expired, verified or consumed"`
}

func (r *PhoneStatusRequest) normalize() {
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *SendCodeRequest) normalize() {
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *VerifyCodeRequest) normalize() {
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Code = strings.TrimSpace(r.Code)
}

type PhoneHandler struct {
	verifications *verification.Service
	profiles      *profile.Service
	logger        *logging.Service
}

func NewPhoneHandler(verifications *verification.Service, profiles *profile.Service, logger *logging.Service) *PhoneHandler {
	return &PhoneHandler{
		verifications: verifications,
		profiles:      profiles,
		logger:        logger,
	}
}

func (h *PhoneHandler) SendCode(c echo.Context) error {
	var req SendCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	userID := session.CurrentUserID(c)
	if err := h.verifications.SendCode(c.Request().Context(), userID, req.PhoneNumber); err != nil {
		h.logger.Warn("send code failed",
			logging.UserID(userID),
			logging.Phone(req.PhoneNumber),
			zap.Error(err))
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Verification code sent"})
}

func (h *PhoneHandler) VerifyCode(c echo.Context) error {
	var req VerifyCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := session.CurrentUserID(c)

	if req.ProfileID > 0 {
		if err := h.profiles.BindVerifiedPhone(ctx, userID, req.ProfileID, req.PhoneNumber, req.Code); err != nil {
			h.logger.Warn("failed to bind verified phone to profile",
				logging.UserID(userID),
				zap.Uint("profile_id", req.ProfileID),
				zap.Error(err))
			return toHTTPError(err)
		}
	} else if err := h.verifications.VerifyCode(ctx, userID, req.PhoneNumber, req.Code); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Phone number verified successfully"})
}

// Status reports where the caller's code for a number sits in its lifecycle.
func (h *PhoneHandler) Status(c echo.Context) error {
	var req PhoneStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	state, err := h.verifications.State(c.Request().Context(), session.CurrentUserID(c), req.PhoneNumber)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, PhoneStatusResponse{PhoneNumber: req.PhoneNumber, State: state})
}
