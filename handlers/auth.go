package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/middleware/csrf"
	"github.com/nri-matrimony/matrimony/services/auth"
	"github.com/nri-matrimony/matrimony/services/jwt"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/session"
	"go.uber.org/zap"
)

type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

type LoginResponse struct {
	User        *auth.User `json:"user"`
	AccessToken string     `json:"accessToken,omitempty"`
	TokenType   string     `json:"tokenType,omitempty"`
	ExpiresIn   int        `json:"expiresIn,omitempty"`
}

type CSRFResponse struct {
	Token string `json:"csrfToken"`
}

type AuthHandler struct {
	auth   *auth.Service
	jwt    *jwt.Service
	logger *logging.Service
}

func NewAuthHandler(authSvc *auth.Service, jwtSvc *jwt.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc, jwt: jwtSvc, logger: logger}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login opens a session and, when bearer tokens are enabled, also issues an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	if err := session.Login(c, user.ID); err != nil {
		return err
	}

	resp := LoginResponse{User: user}
	if h.jwt.Enabled() {
		token, err := h.jwt.GenerateToken(user.ID)
		if err != nil {
			return err
		}
		resp.AccessToken = token
		resp.TokenType = "Bearer"
		resp.ExpiresIn = h.jwt.AccessExpirySeconds()
	}

	h.logger.Info("user logged in", logging.UserID(user.ID))
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if claims := session.BearerClaims(c); claims != nil {
		if err := h.jwt.RevokeToken(claims); err != nil {
			h.logger.Error("failed to revoke access token", zap.Error(err))
			return err
		}
	}

	if err := session.Logout(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out"})
}

func (h *AuthHandler) User(c echo.Context) error {
	user, err := h.auth.GetUser(c.Request().Context(), session.CurrentUserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) CSRFToken(c echo.Context) error {
	return c.JSON(http.StatusOK, CSRFResponse{Token: csrf.GetToken(c)})
}
