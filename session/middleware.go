package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/services/jwt"
)

type contextKey string

const (
	sessionManagerKey = "session_manager"
	userIDContextKey  = "auth_user_id"
	claimsContextKey  = "auth_claims"

	managerCtxKey contextKey = "session_manager"
)

// Middleware loads the session for every request and commits it before the response is written.
func Middleware(manager *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager == nil {
				return next(c)
			}

			c.Set(sessionManagerKey, manager)

			var handlerErr error

			rw := &responseWriterWrapper{
				ResponseWriter: c.Response().Writer,
				echo:           c.Response(),
			}

			handler := manager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), managerCtxKey, manager)
				c.SetRequest(r.WithContext(ctx))
				c.Response().Writer = w
				handlerErr = next(c)
				if handlerErr != nil {
					// render while the session writer is still active
					c.Error(handlerErr)
					handlerErr = nil
				}
			}))

			handler.ServeHTTP(rw, c.Request())
			return handlerErr
		}
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	echo *echo.Response
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.echo.Status == 0 {
		w.echo.Status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func GetManager(c echo.Context) *Manager {
	if manager, ok := c.Get(sessionManagerKey).(*Manager); ok {
		return manager
	}
	return nil
}

func GetManagerFromContext(ctx context.Context) *Manager {
	if manager, ok := ctx.Value(managerCtxKey).(*Manager); ok {
		return manager
	}
	return nil
}

// RequireAuth admits requests carrying either an authenticated session or a valid bearer token.
func RequireAuth(jwtSvc *jwt.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c.Request()); ok {
				if !jwtSvc.Enabled() {
					return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
				}
				claims, err := jwtSvc.ValidateToken(token)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
				}
				c.Set(claimsContextKey, claims)
				c.Set(userIDContextKey, claims.UserID)
				return next(c)
			}

			if userID := GetUserID(c); userID > 0 {
				c.Set(userIDContextKey, userID)
				return next(c)
			}

			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// CurrentUserID returns the user admitted by RequireAuth, or 0.
func CurrentUserID(c echo.Context) uint {
	if id, ok := c.Get(userIDContextKey).(uint); ok {
		return id
	}
	return 0
}

// BearerClaims returns the token claims when the request authenticated with a bearer token.
func BearerClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(claimsContextKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
