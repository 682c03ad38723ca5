package csrf

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nri-matrimony/matrimony/config"
)

const ContextKey = "csrf"

func Middleware(cfg *config.CSRFConfig) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	var sameSite http.SameSite
	switch cfg.CookieSameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	default:
		sameSite = http.SameSiteLaxMode
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        skipBearer,
		TokenLookup:    cfg.TokenLookup,
		ContextKey:     ContextKey,
		CookieName:     cfg.CookieName,
		CookiePath:     cfg.CookiePath,
		CookieMaxAge:   cfg.CookieMaxAge,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: false,
		CookieSameSite: sameSite,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "Invalid or missing CSRF token")
		},
	})
}

// skipBearer exempts requests authenticated by bearer token.
func skipBearer(c echo.Context) bool {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	return len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ")
}

func GetToken(c echo.Context) string {
	if token, ok := c.Get(ContextKey).(string); ok {
		return token
	}
	return ""
}
