package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/middleware/csrf"
	"github.com/nri-matrimony/matrimony/middleware/ratelimit"
	"github.com/nri-matrimony/matrimony/openapi"
	"github.com/nri-matrimony/matrimony/server"
	"github.com/nri-matrimony/matrimony/services/auth"
	"github.com/nri-matrimony/matrimony/services/jwt"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/profile"
	"github.com/nri-matrimony/matrimony/session"
	"go.uber.org/fx"
)

const (
	bearerScheme  = "bearerAuth"
	sessionScheme = "sessionAuth"
)

type RouteParams struct {
	fx.In

	Server   *server.Server
	Config   *config.Config
	Logger   *logging.Service
	Doc      *openapi.Document
	JWT      *jwt.Service
	Limits   ratelimit.Store
	Sessions *session.Manager `optional:"true"`

	Phone   *PhoneHandler
	Profile *ProfileHandler
	Auth    *AuthHandler
}

func NewDocument(cfg *config.Config) *openapi.Document {
	return openapi.New(cfg.App.Name+" API", "1.0.0").
		Description("Accounts, profiles and phone number verification").
		Tag("auth", "Registration and login").
		Tag("phone", "Phone number verification").
		Tag("profiles", "Matrimony profiles").
		BearerAuth(bearerScheme).
		CookieAuth(sessionScheme, cfg.Session.Name)
}

// RegisterRoutes installs the global middleware chain and every API route, documenting each one.
func RegisterRoutes(p RouteParams) {
	p.Server.Use(logging.RequestLogger(p.Logger, "/healthz"))
	if p.Sessions != nil {
		p.Server.Use(session.Middleware(p.Sessions))
	}
	p.Server.Use(csrf.Middleware(&p.Config.CSRF))

	requireAuth := session.RequireAuth(p.JWT)
	doc := p.Doc

	p.Server.Get("/api/openapi.json", doc.JSONHandler())
	p.Server.Get("/api/openapi.yaml", doc.YAMLHandler())

	authGroup := p.Server.Group("/api/auth")
	authLimit := ratelimit.Middleware(ratelimit.Config{
		Store:  p.Limits,
		Rate:   p.Config.RateLimit.LoginRate,
		Period: p.Config.RateLimit.LoginPeriod,
		KeyGenerator: func(c echo.Context) string {
			return "login:" + ratelimit.IPKeyGenerator(c)
		},
	})

	authGroup.GET("/csrf", p.Auth.CSRFToken)
	doc.Document(http.MethodGet, "/api/auth/csrf").Summary("Issue a CSRF token for cookie-authenticated writes").
		Tags("auth").Response(http.StatusOK, CSRFResponse{}, "Token").Build()

	authGroup.POST("/register", p.Auth.Register, authLimit)
	doc.Document(http.MethodPost, "/api/auth/register").Summary("Create an account").Tags("auth").
		Body(CredentialsRequest{}, "Credentials").
		Response(http.StatusCreated, auth.User{}, "Created").
		Response(http.StatusBadRequest, errorExample, "Validation failed").
		Response(http.StatusConflict, errorExample, "Username taken").Build()

	authGroup.POST("/login", p.Auth.Login, authLimit)
	doc.Document(http.MethodPost, "/api/auth/login").Summary("Log in").Tags("auth").
		Body(CredentialsRequest{}, "Credentials").
		Response(http.StatusOK, LoginResponse{}, "Session established").
		Response(http.StatusUnauthorized, errorExample, "Invalid credentials").
		Response(http.StatusTooManyRequests, errorExample, "Rate limited").Build()

	authGroup.POST("/logout", p.Auth.Logout, requireAuth)
	doc.Document(http.MethodPost, "/api/auth/logout").Summary("Log out").Tags("auth").
		Security(bearerScheme, sessionScheme).
		Response(http.StatusOK, messageResponse{}, "Logged out").Build()

	authGroup.GET("/user", p.Auth.User, requireAuth)
	doc.Document(http.MethodGet, "/api/auth/user").Summary("Current user").Tags("auth").
		Security(bearerScheme, sessionScheme).
		Response(http.StatusOK, auth.User{}, "User").
		Response(http.StatusUnauthorized, errorExample, "Not logged in").Build()

	phoneGroup := p.Server.Group("/api/phone", requireAuth)
	sendLimit := ratelimit.Middleware(ratelimit.Config{
		Store:        p.Limits,
		Rate:         p.Config.RateLimit.SendCodeRate,
		Period:       p.Config.RateLimit.SendCodePeriod,
		KeyGenerator: ratelimit.UserKeyGenerator("send_code", session.CurrentUserID),
	})

	phoneGroup.POST("/send-code", p.Phone.SendCode, sendLimit)
	doc.Document(http.MethodPost, "/api/phone/send-code").Summary("Send a verification code").Tags("phone").
		Security(bearerScheme, sessionScheme).
		Body(SendCodeRequest{}, "Number to verify").
		Response(http.StatusOK, messageResponse{}, "Code sent").
		Response(http.StatusBadRequest, errorExample, "Invalid or rejected number").
		Response(http.StatusTooManyRequests, errorExample, "Rate limited").
		Response(http.StatusInternalServerError, errorExample, "Not configured or delivery failed").Build()

	phoneGroup.POST("/verify-code", p.Phone.VerifyCode)
	doc.Document(http.MethodPost, "/api/phone/verify-code").Summary("Verify a code").Tags("phone").
		Security(bearerScheme, sessionScheme).
		Body(VerifyCodeRequest{}, "Number and code").
		Response(http.StatusOK, messageResponse{}, "Verified").
		Response(http.StatusBadRequest, errorExample, "Invalid or expired verification code").Build()

	phoneGroup.GET("/status", p.Phone.Status)
	doc.Document(http.MethodGet, "/api/phone/status").Summary("Verification status of a number").Tags("phone").
		Security(bearerScheme, sessionScheme).
		QueryParam("phoneNumber", "string", "Number a code was sent to").
		Response(http.StatusOK, PhoneStatusResponse{}, "Status").
		Response(http.StatusBadRequest, errorExample, "Missing or invalid number").Build()

	profiles := p.Server.Group("/api/profiles", requireAuth)

	profiles.POST("", p.Profile.Create)
	doc.Document(http.MethodPost, "/api/profiles").Summary("Create a profile").Tags("profiles").
		Security(bearerScheme, sessionScheme).
		Body(profile.CreateInput{}, "Profile").
		Response(http.StatusCreated, profile.Profile{}, "Created").
		Response(http.StatusBadRequest, errorExample, "Validation failed").Build()

	profiles.GET("", p.Profile.List)
	doc.Document(http.MethodGet, "/api/profiles").Summary("Search profiles").Tags("profiles").
		Security(bearerScheme, sessionScheme).
		QueryParam("gender", "string", "Male or Female").
		QueryParam("denomination", "string", "Exact denomination").
		QueryParam("location", "string", "Case-insensitive substring").
		QueryParam("minAge", "integer", "Minimum age").
		QueryParam("maxAge", "integer", "Maximum age").
		Response(http.StatusOK, []profile.Profile{}, "Profiles").Build()

	profiles.GET("/me", p.Profile.Me)
	doc.Document(http.MethodGet, "/api/profiles/me").Summary("Caller's profile").Tags("profiles").
		Security(bearerScheme, sessionScheme).
		Response(http.StatusOK, profile.Profile{}, "Profile").
		Response(http.StatusNotFound, errorExample, "No profile yet").Build()

	profiles.GET("/:id", p.Profile.Get)
	doc.Document(http.MethodGet, "/api/profiles/:id").Summary("Get a profile").Tags("profiles").
		Security(bearerScheme, sessionScheme).
		Response(http.StatusOK, profile.Profile{}, "Profile").
		Response(http.StatusNotFound, errorExample, "Not found").Build()

	p.Logger.Info("routes registered")
}

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var errorExample = errorResponse{}
