package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
	}
}

type sendCodeBody struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10"`
}

type verifyCodeBody struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10"`
	Code        string `json:"code" validate:"required,len=6"`
}

func TestNew(t *testing.T) {
	cfg := testConfig()

	t.Run("with logger", func(t *testing.T) {
		loggerService := &logging.Service{}
		server := New(cfg, loggerService)

		if server == nil {
			t.Fatal("expected server to be created")
		}
		if server.cfg != cfg {
			t.Error("expected config to be set")
		}
		if server.logger != loggerService {
			t.Error("expected logger to be set")
		}
		if server.echo.Validator == nil {
			t.Error("expected validator to be installed")
		}
	})

	t.Run("without logger", func(t *testing.T) {
		server := New(cfg, nil)

		if server == nil {
			t.Fatal("expected server to be created")
		}
		if server.logger != nil {
			t.Error("expected logger to be nil")
		}
	})

	t.Run("addr", func(t *testing.T) {
		if got := New(cfg, nil).Addr(); got != "localhost:8080" {
			t.Errorf("expected localhost:8080, got %s", got)
		}
	})
}

func TestServer_Healthz(t *testing.T) {
	server := New(testConfig(), nil)

	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestServer_Routes(t *testing.T) {
	server := New(testConfig(), nil)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, c.Request().Method)
	}

	server.Get("/get", handler)
	server.Post("/post", handler)
	api := server.Group("/api")
	api.GET("/nested", handler)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/get"},
		{http.MethodPost, "/post"},
		{http.MethodGet, "/api/nested"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		server.Echo().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusOK, rec.Code)
		}
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	t.Run("valid", func(t *testing.T) {
		if err := v.Validate(&verifyCodeBody{PhoneNumber: "+14155551234", Code: "123456"}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("reports json field name", func(t *testing.T) {
		err := v.Validate(&sendCodeBody{PhoneNumber: "123"})

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			t.Fatalf("expected *echo.HTTPError, got %T", err)
		}
		if he.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", he.Code)
		}
		fe, ok := he.Message.(FieldError)
		if !ok {
			t.Fatalf("expected FieldError, got %T", he.Message)
		}
		if fe.Field != "phoneNumber" {
			t.Errorf("expected field phoneNumber, got %s", fe.Field)
		}
		if fe.Message != "phoneNumber must be at least 10 characters" {
			t.Errorf("unexpected message %q", fe.Message)
		}
	})

	t.Run("code length", func(t *testing.T) {
		err := v.Validate(&verifyCodeBody{PhoneNumber: "+14155551234", Code: "12345"})

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			t.Fatalf("expected *echo.HTTPError, got %T", err)
		}
		if fe := he.Message.(FieldError); fe.Field != "code" {
			t.Errorf("expected field code, got %s", fe.Field)
		}
	})
}

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewWithLogger(zap.New(core))
	handle := ErrorHandler(logger)
	e := echo.New()

	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "field error",
			err:      echo.NewHTTPError(http.StatusBadRequest, FieldError{Message: "code is required", Field: "code"}),
			wantCode: http.StatusBadRequest,
			wantBody: `{"message":"code is required","field":"code"}`,
		},
		{
			name:     "http error with message",
			err:      echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized"),
			wantCode: http.StatusUnauthorized,
			wantBody: `{"message":"Unauthorized"}`,
		},
		{
			name:     "not found",
			err:      echo.ErrNotFound,
			wantCode: http.StatusNotFound,
			wantBody: `{"message":"Not Found"}`,
		},
		{
			name:     "unknown error is hidden",
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"message":"Internal server error"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/phone/send-code", nil), rec)

			handle(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Errorf("expected status %d, got %d", tc.wantCode, rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tc.wantBody {
				t.Errorf("expected body %s, got %s", tc.wantBody, got)
			}
		})
	}

	if logs.FilterMessage("request failed").Len() != 1 {
		t.Errorf("expected exactly one logged internal failure, got %d", logs.FilterMessage("request failed").Len())
	}
}

func TestTrustedProxies(t *testing.T) {
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.1", "not-an-ip"}
	server := New(cfg, nil)

	server.Get("/ip", func(c echo.Context) error {
		return c.String(http.StatusOK, c.RealIP())
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.1.2.3:1234"
	req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.9")
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	if rec.Body.String() != "203.0.113.9" {
		t.Errorf("expected forwarded client ip, got %s", rec.Body.String())
	}
}
