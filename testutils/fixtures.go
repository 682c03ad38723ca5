package testutils

import (
	"time"

	"github.com/nri-matrimony/matrimony/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "NRIChristianMatrimony",
			URL:  "http://localhost:8080",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		Auth: config.AuthConfig{
			MinLength:     8,
			RequireUpper:  true,
			RequireLower:  true,
			RequireNumber: true,
			BcryptCost:    bcrypt.MinCost,
		},
		JWT: config.JWTConfig{
			SecretKey:    "k7Qm2vX9pL4rT8wZ1nB6cY3hJ5dF0gS2",
			AccessExpiry: 15 * time.Minute,
			Issuer:       "nri-matrimony-test",
		},
		Session: config.SessionConfig{
			Enabled:  true,
			Store:    "memory",
			Name:     "session",
			MaxAge:   time.Hour,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Phone: config.PhoneConfig{
			DeliveryMode:     config.DeliveryModeEmail,
			CodeExpiry:       10 * time.Minute,
			SMSGatewayDomain: "txt.example.net",
		},
		RateLimit: config.RateLimitConfig{
			SendCodeRate:   5,
			SendCodePeriod: 10 * time.Minute,
		},
	}
}

var TestPasswords = struct {
	Valid    string
	TooShort string
	NoUpper  string
	NoLower  string
	NoNumber string
}{
	Valid:    "Password123",
	TooShort: "Pass1",
	NoUpper:  "password123",
	NoLower:  "PASSWORD123",
	NoNumber: "Password",
}

var TestPhones = struct {
	Mobile   string
	VOIP     string
	Landline string
}{
	Mobile:   "+14155551234",
	VOIP:     "+14155550100",
	Landline: "+14155557777",
}
