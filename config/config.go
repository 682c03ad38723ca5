package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Session   SessionConfig   `envPrefix:"SESSION_"`
	CSRF      CSRFConfig      `envPrefix:"CSRF_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	Phone     PhoneConfig     `envPrefix:"PHONE_"`
	Profile   ProfileConfig   `envPrefix:"PROFILE_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"NRIChristianMatrimony"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Host           string   `env:"HOST" envDefault:"localhost"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"app.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"database"`
	Name     string        `env:"NAME" envDefault:"session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"168h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN"`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

// CSRFConfig guards cookie-authenticated writes. Bearer-token requests are exempt.
type CSRFConfig struct {
	Enabled        bool   `env:"ENABLED" envDefault:"true"`
	TokenLookup    string `env:"TOKEN_LOOKUP" envDefault:"header:X-CSRF-Token"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"_csrf"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieMaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"86400"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

type AuthConfig struct {
	MinLength     int  `env:"MIN_LENGTH" envDefault:"8"`
	RequireUpper  bool `env:"REQUIRE_UPPER" envDefault:"true"`
	RequireLower  bool `env:"REQUIRE_LOWER" envDefault:"true"`
	RequireNumber bool `env:"REQUIRE_NUMBER" envDefault:"true"`
	BcryptCost    int  `env:"BCRYPT_COST" envDefault:"10"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	Issuer       string        `env:"ISSUER" envDefault:"nri-matrimony"`
}

type MailConfig struct {
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"tls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"NRIChristianMatrimony"`

	OAuth MailOAuthConfig `envPrefix:"OAUTH_"`
}

// MailOAuthConfig enables XOAUTH2 SMTP authentication when ClientID is set.
type MailOAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RefreshToken string `env:"REFRESH_TOKEN"`
	TokenURL     string `env:"TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
}

func (c MailOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.RefreshToken != ""
}

type PhoneConfig struct {
	DeliveryMode     string        `env:"DELIVERY_MODE" envDefault:"email"`
	CodeExpiry       time.Duration `env:"CODE_EXPIRY" envDefault:"10m"`
	SMSGatewayDomain string        `env:"SMS_GATEWAY_DOMAIN"`

	Lookup PhoneLookupConfig `envPrefix:"LOOKUP_"`
	SMS    PhoneSMSConfig    `envPrefix:"SMS_"`
}

type PhoneLookupConfig struct {
	BaseURL    string        `env:"BASE_URL" envDefault:"https://lookups.twilio.com"`
	AccountSID string        `env:"ACCOUNT_SID"`
	AuthToken  string        `env:"AUTH_TOKEN"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type PhoneSMSConfig struct {
	BaseURL    string        `env:"BASE_URL" envDefault:"https://api.twilio.com"`
	AccountSID string        `env:"ACCOUNT_SID"`
	AuthToken  string        `env:"AUTH_TOKEN"`
	FromNumber string        `env:"FROM_NUMBER"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type ProfileConfig struct {
	RequirePhoneVerification bool   `env:"REQUIRE_PHONE_VERIFICATION" envDefault:"false"`
	NotifyAddress            string `env:"NOTIFY_ADDRESS"`
}

type RateLimitConfig struct {
	SendCodeRate   int           `env:"SEND_CODE_RATE" envDefault:"5"`
	SendCodePeriod time.Duration `env:"SEND_CODE_PERIOD" envDefault:"10m"`
	LoginRate      int           `env:"LOGIN_RATE" envDefault:"10"`
	LoginPeriod    time.Duration `env:"LOGIN_PERIOD" envDefault:"1m"`
}

const (
	DeliveryModeEmail = "email"
	DeliveryModeSMS   = "sms"
)

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Phone.DeliveryMode {
	case DeliveryModeEmail, DeliveryModeSMS:
	default:
		return fmt.Errorf("unsupported phone delivery mode: %s (supported: email, sms)", c.Phone.DeliveryMode)
	}

	if c.Phone.CodeExpiry <= 0 {
		return errors.New("phone code expiry must be positive")
	}

	if c.JWT.SecretKey != "" {
		if err := validateJWTConfig(&c.JWT); err != nil {
			return err
		}
	}

	return nil
}

func validateJWTConfig(cfg *JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return errors.New("JWT secret key must be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, weak := range []string{"password", "secret", "test", "example", "default", "change"} {
		if strings.Contains(lower, weak) {
			return fmt.Errorf("JWT secret key contains weak patterns")
		}
	}

	return nil
}
