package app

import (
	"errors"
	"fmt"

	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/database"
	"github.com/nri-matrimony/matrimony/handlers"
	"github.com/nri-matrimony/matrimony/middleware/ratelimit"
	"github.com/nri-matrimony/matrimony/server"
	"github.com/nri-matrimony/matrimony/services/auth"
	"github.com/nri-matrimony/matrimony/services/jwt"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/mail"
	"github.com/nri-matrimony/matrimony/services/phone"
	"github.com/nri-matrimony/matrimony/services/profile"
	"github.com/nri-matrimony/matrimony/services/revocation"
	"github.com/nri-matrimony/matrimony/services/verification"
	"github.com/nri-matrimony/matrimony/session"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type AppBuilder struct {
	config    *config.Config
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		models: []any{
			&auth.User{},
			&verification.Record{},
			&profile.Profile{},
			&revocation.RevokedToken{},
		},
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.errors = append(b.errors, errors.New("config cannot be nil"))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.errors = append(b.errors, fmt.Errorf("failed to load config: %w", err))
		return b
	}
	b.config = cfg
	return b
}

// WithModels adds models to auto-migrate alongside the built-in ones.
func (b *AppBuilder) WithModels(models ...any) *AppBuilder {
	b.models = append(b.models, models...)
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if b.config == nil && len(b.errors) == 0 {
		b.WithAutoConfig()
	}
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %w", errors.Join(b.errors...))
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	a := &App{config: b.config}

	options := []fx.Option{
		fx.NopLogger,
		config.NewProvider(b.config),
		fx.Supply(database.WithModels(b.models...)),

		logging.Module,
		database.Module,
		mail.Module,
		phone.Module,
		verification.Module,
		profile.Module,
		auth.Module,
		jwt.Options,
		revocation.Module,
		session.Module,
		ratelimit.Module,
		server.Module,
		handlers.Module,
	}
	options = append(options, b.fxOptions...)
	options = append(options, fx.Invoke(func(logger *logging.Service, db *gorm.DB, srv *server.Server) {
		a.logger = logger
		a.db = db
		a.server = srv
	}))

	a.fx = fx.New(options...)
	if err := a.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}

	return a, nil
}
