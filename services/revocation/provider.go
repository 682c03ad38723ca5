package revocation

import (
	"context"
	"time"

	"github.com/nri-matrimony/matrimony/services/jwt"
	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const cleanupInterval = time.Hour

func ProvideRevocationService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger)
}

func registerCleanup(lc fx.Lifecycle, svc *Service) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go svc.RunCleanup(ctx, cleanupInterval)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		ProvideRevocationService,
		func(s *Service) jwt.RevocationChecker { return s },
	),
	fx.Invoke(registerCleanup),
)
