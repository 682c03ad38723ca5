package auth

import (
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideAuthService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return NewService(&cfg.Auth, db, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideAuthService),
)
