package verification

import (
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/phone"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideStore(cfg *config.Config, db *gorm.DB) Store {
	return NewGormStore(db, cfg.Phone.CodeExpiry, nil)
}

func ProvideService(store Store, gateway phone.DeliveryGateway, logger *logging.Service) *Service {
	return NewService(store, gateway, logger)
}

var Module = fx.Options(
	fx.Provide(
		ProvideStore,
		ProvideService,
	),
)
