package profile

import (
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/mail"
	"github.com/nri-matrimony/matrimony/services/verification"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideProfileService(cfg *config.Config, db *gorm.DB, verifications *verification.Service, sender mail.Sender, logger *logging.Service) *Service {
	notifier := NewNotifier(sender, cfg.Profile.NotifyAddress, cfg.App.Name)
	return NewService(db, verifications, notifier, cfg.Profile.RequirePhoneVerification, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideProfileService),
)
