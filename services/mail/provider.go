package mail

import (
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/fx"
)

func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if cfg.Mail.FromAddress == "" {
		logger.Warn("mail transport disabled: MAIL_FROM_ADDRESS is not set")
		return NewDisabled(logger), nil
	}
	return NewService(&cfg.Mail, logger)
}

var Module = fx.Options(
	fx.Provide(
		ProvideMailService,
		func(s *Service) Sender { return s },
	),
)
