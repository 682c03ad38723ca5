package phone

import (
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/mail"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideLineTypeLookup(cfg *config.Config) LineTypeLookup {
	return NewTwilioLookup(cfg.Phone.Lookup)
}

func ProvideDeliveryGateway(cfg *config.Config, lookup LineTypeLookup, sender mail.Sender, logger *logging.Service) DeliveryGateway {
	if tl, ok := lookup.(*TwilioLookup); ok && !tl.Configured() {
		lookup = nil
	}

	var gw DeliveryGateway
	switch cfg.Phone.DeliveryMode {
	case config.DeliveryModeSMS:
		gw = NewSMSGateway(lookup, cfg.Phone.SMS, cfg.Phone.CodeExpiry, logger)
	default:
		gw = NewEmailBridgeGateway(lookup, sender, cfg.Phone.SMSGatewayDomain, cfg.Phone.CodeExpiry, logger)
	}

	logger.Info("phone delivery gateway ready",
		zap.String("mode", cfg.Phone.DeliveryMode),
		zap.Bool("configured", gw.Configured()))

	return gw
}

var Module = fx.Options(
	fx.Provide(
		ProvideLineTypeLookup,
		ProvideDeliveryGateway,
	),
)
