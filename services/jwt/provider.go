package jwt

import (
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/fx"
)

func NewJWTService(cfg *config.Config, logger *logging.Service) *Service {
	if cfg.JWT.SecretKey == "" {
		logger.Warn("JWT_SECRET_KEY not set: bearer tokens disabled, session auth only")
	}
	return NewService(&cfg.JWT, logger)
}

type OptionalRevocationChecker struct {
	fx.In
	Checker RevocationChecker `optional:"true"`
}

func WireRevocationChecker(jwtSvc *Service, opt OptionalRevocationChecker) {
	if jwtSvc != nil && opt.Checker != nil {
		jwtSvc.SetRevocationChecker(opt.Checker)
	}
}

var Options = fx.Options(
	fx.Provide(NewJWTService),
	fx.Invoke(WireRevocationChecker),
)
