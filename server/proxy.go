package server

import (
	"net"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/zap"
)

func trustCIDR(value string, logger *logging.Service) []echo.TrustOption {
	if _, ipNet, err := net.ParseCIDR(value); err == nil {
		return []echo.TrustOption{echo.TrustIPRange(ipNet)}
	}

	ip := net.ParseIP(value)
	if ip == nil {
		logger.Warn("ignoring invalid trusted proxy", zap.String("value", value))
		return nil
	}

	bits := 32
	if ip.To4() == nil {
		bits = 128
	}
	return []echo.TrustOption{echo.TrustIPRange(&net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})}
}
