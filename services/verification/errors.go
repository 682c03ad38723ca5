package verification

import "errors"

// ErrInvalidOrExpiredCode covers a wrong code, an expired code and a code already used.
var ErrInvalidOrExpiredCode = errors.New("invalid or expired code")

// ConfigurationError means the delivery path is missing settings and no code can be sent.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return "phone verification is not configured"
	}
	return "phone verification is not configured: " + e.Reason
}
