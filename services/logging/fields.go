package logging

import (
	"strings"

	"go.uber.org/zap"
)

// Phone logs a phone number with everything but the last four digits masked.
func Phone(number string) zap.Field {
	return zap.String("phone", MaskPhone(number))
}

func MaskPhone(number string) string {
	var digits []rune
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}

func UserID(id uint) zap.Field {
	return zap.Uint("user_id", id)
}
