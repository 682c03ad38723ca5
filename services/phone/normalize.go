package phone

import (
	"errors"
	"strings"
)

var ErrNotNANP = errors.New("phone number is not a 10-digit NANP number")

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizeNANP reduces a US/Canada number to its 10-digit subscriber form.
func NormalizeNANP(number string) (string, error) {
	digits := separators.Replace(strings.TrimSpace(number))

	switch {
	case strings.HasPrefix(digits, "+1"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		digits = digits[1:]
	}

	if len(digits) != 10 {
		return "", ErrNotNANP
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", ErrNotNANP
		}
	}

	return digits, nil
}
