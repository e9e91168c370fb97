// Package isbn normalizes International Standard Book Numbers to the 13-digit
// form stored on publications.
package isbn

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrInvalid is returned for values that are not a valid ISBN-10 or ISBN-13.
var ErrInvalid = errors.New("invalid isbn")

// Strip removes an "ISBN" prefix and every character that is not a digit or
// the ISBN-10 check character X.
func Strip(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	value = strings.TrimPrefix(value, "ISBN")
	value = strings.TrimPrefix(value, ":")

	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical ISBN-13 for value. ISBN-10 values are
// converted using the 978 prefix.
func Normalize(value string) (string, error) {
	stripped := Strip(value)
	switch {
	case len(stripped) == 13 && Valid13(stripped):
		return stripped, nil
	case len(stripped) == 10 && Valid10(stripped):
		body := "978" + stripped[:9]
		return body + string(checkDigit13(body)), nil
	default:
		return "", errors.Wrapf(ErrInvalid, "%q", value)
	}
}

// Valid10 checks the mod 11 checksum of a stripped ISBN-10.
func Valid10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i, r := range s {
		var d int
		switch {
		case r == 'X' && i == 9:
			d = 10
		case r >= '0' && r <= '9':
			d = int(r - '0')
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// Valid13 checks the alternating 1/3 weighted checksum of a stripped ISBN-13.
func Valid13(s string) bool {
	if len(s) != 13 {
		return false
	}
	return checkDigit13(s[:12]) == rune(s[12])
}

func checkDigit13(body string) rune {
	sum := 0
	for i, r := range body {
		if r < '0' || r > '9' {
			return 0
		}
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return rune('0' + (10-sum%10)%10)
}
