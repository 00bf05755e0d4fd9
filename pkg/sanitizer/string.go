package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeReason is applied to rejection and cancellation reasons. A reason
// made only of whitespace normalizes to "".
func NormalizeReason(reason string) string {
	return TrimAndNormalize(reason)
}

func NormalizeRoomNumber(number string) string {
	var result strings.Builder
	for _, r := range strings.TrimSpace(number) {
		if unicode.IsSpace(r) {
			continue
		}
		result.WriteRune(unicode.ToUpper(r))
	}
	return result.String()
}

func NormalizeCity(city string) string {
	return strings.ToLower(TrimAndNormalize(city))
}
