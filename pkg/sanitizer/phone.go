package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	supportedRegions = []string{
		"IN",
		"US",
	}
)

// NormalizePhone formats a contact number as E.164. Numbers without a country
// code are read as Indian numbers first. Unparseable input yields "".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}
