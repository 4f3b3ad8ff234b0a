package normalize

import (
	"regexp"
	"strings"
)

var (
	countryPrefix = regexp.MustCompile(`^\+?250`)
	rwandaMobile  = regexp.MustCompile(`^7[0-9]{8}$`)
)

func localPhone(phone string) string {
	cleaned := strings.Join(strings.Fields(phone), "")
	cleaned = countryPrefix.ReplaceAllString(cleaned, "")
	// Local trunk prefix: 078... is the same line as +25078...
	if len(cleaned) == 10 && cleaned[0] == '0' {
		cleaned = cleaned[1:]
	}
	return cleaned
}

// ValidateRwandanPhone reports whether phone is a Rwandan mobile number,
// with or without the +250 country code and spacing.
func ValidateRwandanPhone(phone string) bool {
	return rwandaMobile.MatchString(localPhone(phone))
}

// FormatPhoneForBackend converts a phone number to the +250XXXXXXXXX form
// the backend expects.
func FormatPhoneForBackend(phone string) string {
	return "+250" + localPhone(phone)
}
