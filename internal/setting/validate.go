// AngelaMos | 2026
// validate.go

package setting

import (
	"net/url"
	"regexp"
	"unicode/utf8"

	"github.com/clubfines/backend/internal/core"
)

// validators is the static registry of per-key value checks. Keys
// absent from the registry pass through unvalidated.
var validators = map[string]func(value string) error{
	"currency": validateCurrency,
	"clubName": validateClubName,
	"logoUrl":  validateLogoURL,
}

// ValidateValue checks a single setting value against the registry.
func ValidateValue(key, value string) error {
	validate, ok := validators[key]
	if !ok {
		return nil
	}
	return validate(value)
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

func validateCurrency(value string) error {
	if !currencyPattern.MatchString(value) {
		return invalidValue("currency must be a 3-letter uppercase ISO code")
	}
	return nil
}

func validateClubName(value string) error {
	n := utf8.RuneCountInString(value)
	if n < 1 || n > 100 {
		return invalidValue("clubName must be between 1 and 100 characters")
	}
	return nil
}

func validateLogoURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") ||
		parsed.Host == "" {
		return invalidValue("logoUrl must be an http(s) URL")
	}
	return nil
}

func invalidValue(message string) error {
	return core.ValidationError("INVALID_SETTING_VALUE", message)
}
