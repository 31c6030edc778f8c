package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field names
const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldCompany = "company"
	FieldTariff  = "tariff"
	FieldEmail   = "email"
)

// SkipCommand bypasses optional fields
const SkipCommand = "/skip"

// Reason says why an input was rejected
type Reason string

const (
	ReasonEmpty         Reason = "empty"
	ReasonCharset       Reason = "charset"
	ReasonLength        Reason = "length"
	ReasonFormat        Reason = "format"
	ReasonUnknownChoice Reason = "unknown_choice"
)

// ValidationError is a rejected user input. The user is asked again.
type ValidationError struct {
	Field  string
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validator normalizes raw input or rejects it with a *ValidationError
type Validator func(raw string) (string, error)

const maxCompanyLength = 200

var (
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]*\.[^@\s]*$`)
	titleCaser      = cases.Title(language.Und)
)

// ValidateName accepts Latin or Cyrillic letters separated by spaces
func ValidateName(raw string) (string, error) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", &ValidationError{Field: FieldName, Reason: ReasonEmpty}
	}

	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) || !(unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Cyrillic, r)) {
				return "", &ValidationError{Field: FieldName, Reason: ReasonCharset}
			}
		}
	}

	return titleCaser.String(strings.Join(words, " ")), nil
}

// PhoneValidator normalizes phone numbers. A 9 digit local number gets
// +countryCode, a number starting with countryCode gets a plus.
func PhoneValidator(countryCode string) Validator {
	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")

	return func(raw string) (string, error) {
		cleaned := phoneSeparators.Replace(strings.TrimSpace(raw))
		if cleaned == "" {
			return "", &ValidationError{Field: FieldPhone, Reason: ReasonEmpty}
		}
		if !phonePattern.MatchString(cleaned) {
			return "", &ValidationError{Field: FieldPhone, Reason: ReasonFormat}
		}

		hasPlus := strings.HasPrefix(cleaned, "+")
		digits := strings.TrimPrefix(cleaned, "+")

		switch {
		case hasPlus:
			return "+" + digits, nil
		case countryCode == "":
			return digits, nil
		case len(digits) == 9:
			return "+" + countryCode + digits, nil
		case strings.HasPrefix(digits, countryCode):
			return "+" + digits, nil
		default:
			return digits, nil
		}
	}
}

// ValidateEmail accepts /skip as an empty value
func ValidateEmail(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if strings.EqualFold(value, SkipCommand) {
		return "", nil
	}
	if value == "" {
		return "", &ValidationError{Field: FieldEmail, Reason: ReasonEmpty}
	}
	if !emailPattern.MatchString(value) {
		return "", &ValidationError{Field: FieldEmail, Reason: ReasonFormat}
	}
	return value, nil
}

func ValidateCompany(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", &ValidationError{Field: FieldCompany, Reason: ReasonEmpty}
	}
	if utf8.RuneCountInString(value) > maxCompanyLength {
		return "", &ValidationError{Field: FieldCompany, Reason: ReasonLength}
	}
	return value, nil
}
