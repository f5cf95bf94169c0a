package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with a valid mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 050, 053, 054, 055, 056, 057, 058, or 059")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// validPrefixes contains all valid Saudi mobile operator prefixes
var validPrefixes = []string{
	"050", // STC
	"053", // STC
	"054", // Mobily
	"055", // STC
	"056", // Mobily
	"057", // Zain
	"058", // Zain
	"059", // Zain
}

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles contact phone validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Saudi mobile number.
// Accepts format: 0551234567 or 055 123 4567 or 055-123-4567
// Returns sanitized phone number (digits only) and error if invalid
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	prefix := sanitized[:3]
	for _, valid := range validPrefixes {
		if prefix == valid {
			return sanitized, nil
		}
	}

	return "", ErrInvalidPrefix
}

// Sanitize strips spaces, dashes and a leading +966 country code
func (v *PhoneValidator) Sanitize(phone string) string {
	sanitized := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)

	if strings.HasPrefix(sanitized, "+966") {
		sanitized = "0" + sanitized[4:]
	} else if strings.HasPrefix(sanitized, "966") && len(sanitized) == 12 {
		sanitized = "0" + sanitized[3:]
	}

	return sanitized
}
