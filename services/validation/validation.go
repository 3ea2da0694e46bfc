// Package validation holds the field rules of the registration wizard.
package validation

import (
	"regexp"
	"strings"

	"regwizard/models"
	"regwizard/services/location"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\d{10}$`)
	panRegex      = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadharRegex   = regexp.MustCompile(`^\d{12}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{5,15}$`)

	// RE2 has no lookahead, so complexity is one charset check plus a check per class.
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSpecial = regexp.MustCompile(`[@$!%*?&]`)
)

// Format messages keyed by field label.
const (
	MsgUsername    = "Username must be 5-15 characters and can contain letters, numbers and underscores"
	MsgEmail       = "Please enter a valid email address"
	MsgPassword    = "Password must be at least 8 characters and include uppercase, lowercase, number and special character"
	MsgPhone       = "Please enter a valid 10-digit phone number"
	MsgCountryCode = "Please select a valid country code"
	MsgCountry     = "Please select a valid country"
	MsgCity        = "Please select a valid city for the selected country"
	MsgPAN         = "Please enter a valid PAN number (e.g., ABCDE1234F)"
	MsgAadhar      = "Please enter a valid 12-digit Aadhar number"
)

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func ValidatePassword(password string) bool {
	return passwordCharset.MatchString(password) &&
		passwordLower.MatchString(password) &&
		passwordUpper.MatchString(password) &&
		passwordDigit.MatchString(password) &&
		passwordSpecial.MatchString(password)
}

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidatePAN is case-sensitive; normalize with NormalizePAN first.
func ValidatePAN(pan string) bool {
	return panRegex.MatchString(pan)
}

func ValidateAadhar(aadhar string) bool {
	return aadharRegex.MatchString(aadhar)
}

func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

func ValidateCountryCode(code string) bool {
	return location.HasDialCode(code)
}

// ErrorMessage returns the message for a labelled value, or "" when it passes.
// Labels without a format rule only get the required check.
func ErrorMessage(label, value string) string {
	if !ValidateRequired(value) {
		return label + " is required"
	}

	switch label {
	case models.Username.Label():
		if !ValidateUsername(value) {
			return MsgUsername
		}
	case models.Email.Label():
		if !ValidateEmail(value) {
			return MsgEmail
		}
	case models.Password.Label():
		if !ValidatePassword(value) {
			return MsgPassword
		}
	case models.PhoneNumber.Label():
		if !ValidatePhone(value) {
			return MsgPhone
		}
	case models.CountryCode.Label():
		if !ValidateCountryCode(value) {
			return MsgCountryCode
		}
	case models.Country.Label():
		if !location.HasCountry(value) {
			return MsgCountry
		}
	case models.PANNumber.Label():
		if !ValidatePAN(value) {
			return MsgPAN
		}
	case models.AadharNumber.Label():
		if !ValidateAadhar(value) {
			return MsgAadhar
		}
	}
	return ""
}

// Validate checks a single field value in isolation.
func Validate(f models.Field, value string) string {
	return ErrorMessage(f.Label(), value)
}

// ValidateDraftField checks f within the context of the whole draft.
// City is only valid when it belongs to the draft's country.
func ValidateDraftField(d models.Draft, f models.Field) string {
	value := d.Get(f)
	if msg := Validate(f, value); msg != "" {
		return msg
	}
	if f == models.City && !location.HasCity(d.Country, value) {
		return MsgCity
	}
	return ""
}

// Normalize applies the input filters of a field: PAN is uppercased, phone and
// Aadhar keep digits only.
func Normalize(f models.Field, value string) string {
	switch f {
	case models.PANNumber:
		return NormalizePAN(value)
	case models.PhoneNumber, models.AadharNumber:
		return digitsOnly(value)
	}
	return value
}

func NormalizePAN(pan string) string {
	return strings.ToUpper(pan)
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
