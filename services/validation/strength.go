package validation

import (
	"strings"
	"unicode/utf8"

	"regwizard/models"
)

// Strength is the password meter shown next to the password field.
type Strength struct {
	Score     int    `json:"score" msgpack:"score"`
	Label     string `json:"label" msgpack:"label"`
	Color     string `json:"color" msgpack:"color"`
	DarkColor string `json:"darkColor" msgpack:"darkColor"`
}

// PasswordStrength scores a password from 0 to 100. It never affects validity.
func PasswordStrength(password string) int {
	if password == "" {
		return 0
	}

	score := min(25, utf8.RuneCountInString(password)*5/2)

	var lower, upper, digit, other bool
	distinct := make(map[rune]struct{})
	for _, r := range password {
		distinct[r] = struct{}{}
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			score += 15
		}
	}
	score += min(15, len(distinct))

	return min(100, score)
}

// StrengthLabel maps a score to its label and display colors.
func StrengthLabel(score int) Strength {
	s := Strength{Score: score}
	switch {
	case score < 30:
		s.Label, s.Color, s.DarkColor = "Very Weak", "bg-red-600", "dark:bg-red-500"
	case score < 50:
		s.Label, s.Color, s.DarkColor = "Weak", "bg-orange-500", "dark:bg-orange-400"
	case score < 70:
		s.Label, s.Color, s.DarkColor = "Moderate", "bg-yellow-500", "dark:bg-yellow-400"
	case score < 90:
		s.Label, s.Color, s.DarkColor = "Strong", "bg-green-500", "dark:bg-green-400"
	default:
		s.Label, s.Color, s.DarkColor = "Very Strong", "bg-emerald-600", "dark:bg-emerald-500"
	}
	return s
}

// MeasurePassword combines PasswordStrength and StrengthLabel.
func MeasurePassword(password string) Strength {
	return StrengthLabel(PasswordStrength(password))
}

// Completion is the share of required fields holding a non-blank value, floored.
func Completion(d models.Draft) int {
	filled := 0
	for _, f := range models.RequiredFields {
		if strings.TrimSpace(d.Get(f)) != "" {
			filled++
		}
	}
	return filled * 100 / len(models.RequiredFields)
}
