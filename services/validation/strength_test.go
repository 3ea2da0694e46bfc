package validation

import (
	"strings"
	"testing"

	"regwizard/models"

	"github.com/stretchr/testify/assert"
)

func TestPasswordStrengthEmpty(t *testing.T) {
	assert.Zero(t, PasswordStrength(""))
}

func TestPasswordStrengthKnownValues(t *testing.T) {
	// 8 chars: 20 length, four classes 60, 8 distinct.
	assert.Equal(t, 88, PasswordStrength("Abcdef1!"))
	// 3 chars: 7 length, lower 15, 3 distinct.
	assert.Equal(t, 25, PasswordStrength("abc"))
	assert.Equal(t, 100, PasswordStrength("Abcdefghijklmnop1!"))
}

func TestPasswordStrengthMonotonicInLength(t *testing.T) {
	prev := 0
	for n := 1; n <= 20; n++ {
		s := PasswordStrength(strings.Repeat("a", n))
		assert.GreaterOrEqual(t, s, prev, "length %d", n)
		prev = s
	}
}

func TestPasswordStrengthIncreasesPerClass(t *testing.T) {
	pw := "abc"
	prev := PasswordStrength(pw)
	for _, add := range []string{"D", "5", "!"} {
		pw += add
		s := PasswordStrength(pw)
		assert.Greater(t, s, prev, "after adding %q", add)
		prev = s
	}
	assert.LessOrEqual(t, prev, 100)
}

func TestPasswordStrengthIsClamped(t *testing.T) {
	s := PasswordStrength("Aa1!Bb2@Cc3#Dd4$Ee5%Ff6^")
	assert.Equal(t, 100, s)
}

func TestStrengthLabelBands(t *testing.T) {
	cases := []struct {
		score int
		label string
		color string
	}{
		{0, "Very Weak", "bg-red-600"},
		{29, "Very Weak", "bg-red-600"},
		{30, "Weak", "bg-orange-500"},
		{49, "Weak", "bg-orange-500"},
		{50, "Moderate", "bg-yellow-500"},
		{70, "Strong", "bg-green-500"},
		{89, "Strong", "bg-green-500"},
		{90, "Very Strong", "bg-emerald-600"},
		{100, "Very Strong", "bg-emerald-600"},
	}
	for _, tc := range cases {
		got := StrengthLabel(tc.score)
		assert.Equal(t, tc.label, got.Label, "score %d", tc.score)
		assert.Equal(t, tc.color, got.Color, "score %d", tc.score)
		assert.Equal(t, tc.score, got.Score)
	}
	assert.Equal(t, "dark:bg-emerald-500", StrengthLabel(95).DarkColor)
}

func TestCompletion(t *testing.T) {
	d := models.NewDraft()
	assert.Zero(t, Completion(d), "country code alone does not count")

	d.FirstName = "Jane"
	d.LastName = "  "
	assert.Equal(t, 10, Completion(d))

	d.LastName = "Doe"
	d.Username = "jane_doe1"
	assert.Equal(t, 30, Completion(d))

	full := models.Draft{
		FirstName: "Jane", LastName: "Doe", Username: "jane_doe1",
		Email: "jane@example.com", Password: "Abcdef1!", PhoneNumber: "9876543210",
		CountryCode: "", Country: "India", City: "Mumbai",
		PANNumber: "ABCDE1234F", AadharNumber: "123456789012", Step: 3,
	}
	assert.Equal(t, 100, Completion(full))
}
