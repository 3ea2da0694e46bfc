package models

// Field identifies one user-editable slot of the registration draft.
type Field int

const (
	FirstName Field = iota
	LastName
	Username
	Email
	Password
	PhoneNumber
	CountryCode
	Country
	City
	PANNumber
	AadharNumber

	// NumFields is the number of editable fields. Keep it last.
	NumFields
)

// Number of wizard steps.
const (
	FirstStep = 1
	LastStep  = 3
)

type fieldMeta struct {
	key   string
	label string
}

var fieldTable = [NumFields]fieldMeta{
	FirstName:    {"firstName", "First Name"},
	LastName:     {"lastName", "Last Name"},
	Username:     {"username", "Username"},
	Email:        {"email", "Email"},
	Password:     {"password", "Password"},
	PhoneNumber:  {"phoneNumber", "Phone Number"},
	CountryCode:  {"countryCode", "Country Code"},
	Country:      {"country", "Country"},
	City:         {"city", "City"},
	PANNumber:    {"panNumber", "PAN Number"},
	AadharNumber: {"aadharNumber", "Aadhar Number"},
}

var fieldByKey = func() map[string]Field {
	m := make(map[string]Field, NumFields)
	for f := Field(0); f < NumFields; f++ {
		m[fieldTable[f].key] = f
	}
	return m
}()

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	return f >= 0 && f < NumFields
}

// Key returns the json key of the field.
func (f Field) Key() string {
	if !f.Valid() {
		return ""
	}
	return fieldTable[f].key
}

// Label returns the human readable name used in messages.
func (f Field) Label() string {
	if !f.Valid() {
		return ""
	}
	return fieldTable[f].label
}

func (f Field) String() string {
	return f.Key()
}

// ParseField maps a json key back to its Field.
func ParseField(key string) (Field, bool) {
	f, ok := fieldByKey[key]
	return f, ok
}

// AllFields lists every field in declaration order.
func AllFields() []Field {
	out := make([]Field, 0, NumFields)
	for f := Field(0); f < NumFields; f++ {
		out = append(out, f)
	}
	return out
}

// RequiredFields is the completion denominator; it leaves out CountryCode.
var RequiredFields = []Field{
	FirstName, LastName, Username, Email, Password,
	PhoneNumber, Country, City, PANNumber, AadharNumber,
}

var stepFields = map[int][]Field{
	1: {FirstName, LastName, Username},
	2: {Email, Password, PhoneNumber, CountryCode},
	3: {Country, City, PANNumber, AadharNumber},
}

// StepFields returns the fields gated by the given step, or nil.
func StepFields(step int) []Field {
	return stepFields[step]
}

// StepTitle returns the heading shown for a step.
func StepTitle(step int) string {
	switch step {
	case 1:
		return "Personal Information"
	case 2:
		return "Account Information"
	case 3:
		return "Location & Identity"
	}
	return ""
}
