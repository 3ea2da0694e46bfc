package location

import "slices"

// DialCode is one selectable phone prefix.
type DialCode struct {
	Value string `json:"value" msgpack:"value"`
	Label string `json:"label" msgpack:"label"`
}

var dialCodes = []DialCode{
	{Value: "+1", Label: "+1 (US/Canada)"},
	{Value: "+44", Label: "+44 (UK)"},
	{Value: "+91", Label: "+91 (India)"},
	{Value: "+61", Label: "+61 (Australia)"},
	{Value: "+33", Label: "+33 (France)"},
	{Value: "+49", Label: "+49 (Germany)"},
	{Value: "+81", Label: "+81 (Japan)"},
}

type country struct {
	name   string
	iso    string
	cities []string
}

var countries = []country{
	{"India", "IN", []string{"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Chennai", "Kolkata", "Pune", "Ahmedabad", "Jaipur"}},
	{"United States", "US", []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "San Francisco", "Seattle", "Boston"}},
	{"United Kingdom", "GB", []string{"London", "Manchester", "Birmingham", "Edinburgh", "Glasgow", "Liverpool", "Bristol", "Leeds"}},
	{"Canada", "CA", []string{"Toronto", "Vancouver", "Montreal", "Calgary", "Ottawa", "Edmonton", "Winnipeg", "Quebec City"}},
	{"Australia", "AU", []string{"Sydney", "Melbourne", "Brisbane", "Perth", "Adelaide", "Canberra", "Hobart", "Darwin"}},
}

// Countries returns the selectable country names in display order.
func Countries() []string {
	out := make([]string, len(countries))
	for i, c := range countries {
		out[i] = c.name
	}
	return out
}

func lookup(name string) (country, bool) {
	for _, c := range countries {
		if c.name == name {
			return c, true
		}
	}
	return country{}, false
}

// HasCountry reports whether name is a catalog country.
func HasCountry(name string) bool {
	_, ok := lookup(name)
	return ok
}

// Cities returns a copy of the city list for a country, or nil when unknown.
func Cities(name string) []string {
	c, ok := lookup(name)
	if !ok {
		return nil
	}
	return slices.Clone(c.cities)
}

// HasCity reports whether city belongs to the given country.
func HasCity(countryName, city string) bool {
	c, ok := lookup(countryName)
	return ok && slices.Contains(c.cities, city)
}

// CountryByISO maps a two letter country code to a catalog country.
func CountryByISO(code string) (string, bool) {
	for _, c := range countries {
		if c.iso == code {
			return c.name, true
		}
	}
	return "", false
}

// DialCodes returns the selectable phone prefixes.
func DialCodes() []DialCode {
	return slices.Clone(dialCodes)
}

// HasDialCode reports whether code is a selectable prefix.
func HasDialCode(code string) bool {
	return slices.ContainsFunc(dialCodes, func(d DialCode) bool { return d.Value == code })
}
