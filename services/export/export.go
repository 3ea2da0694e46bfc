// Package export renders drafts as downloadable text and CSV artifacts.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"regwizard/models"
)

// Artifact names and content types.
const (
	TextFilename    = "user-form-data.txt"
	TextContentType = "text/plain; charset=utf-8"
	CSVFilename     = "user-form-data.csv"
	CSVContentType  = "text/csv; charset=utf-8"
)

// TimeLayout is used for the "Generated on" line.
const TimeLayout = "January 2, 2006, 03:04 PM"

const rule = "------------------------"

var phoneGroups = regexp.MustCompile(`^(\d{3})(\d{3})(\d{4})$`)

// FormatPhone groups a 10 digit number as "ddd ddd dddd". Other input is returned as is.
func FormatPhone(phone string) string {
	return phoneGroups.ReplaceAllString(phone, "$1 $2 $3")
}

// Text renders the plain-text summary block.
func Text(d models.Draft, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("User Information\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Name: %s %s\n", d.FirstName, d.LastName)
	fmt.Fprintf(&b, "Username: %s\n", d.Username)
	fmt.Fprintf(&b, "Email: %s\n", d.Email)
	fmt.Fprintf(&b, "Phone: %s %s\n", d.CountryCode, d.PhoneNumber)
	fmt.Fprintf(&b, "Location: %s, %s\n", d.City, d.Country)
	fmt.Fprintf(&b, "PAN Number: %s\n", d.PANNumber)
	fmt.Fprintf(&b, "Aadhar Number: %s\n", d.AadharNumber)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n", generatedAt.Format(TimeLayout))
	return b.String()
}

// CSV renders a header row of draft keys and one row of quoted values.
// The step counter is left out.
func CSV(d models.Draft) string {
	fields := models.AllFields()
	headers := make([]string, len(fields))
	values := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Key()
		values[i] = quote(d.Get(f))
	}
	return strings.Join(headers, ",") + "\n" + strings.Join(values, ",")
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
