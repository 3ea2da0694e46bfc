package models

import "time"

// DefaultCountryCode is the dialing code a new draft starts with.
const DefaultCountryCode = "+91"

// Draft is the in-progress registration record.
type Draft struct {
	FirstName    string `json:"firstName" bson:"firstName" msgpack:"firstName"`
	LastName     string `json:"lastName" bson:"lastName" msgpack:"lastName"`
	Username     string `json:"username" bson:"username" msgpack:"username"`
	Email        string `json:"email" bson:"email" msgpack:"email"`
	Password     string `json:"password" bson:"password" msgpack:"password"`
	PhoneNumber  string `json:"phoneNumber" bson:"phoneNumber" msgpack:"phoneNumber"`
	CountryCode  string `json:"countryCode" bson:"countryCode" msgpack:"countryCode"`
	Country      string `json:"country" bson:"country" msgpack:"country"`
	City         string `json:"city" bson:"city" msgpack:"city"`
	PANNumber    string `json:"panNumber" bson:"panNumber" msgpack:"panNumber"`
	AadharNumber string `json:"aadharNumber" bson:"aadharNumber" msgpack:"aadharNumber"`
	Step         int    `json:"formStep" bson:"formStep" msgpack:"formStep"`
}

// NewDraft returns the empty initial draft.
func NewDraft() Draft {
	return Draft{CountryCode: DefaultCountryCode, Step: FirstStep}
}

func (d *Draft) slot(f Field) *string {
	switch f {
	case FirstName:
		return &d.FirstName
	case LastName:
		return &d.LastName
	case Username:
		return &d.Username
	case Email:
		return &d.Email
	case Password:
		return &d.Password
	case PhoneNumber:
		return &d.PhoneNumber
	case CountryCode:
		return &d.CountryCode
	case Country:
		return &d.Country
	case City:
		return &d.City
	case PANNumber:
		return &d.PANNumber
	case AadharNumber:
		return &d.AadharNumber
	}
	return nil
}

// Get returns the value held for f.
func (d Draft) Get(f Field) string {
	if p := d.slot(f); p != nil {
		return *p
	}
	return ""
}

// Set stores value for f. Unknown fields are ignored.
func (d *Draft) Set(f Field, value string) {
	if p := d.slot(f); p != nil {
		*p = value
	}
}

// ClampStep forces Step into the wizard range.
func (d *Draft) ClampStep() {
	switch {
	case d.Step < FirstStep:
		d.Step = FirstStep
	case d.Step > LastStep:
		d.Step = LastStep
	}
}

// SavedDraft is the persisted form of a draft.
type SavedDraft struct {
	Draft     `bson:",inline" msgpack:",inline"`
	LastSaved time.Time `json:"lastSaved" bson:"lastSaved" msgpack:"lastSaved"`
}

// Summary is the snapshot handed to the summary page after a submission.
type Summary struct {
	Draft          Draft     `json:"formData" msgpack:"formData"`
	FormattedPhone string    `json:"formattedPhone" msgpack:"formattedPhone"`
	SubmittedAt    time.Time `json:"submittedAt" msgpack:"submittedAt"`
}
