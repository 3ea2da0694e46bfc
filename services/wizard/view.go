package wizard

import (
	"time"

	"regwizard/models"
	"regwizard/services/location"
	"regwizard/services/validation"
)

// View is an immutable snapshot of a controller, ready to render.
type View struct {
	SessionID   string              `json:"sessionId" msgpack:"sessionId"`
	Draft       models.Draft        `json:"formData" msgpack:"formData"`
	Step        int                 `json:"step" msgpack:"step"`
	StepTitle   string              `json:"stepTitle" msgpack:"stepTitle"`
	TotalSteps  int                 `json:"totalSteps" msgpack:"totalSteps"`
	Errors      models.FieldErrors  `json:"errors" msgpack:"errors"`
	Touched     models.FieldFlags   `json:"touched" msgpack:"touched"`
	Completion  int                 `json:"completion" msgpack:"completion"`
	Strength    validation.Strength `json:"passwordStrength" msgpack:"passwordStrength"`
	IsFormValid bool                `json:"isFormValid" msgpack:"isFormValid"`
	Submitting  bool                `json:"submitting" msgpack:"submitting"`
	LastSaved   *time.Time          `json:"lastSaved,omitempty" msgpack:"lastSaved,omitempty"`
	Countries   []string            `json:"countries" msgpack:"countries"`
	Cities      []string            `json:"cities" msgpack:"cities"`
	DialCodes   []location.DialCode `json:"dialCodes" msgpack:"dialCodes"`
}

// Value returns the draft value for a json key. Templates use it.
func (v View) Value(key string) string {
	f, ok := models.ParseField(key)
	if !ok {
		return ""
	}
	return v.Draft.Get(f)
}

// ErrorFor returns the message to display inline for a json key: only touched
// fields show their error.
func (v View) ErrorFor(key string) string {
	f, ok := models.ParseField(key)
	if !ok || !v.Touched.Has(f) {
		return ""
	}
	return v.Errors.Get(f)
}

func (v View) CanRetreat() bool { return v.Step > models.FirstStep }

func (v View) IsFinalStep() bool { return v.Step == models.LastStep }
