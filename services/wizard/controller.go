// Package wizard implements the step-gated registration form state machine.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	draftRepo "regwizard/database/repository/draft"
	"regwizard/metrics"
	"regwizard/models"
	"regwizard/services/export"
	"regwizard/services/location"
	"regwizard/services/validation"

	"go.uber.org/zap"
)

var (
	// ErrFormInvalid is returned by Submit when at least one field fails validation.
	ErrFormInvalid = errors.New("form has invalid fields")
	// ErrSubmissionPending is returned by Submit while an earlier submission is still running.
	ErrSubmissionPending = errors.New("a submission is already pending")
	// ErrSubmissionCanceled is returned by Submit when the pending submission was cancelled.
	ErrSubmissionCanceled = errors.New("submission was cancelled")
)

// Options wires a Controller to its collaborators.
type Options struct {
	Repo           draftRepo.DraftRepository
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	PersistTimeout time.Duration
	Now            func() time.Time
}

func (o *Options) fill() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.PersistTimeout <= 0 {
		o.PersistTimeout = 2 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// AdvanceResult reports the outcome of a step gate.
type AdvanceResult struct {
	Valid    bool `json:"valid"`
	Advanced bool `json:"advanced"`
	Step     int  `json:"step"`
}

// Controller owns one session's draft. All fields are guarded by mu and only
// change through the exported operations.
type Controller struct {
	id   string
	opts Options

	mu         sync.Mutex
	draft      models.Draft
	errors     models.FieldErrors
	touched    models.FieldFlags
	formValid  bool
	lastSaved  time.Time
	submitting bool
	cancel     context.CancelFunc
}

// NewController restores a controller from saved, or starts from the empty draft when saved is nil.
func NewController(id string, saved *models.SavedDraft, opts Options) *Controller {
	opts.fill()
	c := &Controller{id: id, opts: opts, draft: models.NewDraft()}
	if saved != nil {
		c.draft = saved.Draft
		c.draft.ClampStep()
		c.lastSaved = saved.LastSaved
	}
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Update stores a field value after input normalization and enforces the
// country/city cascade.
func (c *Controller) Update(f models.Field, value string) {
	if !f.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft.Set(f, validation.Normalize(f, value))
	if f == models.Country {
		c.cascadeCityLocked()
		c.revalidateIfTouchedLocked(models.City)
	}
	c.revalidateIfTouchedLocked(f)
	c.persistLocked()
}

// cascadeCityLocked clears a city that does not belong to the selected country.
func (c *Controller) cascadeCityLocked() {
	if c.draft.City != "" && !location.HasCity(c.draft.Country, c.draft.City) {
		c.draft.City = ""
	}
}

func (c *Controller) revalidateIfTouchedLocked(f models.Field) {
	if c.touched.Has(f) {
		c.errors.Set(f, validation.ValidateDraftField(c.draft, f))
	}
}

// Touch marks a field as blurred and records its current error for display.
func (c *Controller) Touch(f models.Field) {
	if !f.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touched.Mark(f)
	c.errors.Set(f, validation.ValidateDraftField(c.draft, f))
}

// Advance validates the current step and moves forward when every field passes.
// The step's error slots are refreshed either way.
func (c *Controller) Advance() AdvanceResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	valid := c.checkLocked(models.StepFields(c.draft.Step))
	res := AdvanceResult{Valid: valid, Step: c.draft.Step}
	if valid && c.draft.Step < models.LastStep {
		c.draft.Step++
		res.Advanced = true
		res.Step = c.draft.Step
		c.persistLocked()
	}
	c.record("next", res.Advanced)
	return res
}

// Retreat moves one step back without validating. It reports whether the step changed.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft.Step <= models.FirstStep {
		c.record("prev", false)
		return false
	}
	c.draft.Step--
	c.persistLocked()
	c.record("prev", true)
	return true
}

// SubmitAll validates every field of every step, replaces the whole error
// record and reports whether the form is valid.
func (c *Controller) SubmitAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitAllLocked()
}

func (c *Controller) submitAllLocked() bool {
	c.errors = models.FieldErrors{}
	c.formValid = c.checkLocked(models.AllFields())
	return c.formValid
}

// checkLocked validates fields into their error slots and marks them touched so
// the messages are displayed.
func (c *Controller) checkLocked(fields []models.Field) bool {
	valid := true
	for _, f := range fields {
		msg := validation.ValidateDraftField(c.draft, f)
		c.errors.Set(f, msg)
		c.touched.Mark(f)
		if msg != "" {
			valid = false
		}
	}
	return valid
}

// Submit validates the whole form and, when valid, awaits s with a cancellable
// context. Only one submission may be pending at a time.
func (c *Controller) Submit(ctx context.Context, s Submitter) (models.Summary, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return models.Summary{}, ErrSubmissionPending
	}
	if !c.submitAllLocked() {
		c.mu.Unlock()
		return models.Summary{}, ErrFormInvalid
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.submitting = true
	c.cancel = cancel
	snapshot := c.draft
	c.mu.Unlock()

	err := s.Submit(ctx, snapshot)

	c.mu.Lock()
	c.submitting = false
	c.cancel = nil
	c.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return models.Summary{}, ErrSubmissionCanceled
		}
		return models.Summary{}, fmt.Errorf("submit draft %s: %w", c.id, err)
	}
	return models.Summary{
		Draft:          snapshot,
		FormattedPhone: export.FormatPhone(snapshot.PhoneNumber),
		SubmittedAt:    c.opts.Now(),
	}, nil
}

// CancelSubmission aborts the pending submission. It reports whether one was pending.
func (c *Controller) CancelSubmission() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

// Submitting reports whether a submission is pending.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Reset restores the empty draft and clears errors, touched state and validity.
// A pending submission is cancelled.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.draft = models.NewDraft()
	c.errors = models.FieldErrors{}
	c.touched = models.FieldFlags{}
	c.formValid = false
	c.persistLocked()
}

// DetectCountry fills an empty country from d. The lookup runs outside the lock.
func (c *Controller) DetectCountry(ctx context.Context, d location.Detector, hint location.Hint) bool {
	if d == nil {
		return false
	}
	c.mu.Lock()
	hasCountry := c.draft.Country != ""
	c.mu.Unlock()
	if hasCountry {
		return false
	}

	country, ok := d.Detect(ctx, hint)
	ok = ok && location.HasCountry(country)
	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordDetection(ok)
	}
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.Country != "" {
		return false
	}
	c.draft.Country = country
	c.cascadeCityLocked()
	c.persistLocked()
	c.opts.Logger.Debug("Country detected", zap.String("sessionID", c.id), zap.String("country", country))
	return true
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() models.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Completion returns the current completion percentage.
func (c *Controller) Completion() int {
	return validation.Completion(c.Draft())
}

// View snapshots the controller for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		SessionID:   c.id,
		Draft:       c.draft,
		Step:        c.draft.Step,
		StepTitle:   models.StepTitle(c.draft.Step),
		TotalSteps:  models.LastStep,
		Errors:      c.errors,
		Touched:     c.touched,
		Completion:  validation.Completion(c.draft),
		Strength:    validation.MeasurePassword(c.draft.Password),
		IsFormValid: c.formValid,
		Submitting:  c.submitting,
		Countries:   location.Countries(),
		Cities:      location.Cities(c.draft.Country),
		DialCodes:   location.DialCodes(),
	}
	if !c.lastSaved.IsZero() {
		saved := c.lastSaved
		v.LastSaved = &saved
	}
	return v
}

// persistLocked writes the draft. Failures are logged and otherwise ignored.
func (c *Controller) persistLocked() {
	if c.opts.Repo == nil {
		return
	}
	saved := models.SavedDraft{Draft: c.draft, LastSaved: c.opts.Now()}

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.PersistTimeout)
	defer cancel()
	if err := c.opts.Repo.Save(ctx, c.id, saved); err != nil {
		c.opts.Logger.Warn("Failed to persist draft", zap.String("sessionID", c.id), zap.Error(err))
		if c.opts.Metrics != nil {
			c.opts.Metrics.IncrementPersistFailures()
		}
		return
	}
	c.lastSaved = saved.LastSaved
}

func (c *Controller) record(direction string, ok bool) {
	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordStep(direction, ok)
	}
}
