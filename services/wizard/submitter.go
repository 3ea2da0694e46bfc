package wizard

import (
	"context"
	"time"

	"regwizard/models"
)

// Submitter hands a validated draft to whatever accepts registrations.
// Implementations must return promptly once ctx is done.
type Submitter interface {
	Submit(ctx context.Context, draft models.Draft) error
}

// DelaySubmitter simulates a backend round trip by waiting Delay.
type DelaySubmitter struct {
	Delay time.Duration
}

func (s DelaySubmitter) Submit(ctx context.Context, _ models.Draft) error {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, draft models.Draft) error

func (f SubmitterFunc) Submit(ctx context.Context, draft models.Draft) error {
	return f(ctx, draft)
}
