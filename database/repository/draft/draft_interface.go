package draftRepo

import (
	"context"
	"errors"
	"time"

	"regwizard/models"
)

// ErrCorruptDraft is returned when a stored draft cannot be decoded.
var ErrCorruptDraft = errors.New("stored draft is corrupt")

//go:generate mockgen -source=draft_interface.go -destination=mocks/draft_mock.go -package=mocks

// DraftRepository persists wizard drafts keyed by session id.
type DraftRepository interface {
	// Load returns the saved draft, or nil with no error when none exists.
	Load(ctx context.Context, sessionID string) (*models.SavedDraft, error)
	// Save replaces the stored draft.
	Save(ctx context.Context, sessionID string, draft models.SavedDraft) error
	// Delete removes the stored draft, if any.
	Delete(ctx context.Context, sessionID string) error
	// PurgeBefore removes drafts last saved before cutoff and reports how many went.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
