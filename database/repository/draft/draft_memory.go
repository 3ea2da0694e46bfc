package draftRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"regwizard/models"
)

// MemoryDraftRepo keeps JSON encoded drafts in process memory.
type MemoryDraftRepo struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

// NewMemoryDraftRepo creates an empty in-memory repository.
func NewMemoryDraftRepo() *MemoryDraftRepo {
	return &MemoryDraftRepo{drafts: make(map[string][]byte)}
}

func (r *MemoryDraftRepo) Load(_ context.Context, sessionID string) (*models.SavedDraft, error) {
	r.mu.RLock()
	data, ok := r.drafts[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var saved models.SavedDraft
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDraft, err)
	}
	return &saved, nil
}

func (r *MemoryDraftRepo) Save(_ context.Context, sessionID string, draft models.SavedDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	r.mu.Lock()
	r.drafts[sessionID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryDraftRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.drafts, sessionID)
	r.mu.Unlock()
	return nil
}

func (r *MemoryDraftRepo) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for id, data := range r.drafts {
		var saved models.SavedDraft
		// Undecodable entries are dropped as well.
		if err := json.Unmarshal(data, &saved); err != nil || saved.LastSaved.Before(cutoff) {
			delete(r.drafts, id)
			purged++
		}
	}
	return purged, nil
}

// PutRaw stores raw bytes for a session. Tests use it to simulate corrupt entries.
func (r *MemoryDraftRepo) PutRaw(sessionID string, data []byte) {
	r.mu.Lock()
	r.drafts[sessionID] = data
	r.mu.Unlock()
}
