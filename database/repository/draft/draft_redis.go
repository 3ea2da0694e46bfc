package draftRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"regwizard/models"
	"regwizard/utils"

	"github.com/go-redis/redis/v8"
)

// RedisDraftRepo stores drafts as JSON strings under utils.DraftKeyPrefix.
// Expiry is left to the key TTL, so PurgeBefore has nothing to do.
type RedisDraftRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftRepo creates a redis backed repository. A zero ttl keeps drafts forever.
func NewRedisDraftRepo(client *redis.Client, ttl time.Duration) *RedisDraftRepo {
	return &RedisDraftRepo{client: client, ttl: ttl}
}

func draftKey(sessionID string) string {
	return utils.DraftKeyPrefix + sessionID
}

func (r *RedisDraftRepo) Load(ctx context.Context, sessionID string) (*models.SavedDraft, error) {
	data, err := r.client.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", sessionID, err)
	}

	var saved models.SavedDraft
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDraft, err)
	}
	return &saved, nil
}

func (r *RedisDraftRepo) Save(ctx context.Context, sessionID string, draft models.SavedDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := r.client.Set(ctx, draftKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisDraftRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisDraftRepo) PurgeBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}
