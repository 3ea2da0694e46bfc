package preferenceRepo

import "context"

// PreferenceRepository stores small per-client settings such as the theme.
type PreferenceRepository interface {
	// Get returns the stored value; ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
}
