package utils

// DraftKeyPrefix is the prefix used for stored wizard drafts.
const DraftKeyPrefix = "formData:"

// ThemeKeyPrefix is the prefix used for stored theme preferences.
const ThemeKeyPrefix = "theme:"

// Cookie names shared by the page handlers and the theme endpoints.
const (
	SessionCookie = "rw_session"
	ClientCookie  = "rw_client"
)

// Gin context keys set by the middleware.
const (
	LoggerKey       = "logger"
	RequestIDKey    = "requestID"
	LocationHintKey = "locationHint"
)
