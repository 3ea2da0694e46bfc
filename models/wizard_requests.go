package models

// UpdateFieldRequest carries one field change from the client.
type UpdateFieldRequest struct {
	Field string `json:"field" form:"field" binding:"required,wizardfield"`
	Value string `json:"value" form:"value"`
}

// TouchFieldRequest marks one field as blurred.
type TouchFieldRequest struct {
	Field string `json:"field" form:"field" binding:"required,wizardfield"`
}

// Notice kinds, mirroring the toast variants of the web client.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
)

// Notice is a transient user-facing message attached to a response.
type Notice struct {
	Message string `json:"message" msgpack:"message"`
	Kind    string `json:"kind" msgpack:"kind"`
}

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ThemeResponse reports the effective theme for a client.
type ThemeResponse struct {
	Theme  string `json:"theme"`
	Source string `json:"source"`
}
