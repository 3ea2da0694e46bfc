package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"regwizard/models"
	"regwizard/services/theme"
	"regwizard/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeToggleUsesClientCookie(t *testing.T) {
	e := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	req.Header.Set(theme.HintHeader, "dark")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ThemeResponse{Theme: "dark", Source: theme.SourceSystem}, decode[models.ThemeResponse](t, w))

	var client *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == utils.ClientCookie {
			client = ck
		}
	}
	require.NotNil(t, client)

	req = httptest.NewRequest(http.MethodPost, "/api/theme/toggle", nil)
	req.AddCookie(client)
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, "dark", decode[models.ThemeResponse](t, w).Theme)

	req = httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	req.AddCookie(client)
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, models.ThemeResponse{Theme: "dark", Source: theme.SourceStored}, decode[models.ThemeResponse](t, w))
}
