package handlers

import (
	"net/http"

	"regwizard/services/theme"
	"regwizard/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const cookieMaxAge = 365 * 24 * 60 * 60

// clientID returns the client cookie, issuing a new one when absent.
func clientID(c *gin.Context) string {
	if id, err := c.Cookie(utils.ClientCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.ClientCookie, id, cookieMaxAge, "/", "", false, true)
	return id
}

// GetThemeHandler reports the effective theme of the caller.
func (hb *HandlerBundle) GetThemeHandler(c *gin.Context) {
	c.Header("Accept-CH", theme.HintHeader)
	c.JSON(http.StatusOK, hb.Theme.Resolve(c.Request.Context(), clientID(c), theme.HintFromHeader(c.Request.Header)))
}

// ToggleThemeHandler flips and stores the caller's theme.
func (hb *HandlerBundle) ToggleThemeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, hb.Theme.Toggle(c.Request.Context(), clientID(c), theme.HintFromHeader(c.Request.Header)))
}
