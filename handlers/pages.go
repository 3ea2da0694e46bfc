package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"regwizard/models"
	"regwizard/services/theme"
	"regwizard/services/wizard"
	"regwizard/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").ParseFS(templateFS, "templates/*.tmpl")
}

// pageNotices maps the redirect query code to its notice.
var pageNotices = map[string]models.Notice{
	"saved":      noticeStepSaved,
	"invalid":    noticeStepInvalid,
	"incomplete": noticeFormInvalid,
	"reset":      noticeReset,
	"cancelled":  noticeCancelled,
}

type wizardPage struct {
	wizard.View
	Theme  string
	Notice *models.Notice
}

type summaryPage struct {
	models.Summary
	Ref    string
	Theme  string
	Notice *models.Notice
}

// pageSession returns the caller's session id from its cookie, issuing a new one when needed.
func pageSession(c *gin.Context) string {
	if raw, err := c.Cookie(utils.SessionCookie); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookie, id, cookieMaxAge, "/", "", false, true)
	return id
}

func (hb *HandlerBundle) pageTheme(c *gin.Context) string {
	c.Header("Accept-CH", theme.HintHeader)
	return hb.Theme.Resolve(c.Request.Context(), clientID(c), theme.HintFromHeader(c.Request.Header)).Theme
}

func redirectWith(c *gin.Context, path, notice string) {
	if notice != "" {
		path += "?n=" + url.QueryEscape(notice)
	}
	c.Redirect(http.StatusSeeOther, path)
}

// WizardPageHandler renders the current step of the caller's session.
func (hb *HandlerBundle) WizardPageHandler(c *gin.Context) {
	ctrl := hb.Wizard.Open(c.Request.Context(), pageSession(c), locationHint(c))
	page := wizardPage{View: ctrl.View(), Theme: hb.pageTheme(c)}
	if n, ok := pageNotices[c.Query("n")]; ok {
		page.Notice = &n
	}
	c.HTML(http.StatusOK, "wizard.tmpl", page)
}

// applyStepForm copies the posted values of the current step into the draft.
// Country goes first so the city cascade sees the new selection.
func applyStepForm(c *gin.Context, ctrl *wizard.Controller) {
	for _, f := range models.StepFields(ctrl.Draft().Step) {
		if value, ok := c.GetPostForm(f.Key()); ok {
			ctrl.Update(f, value)
			ctrl.Touch(f)
		}
	}
}

// SaveStepFormHandler stores the posted values without navigating.
func (hb *HandlerBundle) SaveStepFormHandler(c *gin.Context) {
	ctrl := hb.Wizard.Session(c.Request.Context(), pageSession(c))
	applyStepForm(c, ctrl)
	redirectWith(c, "/", "")
}

func (hb *HandlerBundle) NextStepFormHandler(c *gin.Context) {
	ctrl := hb.Wizard.Session(c.Request.Context(), pageSession(c))
	applyStepForm(c, ctrl)
	if ctrl.Advance().Valid {
		redirectWith(c, "/", "saved")
		return
	}
	redirectWith(c, "/", "invalid")
}

func (hb *HandlerBundle) PrevStepFormHandler(c *gin.Context) {
	ctrl := hb.Wizard.Session(c.Request.Context(), pageSession(c))
	applyStepForm(c, ctrl)
	ctrl.Retreat()
	redirectWith(c, "/", "")
}

// SubmitFormHandler submits the session and redirects to its summary.
func (hb *HandlerBundle) SubmitFormHandler(c *gin.Context) {
	id := pageSession(c)
	applyStepForm(c, hb.Wizard.Session(c.Request.Context(), id))

	ref, _, err := hb.Wizard.Submit(c.Request.Context(), id)
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/summary?ref="+url.QueryEscape(ref)+"&n=submitted")
	case errors.Is(err, wizard.ErrFormInvalid):
		redirectWith(c, "/", "incomplete")
	case errors.Is(err, wizard.ErrSubmissionCanceled):
		redirectWith(c, "/", "cancelled")
	case errors.Is(err, wizard.ErrSubmissionPending):
		redirectWith(c, "/", "")
	default:
		getLogger(c).Error("Submission failed", zap.String("sessionID", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Submission failed", err.Error())
	}
}

// ResetFormHandler clears the session and returns to the first step.
func (hb *HandlerBundle) ResetFormHandler(c *gin.Context) {
	hb.Wizard.Session(c.Request.Context(), pageSession(c)).Reset()
	redirectWith(c, "/", "reset")
}

// ThemeFormHandler toggles the theme and returns to the referring page.
func (hb *HandlerBundle) ThemeFormHandler(c *gin.Context) {
	hb.Theme.Toggle(c.Request.Context(), clientID(c), theme.HintFromHeader(c.Request.Header))
	c.Redirect(http.StatusSeeOther, localReturnPath(c.Request.Referer()))
}

// localReturnPath keeps the path and query of referer, or "/" when the result
// would not stay on this host.
func localReturnPath(referer string) string {
	ref, err := url.Parse(referer)
	if err != nil || ref.Path == "" {
		return "/"
	}
	back := ref.RequestURI()
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") || strings.HasPrefix(back, "/\\") {
		return "/"
	}
	return back
}

// SummaryPageHandler renders a submitted snapshot. Without a live reference it goes back to the wizard.
func (hb *HandlerBundle) SummaryPageHandler(c *gin.Context) {
	ref := c.Query("ref")
	summary, ok := hb.Wizard.Summary(ref)
	if ref == "" || !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	page := summaryPage{Summary: summary, Ref: ref, Theme: hb.pageTheme(c)}
	if c.Query("n") == "submitted" {
		page.Notice = &noticeSubmitted
	}
	c.HTML(http.StatusOK, "summary.tmpl", page)
}
