package handlers

import (
	"errors"
	"net/http"

	"regwizard/models"
	"regwizard/services/location"
	"regwizard/services/wizard"
	"regwizard/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notices attached to responses that follow a user action.
var (
	noticeStepSaved    = models.Notice{Message: "Form step saved", Kind: models.NoticeSuccess}
	noticeStepInvalid  = models.Notice{Message: "Please fill all required fields correctly", Kind: models.NoticeError}
	noticeFormInvalid  = models.Notice{Message: "Please complete all required fields correctly", Kind: models.NoticeError}
	noticeSubmitted    = models.Notice{Message: "Form submitted successfully!", Kind: models.NoticeSuccess}
	noticeReset        = models.Notice{Message: "Form has been reset", Kind: models.NoticeInfo}
	noticeTextDownload = models.Notice{Message: "Downloaded as Text file", Kind: models.NoticeSuccess}
	noticeCSVDownload  = models.Notice{Message: "Downloaded as CSV", Kind: models.NoticeSuccess}
	noticeCancelled    = models.Notice{Message: "Submission cancelled", Kind: models.NoticeWarning}
)

// WizardResponse is the body of every wizard API response.
type WizardResponse struct {
	View   wizard.View           `json:"view"`
	Result *wizard.AdvanceResult `json:"result,omitempty"`
	Notice *models.Notice        `json:"notice,omitempty"`
}

// SubmitResponse is returned by a successful submission.
type SubmitResponse struct {
	SummaryRef string         `json:"summaryRef"`
	Summary    models.Summary `json:"summary"`
	Notice     models.Notice  `json:"notice"`
}

func respond(c *gin.Context, status int, view wizard.View, notice *models.Notice) {
	c.JSON(status, WizardResponse{View: view, Notice: notice})
}

// locationHint returns the hint set by the location middleware, or builds one from the request.
func locationHint(c *gin.Context) location.Hint {
	if v, ok := c.Get(utils.LocationHintKey); ok {
		if h, ok := v.(location.Hint); ok {
			return h
		}
	}
	return location.Hint{ClientIP: c.ClientIP(), Header: c.Request.Header}
}

// sessionController resolves the :id parameter. It writes a 400 and returns nil when the id is malformed.
func (hb *HandlerBundle) sessionController(c *gin.Context) *wizard.Controller {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid session id", err.Error())
		return nil
	}
	return hb.Wizard.Session(c.Request.Context(), id.String())
}

// OpenWizardHandler starts a new session and runs country detection.
func (hb *HandlerBundle) OpenWizardHandler(c *gin.Context) {
	id := uuid.NewString()
	ctrl := hb.Wizard.Open(c.Request.Context(), id, locationHint(c))
	getLogger(c).Info("Wizard session opened", zap.String("sessionID", id))
	respond(c, http.StatusCreated, ctrl.View(), nil)
}

func (hb *HandlerBundle) GetWizardHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	respond(c, http.StatusOK, ctrl.View(), nil)
}

// UpdateFieldHandler stores one field value.
func (hb *HandlerBundle) UpdateFieldHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	var req models.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid field update", err.Error())
		return
	}
	f, _ := models.ParseField(req.Field)
	ctrl.Update(f, req.Value)
	respond(c, http.StatusOK, ctrl.View(), nil)
}

// TouchFieldHandler marks a field as blurred.
func (hb *HandlerBundle) TouchFieldHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	var req models.TouchFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid field", err.Error())
		return
	}
	f, _ := models.ParseField(req.Field)
	ctrl.Touch(f)
	respond(c, http.StatusOK, ctrl.View(), nil)
}

// NextStepHandler advances when the current step is valid, otherwise answers 422.
func (hb *HandlerBundle) NextStepHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	res := ctrl.Advance()
	status, notice := http.StatusOK, noticeStepSaved
	if !res.Valid {
		status, notice = http.StatusUnprocessableEntity, noticeStepInvalid
	}
	c.JSON(status, WizardResponse{View: ctrl.View(), Result: &res, Notice: &notice})
}

func (hb *HandlerBundle) PrevStepHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	ctrl.Retreat()
	respond(c, http.StatusOK, ctrl.View(), nil)
}

// ValidateFormHandler validates every field without submitting.
func (hb *HandlerBundle) ValidateFormHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	if ctrl.SubmitAll() {
		respond(c, http.StatusOK, ctrl.View(), nil)
		return
	}
	respond(c, http.StatusOK, ctrl.View(), &noticeFormInvalid)
}

// SubmitHandler blocks until the submission settles. Cancelling it through
// CancelSubmitHandler or by dropping the request ends it early.
func (hb *HandlerBundle) SubmitHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid session id", err.Error())
		return
	}
	ctx := c.Request.Context()
	ref, summary, err := hb.Wizard.Submit(ctx, id.String())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, SubmitResponse{SummaryRef: ref, Summary: summary, Notice: noticeSubmitted})
	case errors.Is(err, wizard.ErrFormInvalid):
		respond(c, http.StatusUnprocessableEntity, hb.Wizard.Session(ctx, id.String()).View(), &noticeFormInvalid)
	case errors.Is(err, wizard.ErrSubmissionCanceled):
		respond(c, http.StatusConflict, hb.Wizard.Session(ctx, id.String()).View(), &noticeCancelled)
	case errors.Is(err, wizard.ErrSubmissionPending):
		utils.JSONError(c, http.StatusConflict, "A submission is already pending", "")
	default:
		getLogger(c).Error("Submission failed", zap.String("sessionID", id.String()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Submission failed", err.Error())
	}
}

// CancelSubmitHandler aborts the pending submission of a session.
func (hb *HandlerBundle) CancelSubmitHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": ctrl.CancelSubmission()})
}

func (hb *HandlerBundle) ResetHandler(c *gin.Context) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	ctrl.Reset()
	getLogger(c).Info("Wizard reset", zap.String("sessionID", ctrl.ID()))
	respond(c, http.StatusOK, ctrl.View(), &noticeReset)
}

// GetSummaryHandler returns a submitted snapshot.
func (hb *HandlerBundle) GetSummaryHandler(c *gin.Context) {
	summary, ok := hb.Wizard.Summary(c.Param("ref"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Summary not found", "")
		return
	}
	c.JSON(http.StatusOK, summary)
}
