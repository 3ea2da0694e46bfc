package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"regwizard/models"
	"regwizard/utils"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWizardDetectsCountry(t *testing.T) {
	e := newTestEnv(t, nil)
	w := e.do(http.MethodPost, "/api/wizard", nil)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[WizardResponse](t, w)
	assert.NotEmpty(t, resp.View.SessionID)
	assert.Equal(t, "India", resp.View.Draft.Country)
	assert.Equal(t, 1, resp.View.Step)
	assert.Equal(t, "+91", resp.View.Draft.CountryCode)
	assert.Nil(t, resp.Notice)
}

func TestMalformedSessionID(t *testing.T) {
	e := newTestEnv(t, nil)
	w := e.do(http.MethodGet, "/api/wizard/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid session id", decode[utils.ErrorResponse](t, w).Message)
}

func TestUpdateFieldRejectsUnknownField(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)

	w := e.do(http.MethodPatch, "/api/wizard/"+id+"/fields", map[string]string{"field": "nickname", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, "/api/wizard/"+id+"/fields", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateNormalizesAndTouchShowsError(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)

	w := e.do(http.MethodPatch, "/api/wizard/"+id+"/fields", map[string]string{"field": "panNumber", "value": "abcde1234f"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ABCDE1234F", decode[WizardResponse](t, w).View.Draft.PANNumber)

	w = e.do(http.MethodPatch, "/api/wizard/"+id+"/fields", map[string]string{"field": "username", "value": "abc"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[WizardResponse](t, w).View.ErrorFor("username"))

	w = e.do(http.MethodPost, "/api/wizard/"+id+"/touch", map[string]string{"field": "username"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[WizardResponse](t, w).View.ErrorFor("username"))
}

func TestNextRefusedOnInvalidStep(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)

	w := e.do(http.MethodPost, "/api/wizard/"+id+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[WizardResponse](t, w)
	require.NotNil(t, resp.Result)
	assert.False(t, resp.Result.Advanced)
	assert.Equal(t, 1, resp.View.Step)
	assert.Equal(t, "Please fill all required fields correctly", resp.Notice.Message)
	assert.Equal(t, "First Name is required", resp.View.ErrorFor("firstName"))
}

func TestNextAndPrev(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)
	e.fill(id)

	w := e.do(http.MethodPost, "/api/wizard/"+id+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[WizardResponse](t, w)
	assert.Equal(t, 2, resp.View.Step)
	assert.Equal(t, "Form step saved", resp.Notice.Message)
	assert.Equal(t, "success", resp.Notice.Kind)

	w = e.do(http.MethodPost, "/api/wizard/"+id+"/prev", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[WizardResponse](t, w).View.Step)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.StepTransitions.WithLabelValues("next", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.StepTransitions.WithLabelValues("prev", "ok")))
}

func TestValidateReportsFormValidity(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)

	w := e.do(http.MethodPost, "/api/wizard/"+id+"/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[WizardResponse](t, w)
	assert.False(t, resp.View.IsFormValid)
	assert.Equal(t, "Please complete all required fields correctly", resp.Notice.Message)

	e.fill(id)
	resp = decode[WizardResponse](t, e.do(http.MethodPost, "/api/wizard/"+id+"/validate", nil))
	assert.True(t, resp.View.IsFormValid)
	assert.Nil(t, resp.Notice)
}

func TestSubmitInvalidForm(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)

	w := e.do(http.MethodPost, "/api/wizard/"+id+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Please complete all required fields correctly", decode[WizardResponse](t, w).Notice.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Submissions.WithLabelValues("invalid")))
}

func TestSubmitAndFetchSummary(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)
	e.fill(id)

	w := e.do(http.MethodPost, "/api/wizard/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[SubmitResponse](t, w)
	require.NotEmpty(t, resp.SummaryRef)
	assert.Equal(t, "Form submitted successfully!", resp.Notice.Message)
	assert.Equal(t, "987 654 3210", resp.Summary.FormattedPhone)

	w = e.do(http.MethodGet, "/api/summaries/"+resp.SummaryRef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jane", decode[models.Summary](t, w).Draft.FirstName)

	w = e.do(http.MethodGet, "/api/summaries/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelPendingSubmission(t *testing.T) {
	started := make(chan struct{}, 1)
	e := newTestEnv(t, blockingSubmitter(started))
	id := e.openSession(t)
	e.fill(id)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- e.do(http.MethodPost, "/api/wizard/"+id+"/submit", nil)
	}()
	<-started

	w := e.do(http.MethodPost, "/api/wizard/"+id+"/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodDelete, "/api/wizard/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]bool{"cancelled": true}, decode[map[string]bool](t, w))

	first := <-done
	assert.Equal(t, http.StatusConflict, first.Code)
	body := decode[WizardResponse](t, first)
	assert.Equal(t, "Submission cancelled", body.Notice.Message)
	assert.False(t, body.View.Submitting)
}

func TestResetRestoresEmptyDraft(t *testing.T) {
	e := newTestEnv(t, nil)
	id := e.openSession(t)
	e.fill(id)
	e.do(http.MethodPost, "/api/wizard/"+id+"/next", nil)

	w := e.do(http.MethodPost, "/api/wizard/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[WizardResponse](t, w)
	assert.Equal(t, "Form has been reset", resp.Notice.Message)
	assert.Equal(t, "info", resp.Notice.Kind)
	assert.Equal(t, 1, resp.View.Step)
	assert.Empty(t, resp.View.Draft.FirstName)
	assert.Zero(t, resp.View.Completion)
}
