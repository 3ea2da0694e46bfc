package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	draftRepo "regwizard/database/repository/draft"
	preferenceRepo "regwizard/database/repository/preference"
	"regwizard/metrics"
	"regwizard/models"
	"regwizard/services/location"
	"regwizard/services/theme"
	"regwizard/services/wizard"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	hb      *HandlerBundle
	svc     *wizard.DefaultWizardService
	metrics *metrics.Metrics
	router  *gin.Engine
}

func newTestEnv(t *testing.T, submitter wizard.Submitter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if submitter == nil {
		submitter = wizard.DelaySubmitter{}
	}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := wizard.NewDefaultWizardService(wizard.ServiceConfig{
		Repo:      draftRepo.NewMemoryDraftRepo(),
		Detector:  location.FixedDetector{Country: "India"},
		Submitter: submitter,
		Metrics:   m,
	})
	hb := NewHandlerBundle(svc, theme.NewService(preferenceRepo.NewMemoryPreferenceRepo(), nil), m)

	tmpl, err := Templates()
	require.NoError(t, err)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	api := r.Group("/api")
	api.POST("/wizard", hb.OpenWizardHandler)
	api.GET("/wizard/:id", hb.GetWizardHandler)
	api.PATCH("/wizard/:id/fields", hb.UpdateFieldHandler)
	api.POST("/wizard/:id/touch", hb.TouchFieldHandler)
	api.POST("/wizard/:id/next", hb.NextStepHandler)
	api.POST("/wizard/:id/prev", hb.PrevStepHandler)
	api.POST("/wizard/:id/validate", hb.ValidateFormHandler)
	api.POST("/wizard/:id/submit", hb.SubmitHandler)
	api.DELETE("/wizard/:id/submit", hb.CancelSubmitHandler)
	api.POST("/wizard/:id/reset", hb.ResetHandler)
	api.GET("/wizard/:id/export/text", hb.ExportDraftTextHandler)
	api.GET("/wizard/:id/export/csv", hb.ExportDraftCSVHandler)
	api.GET("/wizard/:id/live", hb.LiveHandler)
	api.GET("/summaries/:ref", hb.GetSummaryHandler)
	api.GET("/summaries/:ref/export/text", hb.ExportSummaryTextHandler)
	api.GET("/summaries/:ref/export/csv", hb.ExportSummaryCSVHandler)
	api.GET("/theme", hb.GetThemeHandler)
	api.POST("/theme/toggle", hb.ToggleThemeHandler)

	r.GET("/", hb.WizardPageHandler)
	r.GET("/summary", hb.SummaryPageHandler)
	r.POST("/wizard/save", hb.SaveStepFormHandler)
	r.POST("/wizard/next", hb.NextStepFormHandler)
	r.POST("/wizard/prev", hb.PrevStepFormHandler)
	r.POST("/wizard/submit", hb.SubmitFormHandler)
	r.POST("/wizard/reset", hb.ResetFormHandler)
	r.POST("/theme", hb.ThemeFormHandler)

	return &testEnv{hb: hb, svc: svc, metrics: m, router: r}
}

var janeDoe = map[models.Field]string{
	models.FirstName:    "Jane",
	models.LastName:     "Doe",
	models.Username:     "jane_doe1",
	models.Email:        "jane@example.com",
	models.Password:     "Abcdef1!",
	models.PhoneNumber:  "9876543210",
	models.CountryCode:  "+91",
	models.Country:      "India",
	models.City:         "Mumbai",
	models.PANNumber:    "ABCDE1234F",
	models.AadharNumber: "123456789012",
}

// fill populates every field of the session directly through its controller.
func (e *testEnv) fill(id string) {
	ctrl := e.svc.Session(context.Background(), id)
	for _, f := range models.AllFields() {
		ctrl.Update(f, janeDoe[f])
	}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// openSession creates a session through the API and returns its id.
func (e *testEnv) openSession(t *testing.T) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/wizard", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode[WizardResponse](t, w).View.SessionID
}

// blockingSubmitter waits for cancellation and signals when it has started.
func blockingSubmitter(started chan<- struct{}) wizard.Submitter {
	return wizard.SubmitterFunc(func(ctx context.Context, _ models.Draft) error {
		started <- struct{}{}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})
}
