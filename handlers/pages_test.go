package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"regwizard/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browser replays the cookies a page response sets.
type browser struct {
	e       *testEnv
	cookies map[string]*http.Cookie
}

func newBrowser(e *testEnv) *browser {
	return &browser{e: e, cookies: map[string]*http.Cookie{}}
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	b.e.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		b.cookies[ck.Name] = ck
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) session() string {
	if ck, ok := b.cookies[utils.SessionCookie]; ok {
		return ck.Value
	}
	return ""
}

func TestWizardPageFlow(t *testing.T) {
	e := newTestEnv(t, nil)
	b := newBrowser(e)

	w := b.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Personal Information")
	assert.Contains(t, w.Body.String(), "Step 1 of 3")
	require.NotEmpty(t, b.session())

	w = b.post("/wizard/next", url.Values{"firstName": {"Jane"}, "lastName": {""}, "username": {"jane_doe1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?n=invalid", w.Header().Get("Location"))

	w = b.get("/?n=invalid")
	assert.Contains(t, w.Body.String(), "Please fill all required fields correctly")
	assert.Contains(t, w.Body.String(), "Last Name is required")

	w = b.post("/wizard/next", url.Values{"firstName": {"Jane"}, "lastName": {"Doe"}, "username": {"jane_doe1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?n=saved", w.Header().Get("Location"))

	w = b.get("/?n=saved")
	assert.Contains(t, w.Body.String(), "Account Information")
	assert.Contains(t, w.Body.String(), "Form step saved")
	assert.Contains(t, w.Body.String(), "&#43;44 (UK)", "html/template escapes the plus sign")

	w = b.post("/wizard/prev", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, b.get("/").Body.String(), "Personal Information")

	w = b.post("/wizard/reset", nil)
	assert.Equal(t, "/?n=reset", w.Header().Get("Location"))
	assert.Contains(t, b.get("/?n=reset").Body.String(), "Form has been reset")
}

func TestSubmitFormRedirectsToSummary(t *testing.T) {
	e := newTestEnv(t, nil)
	b := newBrowser(e)
	b.get("/")
	e.fill(b.session())

	w := b.post("/wizard/submit", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/summary?ref="), loc)

	w = b.get(loc)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Form submitted successfully!")
	assert.Contains(t, body, "&#43;91 987 654 3210")
	assert.Contains(t, body, "window.print()")
	assert.Contains(t, body, `class="actions no-print"`)
	assert.Contains(t, body, "@media print")
}

func TestSubmitFormWithInvalidDraft(t *testing.T) {
	b := newBrowser(newTestEnv(t, nil))
	b.get("/")

	w := b.post("/wizard/submit", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?n=incomplete", w.Header().Get("Location"))
}

func TestSummaryPageWithoutReferenceRedirects(t *testing.T) {
	b := newBrowser(newTestEnv(t, nil))

	for _, path := range []string{"/summary", "/summary?ref=expired"} {
		w := b.get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/", w.Header().Get("Location"), path)
	}
}

func TestThemeFormTogglesAndReturns(t *testing.T) {
	b := newBrowser(newTestEnv(t, nil))
	b.get("/")

	req := httptest.NewRequest(http.MethodPost, "/theme", nil)
	req.Header.Set("Referer", "http://example.com/summary?ref=abc")
	w := b.send(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/summary?ref=abc", w.Header().Get("Location"))

	assert.Contains(t, b.get("/").Body.String(), `<html lang="en" class="dark">`)
}

func TestCountryChangeClearsCity(t *testing.T) {
	e := newTestEnv(t, nil)
	b := newBrowser(e)
	b.get("/")
	e.fill(b.session())
	for i := 0; i < 2; i++ {
		b.post("/wizard/next", url.Values{})
	}

	w := b.post("/wizard/save", url.Values{"country": {"Canada"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	body := b.get("/").Body.String()
	assert.Contains(t, body, "Location &amp; Identity")
	assert.Contains(t, body, `<option value="Toronto">Toronto</option>`)
	assert.NotContains(t, body, `value="Mumbai" selected`)
}

func TestThemeFormRejectsOffsiteReferer(t *testing.T) {
	b := newBrowser(newTestEnv(t, nil))
	b.get("/")

	for _, referer := range []string{"http://example.com//evil.example/x", "not a url\x7f"} {
		req := httptest.NewRequest(http.MethodPost, "/theme", nil)
		req.Header.Set("Referer", referer)
		w := b.send(req)
		require.Equal(t, http.StatusSeeOther, w.Code, referer)
		assert.Equal(t, "/", w.Header().Get("Location"), referer)
	}
}

func TestLocalReturnPath(t *testing.T) {
	cases := map[string]string{
		"":                                 "/",
		"http://example.com/?n=saved":      "/?n=saved",
		"http://example.com/summary?ref=a": "/summary?ref=a",
		"http://example.com//evil.example": "/",
		"mailto:someone@example.com":       "/",
	}
	for referer, want := range cases {
		assert.Equal(t, want, localReturnPath(referer), referer)
	}
}
