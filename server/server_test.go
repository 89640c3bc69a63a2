package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/credentials"
	"github.com/jrsteele09/mitti-dashboard/gateway"
	"github.com/jrsteele09/mitti-dashboard/internal/backendfake"
	"github.com/jrsteele09/mitti-dashboard/internal/config"
	"github.com/jrsteele09/mitti-dashboard/server"
	"github.com/jrsteele09/mitti-dashboard/session"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "farmer1"
	testPassword = "secret12"
)

type testFixture struct {
	fake    *backendfake.Server
	slot    *credentials.InMemoryBackend
	creds   *credentials.Store
	session *session.Store
	api     *backend.Client
	server  *httptest.Server
	client  *http.Client
}

// setupTestFixture wires the dashboard the way cmd/dashboard does, against the
// fake backend. The session is not initialized; tests decide when.
func setupTestFixture(t *testing.T, stored string) *testFixture {
	t.Helper()
	f := &testFixture{
		fake:    backendfake.New(),
		slot:    credentials.NewInMemoryBackend(stored),
		session: session.NewStore(),
	}
	f.creds = credentials.NewStore(f.slot)

	backendSrv := httptest.NewServer(f.fake)
	t.Cleanup(backendSrv.Close)

	events := gateway.NewEvents()
	f.api = backend.New(gateway.NewClient(backendSrv.URL, gateway.NewTransport(nil, f.creds, events)))

	cfg := config.EnvVars{AppName: "Mitti Mantra", Environment: "TEST", LandingPath: "/"}
	s, err := server.New(cfg, server.Services{
		Credentials: f.creds,
		Session:     f.session,
		Events:      events,
		API:         f.api,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	f.server = httptest.NewServer(s)
	t.Cleanup(f.server.Close)
	f.client = &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	_, err = f.fake.AddUser(testUsername, "farmer1@example.com", testPassword, nil)
	require.NoError(t, err)
	return f
}

func (f *testFixture) initialize(t *testing.T) {
	t.Helper()
	f.session.Initialize(context.Background(), f.creds, f.api.Me)
	select {
	case <-f.session.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("session never settled")
	}
}

func (f *testFixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.Get(f.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (f *testFixture) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.PostForm(f.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	resp, _ := f.postForm(t, server.RouteLogin, url.Values{"username": {testUsername}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestGuardShowsPlaceholderWhileUnknown(t *testing.T) {
	f := setupTestFixture(t, "")

	resp, body := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Checking your session")
	require.Contains(t, body, `http-equiv="refresh"`)
	require.Empty(t, f.fake.RequestsTo(backend.PathFarmerInsights))
}

func TestGuardRedirectsAnonymous(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, _ := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
	require.Empty(t, f.fake.RequestsTo(backend.PathMe), "no profile request without a credential")
}

func TestStartupCheckThenDashboard(t *testing.T) {
	f := setupTestFixture(t, "")
	token, err := f.fake.IssueToken(testUsername)
	require.NoError(t, err)
	require.NoError(t, f.slot.Save(context.Background(), token))

	release := f.fake.HoldProfile()
	f.session.Initialize(context.Background(), f.creds, f.api.Me)

	resp, body := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Checking your session")

	release()
	f.initialize(t)
	require.Equal(t, session.StatusAuthenticated, f.session.Status())

	resp, body = f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Farmer Dashboard")
	require.Contains(t, body, "Kharif")
	require.Equal(t, "Bearer "+token, f.fake.RequestsTo(backend.PathFarmerInsights)[0].Authorization)
}

func TestStartupCheckRejectedCredential(t *testing.T) {
	f := setupTestFixture(t, "stale-token")
	f.initialize(t)

	require.Equal(t, session.StatusAnonymous, f.session.Status())
	require.Empty(t, f.slot.Value())

	resp, _ := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
}

func TestLoginFlow(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, _ := f.postForm(t, server.RouteLogin, url.Values{"username": {testUsername}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.NotEmpty(t, f.slot.Value())

	resp, body := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Welcome, farmer1")
	require.Contains(t, body, "Logout")
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := f.postForm(t, server.RouteLogin, url.Values{"username": {testUsername}, "password": {"wrong-pass"}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, "Incorrect username or password")
	require.Contains(t, body, `value="farmer1"`)
	require.Equal(t, session.StatusAnonymous, f.session.Status())
}

func TestLoginMissingFields(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := f.postForm(t, server.RouteLogin, url.Values{"username": {testUsername}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Username and password are required")
	require.Empty(t, f.fake.RequestsTo(backend.PathLogin))
}

func TestRegisterFlow(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, _ := f.postForm(t, server.RouteRegister, url.Values{
		"email":    {"asha@example.com"},
		"username": {"asha"},
		"password": {"secret12"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	snap := f.session.Snapshot()
	require.Equal(t, session.StatusAuthenticated, snap.Status)
	require.Equal(t, "asha", snap.Identity.Username)
	require.Nil(t, snap.Identity.FullName)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := f.postForm(t, server.RouteRegister, url.Values{
		"email":    {"other@example.com"},
		"username": {testUsername},
		"password": {"secret12"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Username already registered")
	require.Equal(t, session.StatusAnonymous, f.session.Status())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)
	f.login(t)

	resp, _ := f.postForm(t, server.RouteLogout, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
	require.Equal(t, session.StatusAnonymous, f.session.Status())
	require.Empty(t, f.slot.Value())

	require.Eventually(t, func() bool {
		return len(f.fake.RequestsTo(backend.PathLogout)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRevokedCredentialEndsSession(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)
	f.login(t)

	f.fake.RevokeAll()
	resp, body := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
	require.NotContains(t, body, "Failed to load dashboard data")

	require.Equal(t, session.StatusAnonymous, f.session.Status())
	require.Empty(t, f.slot.Value())
}

func TestRevokedCredentialOnPredictionPage(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)
	f.login(t)

	f.fake.RevokeAll()
	resp, _ := f.postForm(t, server.RouteCropRecommendation, cropForm("50"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))
	require.Equal(t, session.StatusAnonymous, f.session.Status())
}

type pageResult struct {
	resp *http.Response
	body string
}

// async sends a request on its own goroutine.
func async(send func() (*http.Response, error)) <-chan pageResult {
	done := make(chan pageResult, 1)
	go func() {
		resp, err := send()
		if err != nil {
			done <- pageResult{}
			return
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		done <- pageResult{resp: resp, body: string(body)}
	}()
	return done
}

func awaitPage(t *testing.T, done <-chan pageResult) pageResult {
	t.Helper()
	select {
	case res := <-done:
		require.NotNil(t, res.resp, "request failed")
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("page never answered")
		return pageResult{}
	}
}

func TestDashboardTeardownSurvivesConcurrentRequests(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)
	f.login(t)

	release := f.fake.Hold(backend.PathCropPatterns)
	defer release()
	f.fake.RevokeAll()

	dashboard := async(func() (*http.Response, error) {
		return f.client.Get(f.server.URL + server.RouteDashboard)
	})
	require.Eventually(t, func() bool {
		return f.session.Status() == session.StatusAnonymous
	}, 2*time.Second, 10*time.Millisecond, "insights 401 should end the session")

	// another page runs while the dashboard is still waiting on crop patterns
	resp, _ := f.postForm(t, server.RouteCropRecommendation, cropForm("240"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	release()
	res := awaitPage(t, dashboard)
	require.Equal(t, http.StatusSeeOther, res.resp.StatusCode)
	require.Equal(t, server.RouteLogin, res.resp.Header.Get("Location"))
	require.NotContains(t, res.body, "Season:")
}

func TestSecondRejectedRequestAlsoEndsOnLogin(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)
	f.login(t)

	release := f.fake.Hold(backend.PathPredictCrop)
	defer release()
	f.fake.RevokeAll()

	crop := async(func() (*http.Response, error) {
		return f.client.PostForm(f.server.URL+server.RouteCropRecommendation, cropForm("240"))
	})
	require.Eventually(t, func() bool {
		return len(f.fake.RequestsTo(backend.PathPredictCrop)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// the dashboard's 401 tears the session down first
	resp, _ := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteLogin, resp.Header.Get("Location"))

	release()
	res := awaitPage(t, crop)
	require.Equal(t, http.StatusSeeOther, res.resp.StatusCode)
	require.Equal(t, server.RouteLogin, res.resp.Header.Get("Location"))
	require.NotContains(t, res.body, "Could not validate credentials")
}

func cropForm(rainfall string) url.Values {
	return url.Values{
		"nitrogen":    {"90"},
		"phosphorus":  {"42"},
		"potassium":   {"43"},
		"temperature": {"26"},
		"humidity":    {"82"},
		"ph":          {"6.5"},
		"rainfall":    {rainfall},
	}
}

func TestCropRecommendation(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := f.postForm(t, server.RouteCropRecommendation, cropForm("240"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Recommended crop: rice")
	require.Contains(t, body, "91%")
}

func TestCropRecommendationInvalidInput(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	form := cropForm("240")
	form.Set("nitrogen", "lots")
	resp, body := f.postForm(t, server.RouteCropRecommendation, form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Please enter a number for every field")
	require.Empty(t, f.fake.RequestsTo(backend.PathPredictCrop))
}

func TestCropRecommendationBackendDetail(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	form := cropForm("240")
	form.Set("ph", "15")
	resp, body := f.postForm(t, server.RouteCropRecommendation, form)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "pH must be between 0 and 14")
}

func TestIrrigationScheduler(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := f.postForm(t, server.RouteIrrigationScheduler, url.Values{
		"crop_type":     {"wheat"},
		"crop_stage":    {"development"},
		"soil_moisture": {"20"},
		"temperature":   {"30"},
		"humidity":      {"40"},
		"rainfall":      {"0"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Irrigation needed")
	require.Contains(t, body, "25.5 mm")
}

func TestPredictionServiceUnavailable(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)
	f.fake.SetUnavailable(backend.PathIrrigation, true)

	_, body := f.postForm(t, server.RouteIrrigationScheduler, url.Values{
		"crop_type":     {"wheat"},
		"soil_moisture": {"20"},
		"temperature":   {"30"},
		"humidity":      {"40"},
		"rainfall":      {"0"},
	})
	require.Contains(t, body, "Service is not available. Model not loaded.")
}

func uploadImage(t *testing.T, f *testFixture, path, filename string) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("\xff\xd8\xff\xe0 not really a jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := f.client.Post(f.server.URL+path, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func TestDiseaseDetection(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := uploadImage(t, f, server.RouteDiseaseDetection, "leaf.jpg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Tomato Early Blight")
	require.Contains(t, body, "88%")
}

func TestPestControlRejectsNonImage(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := uploadImage(t, f, server.RoutePestControl, "notes.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "File must be an image")
}

func TestPestControl(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	resp, body := uploadImage(t, f, server.RoutePestControl, "leaf.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Apply neem oil")
	require.Contains(t, body, "2-3 weeks")
}

func TestPublicPages(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	for _, path := range []string{"/", server.RouteAbout, server.RouteLogin, server.RouteRegister,
		server.RouteCropRecommendation, server.RouteIrrigationScheduler, server.RouteDiseaseDetection, server.RoutePestControl} {
		t.Run(path, func(t *testing.T) {
			resp, body := f.get(t, path)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
			require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
			require.Contains(t, body, "Mitti Mantra")
		})
	}
}

func TestIndexShowsBackendHealth(t *testing.T) {
	f := setupTestFixture(t, "")
	f.initialize(t)

	_, body := f.get(t, "/")
	require.Contains(t, body, "Mittimantra backend running")

	f.fake.SetUnavailable(backend.PathHealth, true)
	_, body = f.get(t, "/")
	require.Contains(t, body, "Prediction service is unreachable")
}

func TestHealthz(t *testing.T) {
	f := setupTestFixture(t, "")

	resp, body := f.get(t, server.RouteHealthz)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, "ok", payload["status"])
	require.Equal(t, string(session.StatusUnknown), payload["session"])
}

func TestStaticCSS(t *testing.T) {
	f := setupTestFixture(t, "")

	resp, body := f.get(t, "/css/app.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/css"))
	require.Contains(t, body, ".navbar")

	resp, _ = f.get(t, "/css/missing.css")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
