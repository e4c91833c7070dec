package board

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedServer(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	app := newTestApp(t, sampleFeed, testConfig)
	require.NoError(t, app.Controller.Start(context.Background()))
	srv := httptest.NewServer(NewServer(app).Handler())
	t.Cleanup(srv.Close)
	return app, srv
}

func noRedirect(srv *httptest.Server) *http.Client {
	c := srv.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

func getBody(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestServerIndex(t *testing.T) {
	_, srv := startedServer(t)

	resp, body := getBody(t, srv, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, body, "acme/board projects")
	assert.Contains(t, body, `data-id="1"`)
	assert.Contains(t, body, `data-id="P-2"`)
}

func TestServerIndexQueryFilters(t *testing.T) {
	app, srv := startedServer(t)

	_, body := getBody(t, srv, "/?status=In+Progress")
	assert.Contains(t, body, `data-id="P-2"`)
	assert.NotContains(t, body, `data-id="1"`)
	// html/template escapes the plus in attribute values.
	assert.Contains(t, body, `class="filter-btn active" href="/?status=In&#43;Progress"`)

	_, body = getBody(t, srv, "/?q=nothing-matches-this")
	assert.Contains(t, body, MessageNoMatches)

	// Request filters never leak into shared state.
	assert.Equal(t, AllStatuses, app.Controller.Snapshot().StatusFilter)
	assert.Empty(t, app.Controller.Snapshot().SearchTerm)
}

func TestServerReloadRedirectPreservesQuery(t *testing.T) {
	app, srv := startedServer(t)
	writeTestFile(t, app.Root+"/data/projects.json", `[{"id": 9, "title": "Fresh", "status": "Open"}]`)

	form := url.Values{"status": {"Open"}, "q": {"fre"}}
	resp, err := noRedirect(srv).PostForm(srv.URL+"/reload", form)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?q=fre&status=Open", resp.Header.Get("Location"))
	assert.Equal(t, 2, app.Controller.Snapshot().Loads)
	require.Len(t, app.Controller.Snapshot().Projects, 1)
}

func TestServerReloadAjax(t *testing.T) {
	_, srv := startedServer(t)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/reload", nil)
	require.NoError(t, err)
	req.Header.Set(AjaxHeader, "1")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestServerReloadFailureShowsError(t *testing.T) {
	app, srv := startedServer(t)
	writeTestFile(t, app.Root+"/data/projects.json", "<html>oops</html>")

	resp, err := noRedirect(srv).PostForm(srv.URL+"/reload", nil)
	require.NoError(t, err)
	resp.Body.Close()

	_, body := getBody(t, srv, "/")
	assert.Contains(t, body, "Error loading data: Expected JSON but received HTML.")
	// The previous collection is still held for the next successful render.
	assert.Len(t, app.Controller.Snapshot().Projects, 3)

	resp, _ = getBody(t, srv, "/api/projects")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestServerAPIProjects(t *testing.T) {
	_, srv := startedServer(t)

	resp, body := getBody(t, srv, "/api/projects?status=Open")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Phase  string `json:"phase"`
			Status string `json:"status"`
			Total  int    `json:"total"`
			Cards  []struct {
				ID     string `json:"id"`
				Kind   string `json:"kind"`
				SignUp struct {
					URL     string `json:"url"`
					Enabled bool   `json:"enabled"`
				} `json:"signup"`
			} `json:"cards"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "loaded", env.Data.Phase)
	assert.Equal(t, "Open", env.Data.Status)
	assert.Equal(t, 3, env.Data.Total)
	require.Len(t, env.Data.Cards, 1)
	assert.Equal(t, "1", env.Data.Cards[0].ID)
	assert.Equal(t, "open", env.Data.Cards[0].Kind)
	assert.True(t, env.Data.Cards[0].SignUp.Enabled)
	assert.True(t, strings.HasPrefix(env.Data.Cards[0].SignUp.URL, "https://github.com/acme/board/issues/new?"))
}

func TestServerAPILinks(t *testing.T) {
	app, srv := startedServer(t)

	resp, body := getBody(t, srv, "/api/projects/P-2/links")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env struct {
		Success bool         `json:"success"`
		Data    linksPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	p, ok := app.Find("P-2")
	require.True(t, ok)
	assert.Equal(t, app.Renderer.Links().SignUpURL(p), env.Data.SignUp)
	assert.Equal(t, app.Renderer.Links().StatusChangeURL(p), env.Data.StatusChange)

	resp, body = getBody(t, srv, "/api/projects/nope/links")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"success":false`)
}

func TestServerHealth(t *testing.T) {
	_, srv := startedServer(t)
	resp, body := getBody(t, srv, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestDashboardURL(t *testing.T) {
	assert.Equal(t, "/", dashboardURL("", ""))
	assert.Equal(t, "/?status=Done", dashboardURL("Done", ""))
	assert.Equal(t, "/?q=a+b&status=In+Progress", dashboardURL("In Progress", "a b"))
}
