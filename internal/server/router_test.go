package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/loykin/solarctl/internal/controller"
	"github.com/loykin/solarctl/internal/registry"
)

type stubStarter struct{ pid int }

func (s *stubStarter) Start(path string, args []string) (int, error) {
	s.pid++
	return s.pid, nil
}

type aliveProber struct{}

func (aliveProber) Alive(int) bool { return true }

func testRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctl := controller.New(controller.WithRegistry(
		registry.New(registry.WithStarter(&stubStarter{}), registry.WithProber(aliveProber{})),
	))
	return NewRouter(ctl, "/api")
}

var projSeq atomic.Int64

// testProjectDir gives each project a unique directory name so slugs (and
// the artifact files derived from them) never collide across parallel
// packages.
func testProjectDir(t *testing.T) string {
	t.Helper()
	name := fmt.Sprintf("%s-%d", strings.ReplaceAll(t.Name(), "/", "_"), projSeq.Add(1))
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte("print('hi')\n"), 0o644))
	t.Cleanup(func() {
		_ = os.Remove(filepath.Join(os.TempDir(), "solar2d_control_"+name+".json"))
	})
	return dir
}

func doJSON(t *testing.T, h http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInstancesEmpty(t *testing.T) {
	h := testRouter(t).Handler()
	w := doJSON(t, h, http.MethodGet, "/api/instances", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRunAndList(t *testing.T) {
	h := testRouter(t).Handler()
	dir := testProjectDir(t)

	w := doJSON(t, h, http.MethodPost, "/api/run", map[string]any{
		"path":      dir,
		"simulator": "/opt/sim/solar2d",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Instance struct {
			PID    int    `json:"pid"`
			Status string `json:"status"`
		} `json:"instance"`
		LogPath string `json:"log_path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 1, res.Instance.PID)
	require.NotEmpty(t, res.LogPath)

	w = doJSON(t, h, http.MethodGet, "/api/instances", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestRunRejectsRelativePath(t *testing.T) {
	h := testRouter(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/api/run", map[string]any{"path": "relative/dir"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunMissingProjectIs404(t *testing.T) {
	h := testRouter(t).Handler()
	w := doJSON(t, h, http.MethodPost, "/api/run", map[string]any{
		"path":      filepath.Join(t.TempDir(), "void"),
		"simulator": "/opt/sim/solar2d",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogsRequiresPath(t *testing.T) {
	h := testRouter(t).Handler()
	w := doJSON(t, h, http.MethodGet, "/api/logs", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTapInvalidCoordinates(t *testing.T) {
	h := testRouter(t).Handler()
	dir := testProjectDir(t)

	w := doJSON(t, h, http.MethodPost, "/api/tap", map[string]any{
		"path": dir, "left": 50.0, "right": 50.0, "top": 0.0, "bottom": 10.0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTapReturnsCenter(t *testing.T) {
	h := testRouter(t).Handler()
	dir := testProjectDir(t)

	w := doJSON(t, h, http.MethodPost, "/api/tap", map[string]any{
		"path": dir, "left": 30.0, "right": 50.0, "top": 60.0, "bottom": 70.0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res tapResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 40.0, res.CenterX)
	require.Equal(t, 65.0, res.CenterY)
}

func TestScreenshotsBadSelector(t *testing.T) {
	h := testRouter(t).Handler()
	dir := testProjectDir(t)

	w := doJSON(t, h, http.MethodGet, "/api/screenshots?path="+dir+"&selector=bogus", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisplayWithoutRuntimeIs404(t *testing.T) {
	h := testRouter(t).Handler()
	dir := testProjectDir(t)

	w := doJSON(t, h, http.MethodGet, "/api/display?path="+dir, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := testRouter(t).Handler()
	w := doJSON(t, h, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeBase(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"/":     "",
		"api":   "/api",
		"/api":  "/api",
		"/api/": "/api",
	}
	for in, want := range cases {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}
