package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassista/mkdoc/internal/status"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newPreviewRouter(pc *PreviewController) *gin.Engine {
	r := gin.New()
	r.GET("/", pc.Page)
	r.GET("/status", pc.Status)
	return r
}

func TestPreviewController_Page(t *testing.T) {
	out := filepath.Join(t.TempDir(), "notes.html")
	require.NoError(t, os.WriteFile(out, []byte("<html><body><h1>Title</h1></body></html>"), 0o644))

	pc := NewPreviewController(status.NewStore("notes.md", out), out)
	w := httptest.NewRecorder()
	newPreviewRouter(pc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html><body><h1>Title</h1></body></html>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestPreviewController_PageNotRenderedYet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "notes.html")

	pc := NewPreviewController(status.NewStore("notes.md", out), out)
	w := httptest.NewRecorder()
	newPreviewRouter(pc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "output not rendered yet", body["error"])
}

func TestPreviewController_PageIsDirectory(t *testing.T) {
	dir := t.TempDir()

	pc := NewPreviewController(status.NewStore("notes.md", dir), dir)
	w := httptest.NewRecorder()
	newPreviewRouter(pc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPreviewController_Status(t *testing.T) {
	store := status.NewStore("notes.md", "notes.html")
	store.SetWatching(true)
	store.RecordRender("a9993e364706816aba3e25717850c26c9cd0d89d", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	store.RecordError(errors.New("stat source: permission denied"))

	pc := NewPreviewController(store, "notes.html")
	w := httptest.NewRecorder()
	newPreviewRouter(pc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var snap status.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "notes.md", snap.Input)
	assert.Equal(t, "notes.html", snap.Output)
	assert.True(t, snap.Watching)
	assert.Equal(t, 1, snap.Renders)
	assert.Equal(t, 1, snap.Errors)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", snap.LastDigest)
	assert.Equal(t, "stat source: permission denied", snap.LastError)
}
