package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CageChen/filedesk/internal/files"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isMarkdown(name string) bool {
	return strings.HasSuffix(name, ".md")
}

func newTestRouter(t *testing.T) (*gin.Engine, *files.Manager) {
	t.Helper()

	m, err := files.New(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)
	return NewRouter(RouterOptions{Files: m, IsMarkdown: isMarkdown}), m
}

func do(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestFileLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/files/a.txt", "x")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assertCORS(t, w)
	body := decode(t, w)
	assert.Equal(t, "a.txt", body["filename"])
	assert.Equal(t, "File 'a.txt' created successfully", body["message"])

	w = do(t, r, http.MethodGet, "/files/a.txt", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "x", body["content"])
	assert.Equal(t, "a.txt", body["filename"])
	assert.Equal(t, "File 'a.txt' read successfully", body["message"])

	w = do(t, r, http.MethodDelete, "/files/a.txt", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "File 'a.txt' deleted successfully", decode(t, w)["message"])

	w = do(t, r, http.MethodGet, "/files/a.txt", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "File 'a.txt' not found", decode(t, w)["error"])
}

func TestCreate_Conflict(t *testing.T) {
	r, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/files/a.txt", "one").Code)

	w := do(t, r, http.MethodPost, "/files/a.txt", "two")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File 'a.txt' already exists", decode(t, w)["error"])
}

func TestCreate_EmptyBody(t *testing.T) {
	r, m := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/files/empty.txt", "")
	require.Equal(t, http.StatusCreated, w.Code)

	res := m.Read("empty.txt")
	require.True(t, res.Success)
	assert.Equal(t, "", res.Content)
}

func TestDelete_Missing(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodDelete, "/files/ghost.txt", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w)["error"], "not found")
}

func TestList(t *testing.T) {
	r, m := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/files", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["files"])

	require.True(t, m.Create("a.txt", "alpha").Success)
	require.True(t, m.Create("b.txt", "be").Success)

	w = do(t, r, http.MethodGet, "/files", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Files []files.FileEntry `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Files, 2)

	sizes := map[string]int64{}
	for _, f := range body.Files {
		sizes[f.Name] = f.Size
		assert.False(t, f.IsDirectory)
		assert.False(t, f.Modified.IsZero())
	}
	assert.Equal(t, map[string]int64{"a.txt": 5, "b.txt": 2}, sizes)
	assert.Contains(t, w.Body.String(), `"isDirectory": false`)
	assert.Regexp(t, `"modified": "\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z"`, w.Body.String())
}

func TestList_Failure(t *testing.T) {
	r, m := newTestRouter(t)
	require.NoError(t, os.RemoveAll(m.BaseDir()))

	w := do(t, r, http.MethodGet, "/files", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Error listing files")
}

func TestMissingFilename(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		w := do(t, r, method, "/files/", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, method)
		assert.Equal(t, "Filename is required", decode(t, w)["error"], method)
	}
}

func TestTraversalRejected(t *testing.T) {
	r, m := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/files/..%2Fescape.txt", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, err := os.Stat(filepath.Join(filepath.Dir(m.BaseDir()), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestNestedName(t *testing.T) {
	r, m := newTestRouter(t)
	require.NoError(t, os.Mkdir(filepath.Join(m.BaseDir(), "docs"), 0o755))

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/files/docs/a.txt", "nested").Code)

	w := do(t, r, http.MethodGet, "/files/docs/a.txt", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs/a.txt", decode(t, w)["filename"])
}

func TestOptionsPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, target := range []string{"/anything", "/files", "/files/a.txt"} {
		w := do(t, r, http.MethodOptions, target, "")
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Empty(t, w.Body.String(), target)
		assertCORS(t, w)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPut, "/files/a.txt", "x")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decode(t, w)["error"])
	assertCORS(t, w)
}

func TestUnknownEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Endpoint not found", decode(t, w)["error"])
	assertCORS(t, w)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := do(t, r, method, "/files", "x")
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "Endpoint not found", decode(t, w)["error"], method)
	}
}

func TestCreate_TrailingSeparator(t *testing.T) {
	r, m := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/files/a.txt/", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoFileExists(t, filepath.Join(m.BaseDir(), "a.txt"))
}

func TestRequestID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/files", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestPreview(t *testing.T) {
	r, m := newTestRouter(t)
	require.True(t, m.Create("notes.md", "# Notes\n\n## Todo\n").Success)
	require.True(t, m.Create("data.json", "{}").Success)

	w := do(t, r, http.MethodGet, "/preview/notes.md", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Notes", body["title"])
	assert.Contains(t, body["html"], "<h2")
	assert.Len(t, body["toc"], 2)

	w = do(t, r, http.MethodGet, "/preview/data.json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/preview/missing.md", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
