package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sheet_ai_server/internal/output"
	"sheet_ai_server/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fixedRenderer returns the same file for every payload without writing anything.
type fixedRenderer struct {
	file *output.File
}

func (r fixedRenderer) Render(*types.GenerationPayload) (*output.File, error) {
	return r.file, nil
}

type recordingJanitor struct {
	mu    sync.Mutex
	paths []string
}

func (j *recordingJanitor) ScheduleRemoval(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.paths = append(j.paths, path)
}

func (j *recordingJanitor) scheduled() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.paths...)
}

// resetWriter accepts headers but fails every body write, like a client that hung up.
type resetWriter struct {
	header http.Header
	status int
}

func (w *resetWriter) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}
	return w.header
}

func (w *resetWriter) WriteHeader(status int) { w.status = status }

func (w *resetWriter) Write([]byte) (int, error) {
	return 0, errors.New("write: connection reset by peer")
}

func TestStreamErrorAfterCommitIsLoggedAndFileStillCleanedUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet-1700000000000-abcDEF.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook bytes"), 0o644))

	core, logs := observer.New(zap.InfoLevel)
	janitor := &recordingJanitor{}
	gen := &fakeGenerator{fn: staticPayload(budgetJSON)}
	renderer := fixedRenderer{file: &output.File{Name: filepath.Base(path), Path: path}}
	h := NewAPIHandler(NewPipeline(gen, renderer), janitor, zap.New(core))

	w := &resetWriter{}
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"budget"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.GenerateSpreadsheet(c)

	assert.Equal(t, http.StatusOK, w.status, "headers were already committed")
	assert.Equal(t, 1, logs.FilterMessage("Download error").Len())
	assert.Zero(t, logs.FilterMessage("Spreadsheet delivered").Len())
	assert.Equal(t, []string{path}, janitor.scheduled())
}

func TestMissingRenderedFileGoesThroughErrorResponder(t *testing.T) {
	logger := zap.NewNop()
	missing := filepath.Join(t.TempDir(), "sheet-1700000000000-abcDEF.xlsx")
	janitor := &recordingJanitor{}
	renderer := fixedRenderer{file: &output.File{Name: filepath.Base(missing), Path: missing}}
	h := NewAPIHandler(NewPipeline(&fakeGenerator{fn: staticPayload(budgetJSON)}, renderer), janitor, logger)
	router := NewRouter(h, RouterOptions{MaxBodyBytes: 1 << 20}, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"budget"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, msgGenerationError, resp.Error)
	assert.Contains(t, resp.Details, "failed to open rendered file")
	assert.Equal(t, []string{missing}, janitor.scheduled())
}
