package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheet_ai_server/internal/output"
)

func TestGenerateCommandWritesWorkbook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"sheets\":[{\"name\":\"Budget\",\"headers\":[\"Income\",\"Expenses\"],\"rows\":[[1000,500],[200,150]]}]}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL)
	outDir := t.TempDir()

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"generate", "--config", t.TempDir(), "--out", outDir, "Create a budget sheet"})
	require.NoError(t, rootCmd.Execute())

	path := strings.TrimSpace(stdout.String())
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.Regexp(t, output.NamePattern, filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Budget"}, f.GetSheetList())
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")
	configPath = t.TempDir()
	t.Cleanup(func() { configPath = "." })

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
