package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

const completedBody = `{
	"status": "completed",
	"progress": 100,
	"results": {
		"code_analysis": [{
			"file": "app.py",
			"original_code": "import os\npassword = 'hunter2'\nprint(password)",
			"static_analysis": {"vulnerabilities": [{"severity": "high", "description": "hardcoded password", "line_numbers": [2]}]},
			"ai_analysis": ""
		}],
		"dependency_vulnerabilities": [{"package": "flask", "version": "0.12", "vulnerabilities": [{"cve_id": "CVE-2018-1000656", "severity": "high", "description": "dos"}]}],
		"summary": {"total_files_analyzed": 1, "total_vulnerabilities": 1, "high_vulnerabilities": 1}
	}
}`

func fakeBackend(t *testing.T, pollBody string) (*httptest.Server, *map[string]any) {
	t.Helper()
	submitted := map[string]any{}
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/scan":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
			_, _ = io.WriteString(w, `{"scan_id":"cli-1"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/scan/cli-1":
			if atomic.AddInt32(&polls, 1) == 1 {
				_, _ = io.WriteString(w, `{"status":"running","progress":50,"message":"Analyzing"}`)
				return
			}
			_, _ = io.WriteString(w, pollBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &submitted
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestScanFilePrintsFindingsAndFixes(t *testing.T) {
	srv, submitted := fakeBackend(t, completedBody)
	dir := t.TempDir()
	src := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(src, []byte("import os\npassword = 'hunter2'\nprint(password)"), 0o600))
	sarifPath := filepath.Join(dir, "out.sarif")

	out, errOut, err := execute(t, "scan",
		"--backend", srv.URL,
		"--file", src,
		"--deps",
		"--poll-interval", "1ms",
		"--show-fixes",
		"--sarif", sarifPath,
	)
	require.NoError(t, err, errOut)

	assert.Equal(t, "python", (*submitted)["language"])
	assert.Equal(t, true, (*submitted)["check_dependencies"])
	assert.Nil(t, (*submitted)["repo_url"])

	assert.Contains(t, errOut, "[polling] 50% Analyzing")
	assert.Contains(t, out, "app.py [High] hardcoded password (line 2)")
	assert.Contains(t, out, "CVE-2018-1000656")
	assert.Contains(t, out, "--- app.py (suggested fixes)")
	assert.Contains(t, out, "    2 - password = 'hunter2'")
	assert.Contains(t, out, "    2 + # SECURITY: Use environment variables or secure storage for credentials")

	data, err := os.ReadFile(sarifPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sca/hardcoded-password")
}

func TestScanReportsBackendFailure(t *testing.T) {
	srv, _ := fakeBackend(t, `{"status":"error","message":"clone failed"}`)
	_, _, err := execute(t, "scan", "--backend", srv.URL, "--repo", "https://github.com/acme/app", "--poll-interval", "1ms")
	require.Error(t, err)
	var sf *analysis.ScanFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "clone failed", sf.Message)
}

func TestScanRejectsMissingSource(t *testing.T) {
	_, _, err := execute(t, "scan", "--backend", "http://127.0.0.1:1")
	var se *analysis.SubmissionError
	assert.ErrorAs(t, err, &se)
}

func TestScanFlagsMutuallyExclusive(t *testing.T) {
	_, _, err := execute(t, "scan", "--repo", "https://github.com/a/b", "--code", "x = 1")
	assert.Error(t, err)
}

func TestLanguageFor(t *testing.T) {
	assert.Equal(t, analysis.LanguageJavaScript, languageFor("src/index.JS"))
	assert.Equal(t, analysis.LanguageJavaScript, languageFor("web/app.tsx"))
	assert.Equal(t, analysis.LanguagePython, languageFor("main.py"))
	assert.Equal(t, analysis.LanguagePython, languageFor("Makefile"))
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "scanctl dev")
}
