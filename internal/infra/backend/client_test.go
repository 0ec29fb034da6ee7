package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

func jsonHandler(status int, body string, inspect func(r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestSubmitSendsInlineSource(t *testing.T) {
	var got map[string]any
	var path, method string
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"scan_id":"abc"}`, func(r *http.Request) {
		path, method = r.URL.Path, r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, nil)
	id, err := c.Submit(context.Background(), analysis.ScanRequest{
		InlineSource: "print(1)",
		Language:     analysis.LanguagePython,
	})
	require.NoError(t, err)
	assert.Equal(t, analysis.ScanID("abc"), id)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/scan", path)

	assert.Nil(t, got["repo_url"])
	assert.Equal(t, "print(1)", got["code"])
	assert.Equal(t, "python", got["language"])
	assert.Equal(t, false, got["check_dependencies"])
}

func TestSubmitSendsRepository(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"scan_id":"r1"}`, func(r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, nil).Submit(context.Background(), analysis.ScanRequest{
		RepositoryURL:     "https://github.com/acme/app",
		Language:          analysis.LanguageJavaScript,
		CheckDependencies: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/app", got["repo_url"])
	assert.Nil(t, got["code"])
	assert.Equal(t, true, got["check_dependencies"])
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		protocol  bool
		code      int
		retryable bool
		message   string
	}{
		{name: "missing scan id", status: http.StatusOK, body: `{}`, protocol: true},
		{name: "blank scan id", status: http.StatusOK, body: `{"scan_id":"  "}`, protocol: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, code: 500, retryable: true, message: "boom"},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"Invalid language"}`, code: 400, message: "Invalid language"},
		{name: "no error body", status: http.StatusBadGateway, body: `{}`, code: 502, retryable: true, message: "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(tt.status, tt.body, nil))
			defer srv.Close()

			_, err := New(srv.URL, time.Second, nil).Submit(context.Background(), analysis.ScanRequest{
				InlineSource: "x = 1",
				Language:     analysis.LanguagePython,
			})
			require.Error(t, err)
			if tt.protocol {
				var pe *analysis.ProtocolError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "scan_id", pe.Field)
				return
			}
			var te *analysis.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.code, te.StatusCode)
			assert.Equal(t, tt.retryable, te.Retryable())
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{}`, nil))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second, nil).Submit(context.Background(), analysis.ScanRequest{
		InlineSource: "x = 1",
		Language:     analysis.LanguagePython,
	})
	var te *analysis.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.True(t, analysis.IsRetryable(err))
}

func TestPollMapsCompletedResults(t *testing.T) {
	body := `{
		"status": "completed",
		"progress": 99.6,
		"message": "done",
		"results": {
			"code_analysis": [{
				"file": "repo/src/app.py",
				"original_code": "import os\nKEY = 'x'\nprint(KEY)",
				"static_analysis": {"vulnerabilities": [
					{"severity": "HIGH", "description": "hardcoded secret", "line_numbers": [2]},
					{"severity": "low", "description": "single line", "line_number": 3},
					{"severity": "medium", "description": "empty list wins", "line_numbers": [], "line_number": 1}
				]},
				"ai_analysis": "On line 2 the recommended fix is ` + "`KEY = os.environ[\\\"KEY\\\"]`" + `"
			}],
			"dependency_vulnerabilities": [{
				"package": "requests", "version": "2.0.0",
				"vulnerabilities": [{"cve_id": "CVE-2018-18074", "severity": "critical", "description": "leak"}]
			}],
			"summary": {"total_files_analyzed": 1, "total_vulnerabilities": 3, "high_vulnerabilities": 1, "medium_vulnerabilities": 1, "low_vulnerabilities": 1}
		}
	}`
	var path string
	srv := httptest.NewServer(jsonHandler(http.StatusOK, body, func(r *http.Request) { path = r.URL.Path }))
	defer srv.Close()

	resp, err := New(srv.URL, time.Second, nil).Poll(context.Background(), "job-7")
	require.NoError(t, err)
	assert.Equal(t, "/api/scan/job-7", path)

	assert.Equal(t, analysis.ScanJob{ID: "job-7", Status: analysis.JobCompleted, Progress: 100, Message: "done"}, resp.Job)
	require.NotNil(t, resp.Results)
	require.Len(t, resp.Results.Files, 1)

	f := resp.Results.Files[0]
	assert.Equal(t, "app.py", f.FileName())
	assert.Equal(t, []string{"import os", "KEY = 'x'", "print(KEY)"}, f.OriginalSource)
	require.Len(t, f.Findings, 3)
	assert.Equal(t, analysis.Finding{Severity: analysis.SeverityHigh, Description: "hardcoded secret", AffectedLines: []int{2}}, f.Findings[0])
	assert.Equal(t, []int{3}, f.Findings[1].AffectedLines)
	assert.Empty(t, f.Findings[2].AffectedLines)
	assert.Equal(t, "On line 2 the recommended fix is `KEY = os.environ[\"KEY\"]`", f.Narrative)

	require.Len(t, resp.Results.Dependencies, 1)
	assert.Equal(t, analysis.SeverityCritical, resp.Results.Dependencies[0].Vulnerabilities[0].Severity)
	require.NotNil(t, resp.Results.Summary)
	assert.Equal(t, 3, resp.Results.Summary.Total)
	assert.Equal(t, 1, resp.Results.Summary.TotalFilesAnalyzed)
}

func TestPollRunningWithoutResults(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":"running","progress":40,"message":"Analyzing"}`, nil))
	defer srv.Close()

	resp, err := New(srv.URL, time.Second, nil).Poll(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, analysis.JobRunning, resp.Job.Status)
	assert.Equal(t, 40, resp.Job.Progress)
	assert.Nil(t, resp.Results)
}

func TestPollErrorStatus(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":"error","message":"clone failed"}`, nil))
	defer srv.Close()

	resp, err := New(srv.URL, time.Second, nil).Poll(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, analysis.JobFailed, resp.Job.Status)
	assert.Equal(t, "clone failed", resp.Job.Message)
}

func TestPollMissingStatus(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"progress":10}`, nil))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, nil).Poll(context.Background(), "job-1")
	var pe *analysis.ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "status", pe.Field)
}

func TestPollNotFound(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusNotFound, `{"error":"Scan not found"}`, nil))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, nil).Poll(context.Background(), "gone")
	var te *analysis.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
	assert.False(t, te.Retryable())
	assert.Contains(t, err.Error(), "Scan not found")
}

func TestPollHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, 5*time.Second, nil).Poll(ctx, "job-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMalformedBodies(t *testing.T) {
	t.Run("2xx poll body is a protocol error", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"status": "running",`, nil))
		defer srv.Close()

		_, err := New(srv.URL, time.Second, nil).Poll(context.Background(), "job-1")
		var pe *analysis.ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "body", pe.Field)
		assert.Error(t, pe.Err)
		assert.False(t, analysis.IsRetryable(err))
	})

	t.Run("2xx submit body is a protocol error", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"scan_id": `, nil))
		defer srv.Close()

		_, err := New(srv.URL, time.Second, nil).Submit(context.Background(), analysis.ScanRequest{
			InlineSource: "x = 1",
			Language:     analysis.LanguagePython,
		})
		var pe *analysis.ProtocolError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "body", pe.Field)
	})

	t.Run("5xx body stays a retryable transport error", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(http.StatusServiceUnavailable, `{oops`, nil))
		defer srv.Close()

		_, err := New(srv.URL, time.Second, nil).Poll(context.Background(), "job-1")
		var te *analysis.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
		assert.True(t, te.Retryable())
	})
}
