package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

func TestValidateLanguage(t *testing.T) {
	l, err := ValidateLanguage("")
	require.NoError(t, err)
	assert.Equal(t, analysis.LanguagePython, l)

	l, err = ValidateLanguage(" JavaScript ")
	require.NoError(t, err)
	assert.Equal(t, analysis.LanguageJavaScript, l)

	_, err = ValidateLanguage("cobol")
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://github.com/acme/app", true},
		{"http://gitlab.example.com/group/repo.git", true},
		{"", false},
		{"ftp://github.com/acme/app", false},
		{"https://localhost/repo", false},
		{"http://192.168.1.4/repo", false},
		{"http://10.0.0.8/repo", false},
		{"http://172.16.0.1/repo", false},
		{"http://172.20.5.5/repo", false},
		{"http://172.31.255.254/repo", false},
		{"http://172.32.0.1/repo", true},
		{"http://127.0.0.2/repo", false},
		{"http://0.0.0.0/repo", false},
		{"http://169.254.169.254/latest", false},
		{"http://[::1]/repo", false},
		{"http://[fd00::1]/repo", false},
		{"http://api.localhost/repo", false},
		{"http://8.8.8.8/repo", true},
		{"https:///nohost", false},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if tt.ok {
			assert.NoError(t, err, tt.url)
		} else {
			assert.Error(t, err, tt.url)
		}
	}
}

func TestValidateFileName(t *testing.T) {
	assert.NoError(t, ValidateFileName("app.py"))
	assert.NoError(t, ValidateFileName("my file.js"))
	assert.Error(t, ValidateFileName(""))
	assert.Error(t, ValidateFileName("src/app.py"))
	assert.Error(t, ValidateFileName(`src\app.py`))
	assert.Error(t, ValidateFileName(".."))
}

func TestValidateScanID(t *testing.T) {
	assert.NoError(t, ValidateScanID("3f2a9c1e-aaaa"))
	assert.Error(t, ValidateScanID(""))
	assert.Error(t, ValidateScanID("a/b"))
}

func TestSanitizeAndLimits(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString(" a\x00b\x07c "))
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 5, ValidateLimit(5))
	assert.Equal(t, 1, ValidatePage(-3))
	assert.Equal(t, 4, ValidatePage(4))
}
