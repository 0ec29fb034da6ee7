package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"scan/app.py":       "text/x-python",
		"scan/index.js":     "text/javascript",
		"scan/report.sarif": "application/json",
		"scan/data.json":    "application/json",
		"scan/config.yaml":  "text/plain; charset=utf-8",
		"scan/Makefile":     "text/plain; charset=utf-8",
	}
	for key, want := range tests {
		t.Run(key, func(t *testing.T) {
			assert.Equal(t, want, ContentType(key))
		})
	}
}
