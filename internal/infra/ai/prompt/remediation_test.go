package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/remediation"
)

func TestSystemPromptExampleIsExtractable(t *testing.T) {
	dirs := remediation.ExtractDirectives(GetSystemPrompt())
	assert.Equal(t, []analysis.CorrectionDirective{{TargetLine: 12, Replacement: "result = ast.literal_eval(user_input)"}}, dirs)
}

func TestUserPromptNumbersLines(t *testing.T) {
	msg := GetUserPrompt(analysis.FileAnalysis{
		FilePath:       "src/app.py",
		OriginalSource: []string{"import os", "eval(x)"},
		Findings: []analysis.Finding{
			{Severity: analysis.SeverityCritical, Description: "Use of eval", AffectedLines: []int{2, 5}},
			{Severity: analysis.SeverityLow, Description: "No lines"},
		},
	})
	assert.Contains(t, msg, "File: app.py")
	assert.Contains(t, msg, "- [Critical] Use of eval (lines 2, 5)\n")
	assert.Contains(t, msg, "- [Low] No lines\n")
	assert.Contains(t, msg, "1: import os\n2: eval(x)\n")
}

func TestUserPromptTruncatesLongFiles(t *testing.T) {
	lines := make([]string, maxSourceLines+10)
	for i := range lines {
		lines[i] = "x = 1"
	}
	msg := GetUserPrompt(analysis.FileAnalysis{FilePath: "big.py", OriginalSource: lines})
	assert.Contains(t, msg, "... 10 more lines truncated")
	assert.Equal(t, maxSourceLines, strings.Count(msg, ": x = 1\n"))
}
