package prompt

import (
	"fmt"
	"strings"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// maxSourceLines keeps the user message inside the model context window.
const maxSourceLines = 400

// GetSystemPrompt provides strict directions so fixes can be applied line by line.
func GetSystemPrompt() string {
	return `You are a senior application security analyst reviewing a single source file.
For every vulnerability, explain the risk in one or two sentences and then give the fix.

Requirements:
- Refer to lines by their 1-based number exactly as "line N".
- After the line reference write "recommended fix:" followed by the complete replacement line wrapped in single backticks.
- The replacement must be one full line of code, never a multi-line block and never a diff.
- Do not use code fences.

Example:
On line 12 eval() runs user input. recommended fix: ` + "`result = ast.literal_eval(user_input)`"
}

// GetUserPrompt builds the user message: findings first, then numbered source.
func GetUserPrompt(file analysis.FileAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\nFindings:\n", file.FileName())
	for _, f := range file.Findings {
		fmt.Fprintf(&b, "- [%s] %s", f.Severity, f.Description)
		if len(f.AffectedLines) > 0 {
			fmt.Fprintf(&b, " (lines %s)", joinInts(f.AffectedLines))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nSource:\n")
	for i, line := range file.OriginalSource {
		if i == maxSourceLines {
			fmt.Fprintf(&b, "... %d more lines truncated\n", len(file.OriginalSource)-maxSourceLines)
			break
		}
		fmt.Fprintf(&b, "%d: %s\n", i+1, line)
	}
	return b.String()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
