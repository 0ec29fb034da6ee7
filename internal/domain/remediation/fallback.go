package remediation

import (
	"path"
	"strings"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

type template struct {
	keyword string
	advice  string
}

// Checked in order; the first keyword contained in a description wins.
var templates = []template{
	{keyword: "eval", advice: "SECURITY: Use a safer alternative to eval()"},
	{keyword: "command injection", advice: "SECURITY: Use parameterized commands or input validation"},
	{keyword: "hardcoded", advice: "SECURITY: Use environment variables or secure storage for credentials"},
	{keyword: "file", advice: "SECURITY: Validate file paths and implement proper access controls"},
}

// FallbackDirectives emits a canned remediation comment for every affected
// line of every finding whose description names a known weakness.
func FallbackDirectives(fileName string, findings []analysis.Finding) []analysis.CorrectionDirective {
	prefix := CommentPrefix(fileName)
	var out []analysis.CorrectionDirective
	for _, f := range findings {
		advice, ok := adviceFor(f.Description)
		if !ok {
			continue
		}
		for _, line := range f.AffectedLines {
			out = append(out, analysis.CorrectionDirective{
				TargetLine:  line,
				Replacement: prefix + advice,
			})
		}
	}
	return out
}

func adviceFor(description string) (string, bool) {
	for _, t := range templates {
		if strings.Contains(description, t.keyword) {
			return t.advice, true
		}
	}
	return "", false
}

// CommentPrefix picks a line comment marker from the file extension.
func CommentPrefix(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".py", ".rb", ".sh", ".yaml", ".yml", ".toml":
		return "# "
	default:
		return "// "
	}
}
