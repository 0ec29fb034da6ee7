package remediation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// rxNarrativeFix matches "line <n> ... (recommended|suggested) fix ... `code`".
// Lazy gaps keep each match as short as possible so consecutive
// recommendations in one narrative produce separate directives.
var rxNarrativeFix = regexp.MustCompile("(?i)line\\s+(\\d+)[\\s\\S]+?(recommended fix|suggested fix|fix)[\\s\\S]+?`([^`]+)`")

// ExtractDirectives scans a narrative for line-targeted fixes, in narrative order.
// Numbers that do not fit an int are skipped.
func ExtractDirectives(narrative string) []analysis.CorrectionDirective {
	if narrative == "" {
		return nil
	}
	var out []analysis.CorrectionDirective
	for _, m := range rxNarrativeFix.FindAllStringSubmatch(narrative, -1) {
		line, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, analysis.CorrectionDirective{
			TargetLine:  line,
			Replacement: strings.TrimSpace(m[3]),
		})
	}
	return out
}
