// Package remediation turns findings plus model commentary into a patched
// copy of each analyzed file. Everything here is a pure function of its inputs.
package remediation

import (
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// Directives returns the directives for a file: the narrative ones when there
// are any, otherwise the keyword fallback.
func Directives(file analysis.FileAnalysis) []analysis.CorrectionDirective {
	if ds := ExtractDirectives(file.Narrative); len(ds) > 0 {
		return ds
	}
	return FallbackDirectives(file.FileName(), file.Findings)
}

// Apply replaces whole lines of source. Out-of-range targets are dropped and
// later directives on the same line win. The input slice is never modified.
func Apply(source []string, directives []analysis.CorrectionDirective) ([]string, int) {
	patched := make([]string, len(source))
	copy(patched, source)
	applied := 0
	for _, d := range directives {
		idx := d.TargetLine - 1
		if idx < 0 || idx >= len(patched) {
			continue
		}
		patched[idx] = d.Replacement
		applied++
	}
	return patched, applied
}

// Synthesize builds the correction for one file. It returns false when the
// file has no findings or no source to patch.
func Synthesize(file analysis.FileAnalysis) (analysis.SynthesizedCorrection, bool) {
	if len(file.Findings) == 0 || len(file.OriginalSource) == 0 {
		return analysis.SynthesizedCorrection{}, false
	}
	patched, applied := Apply(file.OriginalSource, Directives(file))
	return analysis.SynthesizedCorrection{
		FileName:       file.FileName(),
		PatchedSource:  patched,
		HasExplicitFix: applied > 0,
	}, true
}
