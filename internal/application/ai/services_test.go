package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/ai"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

type fakeNarrator struct {
	calls []string
	errs  map[string]error
}

func (f *fakeNarrator) Narrate(_ context.Context, file analysis.FileAnalysis) (string, error) {
	f.calls = append(f.calls, file.FileName())
	if err := f.errs[file.FileName()]; err != nil {
		return "", err
	}
	return "line 1 recommended fix: `pass`", nil
}

func TestEnrichFillsMissingNarratives(t *testing.T) {
	finding := []analysis.Finding{{Description: "eval"}}
	files := []analysis.FileAnalysis{
		{FilePath: "a.py", Findings: finding},
		{FilePath: "b.py", Findings: finding, Narrative: "already here"},
		{FilePath: "c.py"},
		{FilePath: "d.py", Findings: finding},
	}
	n := &fakeNarrator{errs: map[string]error{"d.py": errors.New("boom")}}

	got := NewService(n, nil).Enrich(context.Background(), files)

	assert.Equal(t, []string{"a.py", "d.py"}, n.calls)
	assert.Equal(t, "line 1 recommended fix: `pass`", got[0].Narrative)
	assert.Equal(t, "already here", got[1].Narrative)
	assert.Empty(t, got[2].Narrative)
	assert.Empty(t, got[3].Narrative)
	assert.Empty(t, files[0].Narrative, "input must not be modified")
}

func TestEnrichStopsOnQuota(t *testing.T) {
	finding := []analysis.Finding{{Description: "eval"}}
	files := []analysis.FileAnalysis{
		{FilePath: "a.py", Findings: finding},
		{FilePath: "b.py", Findings: finding},
	}
	n := &fakeNarrator{errs: map[string]error{"a.py": ai.ErrQuotaExceeded}}

	NewService(n, nil).Enrich(context.Background(), files)
	assert.Equal(t, []string{"a.py"}, n.calls)
}

func TestEnrichNilService(t *testing.T) {
	var s *Service
	files := []analysis.FileAnalysis{{FilePath: "a.py"}}
	assert.Equal(t, files, s.Enrich(context.Background(), files))
}
