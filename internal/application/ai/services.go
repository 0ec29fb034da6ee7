package ai

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/ai"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

type Service struct {
	narrator ai.Narrator
	logger   hclog.Logger
}

func NewService(narrator ai.Narrator, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{narrator: narrator, logger: logger.Named("narrator")}
}

// Enrich returns a copy of files where every file that has findings but no
// narrative gets one from the narrator. Narrator failures leave the file as
// is; a quota error stops further requests for this batch.
func (s *Service) Enrich(ctx context.Context, files []analysis.FileAnalysis) []analysis.FileAnalysis {
	out := make([]analysis.FileAnalysis, len(files))
	copy(out, files)
	if s == nil || s.narrator == nil {
		return out
	}
	for i, f := range out {
		if len(f.Findings) == 0 || f.Narrative != "" {
			continue
		}
		if ctx.Err() != nil {
			return out
		}
		text, err := s.narrator.Narrate(ctx, f)
		if err != nil {
			if errors.Is(err, ai.ErrQuotaExceeded) {
				s.logger.Warn("narrator quota exceeded, skipping remaining files", "file", f.FileName())
				return out
			}
			s.logger.Warn("narration failed", "file", f.FileName(), "error", err)
			continue
		}
		out[i].Narrative = text
	}
	return out
}
