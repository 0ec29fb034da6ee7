package ai

import (
	"context"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// Narrator writes remediation commentary for a file that came back without one.
type Narrator interface {
	Narrate(ctx context.Context, file analysis.FileAnalysis) (string, error)
}
