package backend

import (
	"math"
	"strings"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// submitRequest keeps both source fields on the wire; the unused one is null.
type submitRequest struct {
	RepoURL           *string `json:"repo_url"`
	Code              *string `json:"code"`
	CheckDependencies bool    `json:"check_dependencies"`
	Language          string  `json:"language"`
}

func newSubmitRequest(req analysis.ScanRequest) submitRequest {
	out := submitRequest{
		CheckDependencies: req.CheckDependencies,
		Language:          string(req.Language),
	}
	if req.RepositoryURL != "" {
		u := req.RepositoryURL
		out.RepoURL = &u
	} else {
		code := req.InlineSource
		out.Code = &code
	}
	return out
}

type submitResponse struct {
	ScanID string `json:"scan_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type pollResponse struct {
	Status   string       `json:"status"`
	Progress float64      `json:"progress"`
	Message  string       `json:"message"`
	Results  *resultsWire `json:"results,omitempty"`
}

type resultsWire struct {
	CodeAnalysis              []codeAnalysisWire `json:"code_analysis"`
	DependencyVulnerabilities []dependencyWire   `json:"dependency_vulnerabilities,omitempty"`
	Summary                   *summaryWire       `json:"summary,omitempty"`
}

type codeAnalysisWire struct {
	File           string `json:"file"`
	OriginalCode   string `json:"original_code"`
	StaticAnalysis *struct {
		Vulnerabilities []vulnerabilityWire `json:"vulnerabilities"`
	} `json:"static_analysis"`
	AIAnalysis string `json:"ai_analysis"`
}

type vulnerabilityWire struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	LineNumbers []int  `json:"line_numbers"`
	LineNumber  int    `json:"line_number"`
}

type dependencyWire struct {
	Package         string `json:"package"`
	Version         string `json:"version"`
	Vulnerabilities []struct {
		CVEID       string `json:"cve_id"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
	} `json:"vulnerabilities"`
}

type summaryWire struct {
	TotalFilesAnalyzed      int `json:"total_files_analyzed"`
	TotalVulnerabilities    int `json:"total_vulnerabilities"`
	CriticalVulnerabilities int `json:"critical_vulnerabilities"`
	HighVulnerabilities     int `json:"high_vulnerabilities"`
	MediumVulnerabilities   int `json:"medium_vulnerabilities"`
	LowVulnerabilities      int `json:"low_vulnerabilities"`
}

func (p pollResponse) toDomain(id analysis.ScanID) analysis.PollResponse {
	out := analysis.PollResponse{
		Job: analysis.ScanJob{
			ID:       id,
			Status:   analysis.JobStatus(strings.ToLower(strings.TrimSpace(p.Status))),
			Progress: int(math.Round(p.Progress)),
			Message:  p.Message,
		},
	}
	if p.Results != nil {
		out.Results = p.Results.toDomain()
	}
	return out
}

func (r *resultsWire) toDomain() *analysis.ScanResults {
	out := &analysis.ScanResults{}
	for _, ca := range r.CodeAnalysis {
		fa := analysis.FileAnalysis{
			FilePath:       ca.File,
			OriginalSource: analysis.SplitLines(ca.OriginalCode),
			Narrative:      ca.AIAnalysis,
		}
		if ca.StaticAnalysis != nil {
			for _, v := range ca.StaticAnalysis.Vulnerabilities {
				fa.Findings = append(fa.Findings, v.toDomain())
			}
		}
		out.Files = append(out.Files, fa)
	}
	for _, d := range r.DependencyVulnerabilities {
		rep := analysis.DependencyReport{Package: d.Package, Version: d.Version}
		for _, v := range d.Vulnerabilities {
			rep.Vulnerabilities = append(rep.Vulnerabilities, analysis.PackageVulnerability{
				CVEID:       v.CVEID,
				Severity:    analysis.ParseSeverity(v.Severity),
				Description: v.Description,
			})
		}
		out.Dependencies = append(out.Dependencies, rep)
	}
	if s := r.Summary; s != nil {
		out.Summary = &analysis.ScanSummary{
			TotalFilesAnalyzed: s.TotalFilesAnalyzed,
			Total:              s.TotalVulnerabilities,
			Critical:           s.CriticalVulnerabilities,
			High:               s.HighVulnerabilities,
			Medium:             s.MediumVulnerabilities,
			Low:                s.LowVulnerabilities,
		}
	}
	return out
}

// toDomain prefers line_numbers, even when empty, over the single line_number.
func (v vulnerabilityWire) toDomain() analysis.Finding {
	f := analysis.Finding{
		Severity:    analysis.ParseSeverity(v.Severity),
		Description: v.Description,
	}
	switch {
	case v.LineNumbers != nil:
		f.AffectedLines = append([]int{}, v.LineNumbers...)
	case v.LineNumber != 0:
		f.AffectedLines = []int{v.LineNumber}
	}
	return f
}
