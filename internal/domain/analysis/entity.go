package analysis

import "strings"

// ScanID opaque token issued by the scan backend
type ScanID string

// Language enum
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
)

// Valid reports whether the language is one the backend accepts.
func (l Language) Valid() bool {
	return l == LanguagePython || l == LanguageJavaScript
}

// Severity enum
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// ParseSeverity normalizes backend severities ("CRITICAL", "high", ...).
// Unknown values are kept as reported.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low", "info", "informational":
		return SeverityLow
	default:
		return Severity(s)
	}
}

// JobStatus enum
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "error"
)

// Terminal reports whether no further polls are needed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ScanRequest is what the user submits. Exactly one of RepositoryURL or
// InlineSource must be set.
type ScanRequest struct {
	RepositoryURL     string   `json:"repo_url,omitempty"`
	InlineSource      string   `json:"code,omitempty"`
	Language          Language `json:"language"`
	CheckDependencies bool     `json:"check_dependencies"`
}

// Validate returns a *SubmissionError when the request cannot be sent.
func (r ScanRequest) Validate() error {
	hasRepo := r.RepositoryURL != ""
	hasCode := r.InlineSource != ""
	switch {
	case hasRepo && hasCode:
		return &SubmissionError{Field: "repo_url", Reason: "repo_url and code are mutually exclusive"}
	case !hasRepo && !hasCode:
		return &SubmissionError{Field: "code", Reason: "one of repo_url or code is required"}
	case hasRepo && strings.TrimSpace(r.RepositoryURL) == "":
		return &SubmissionError{Field: "repo_url", Reason: "repo_url is empty"}
	case hasCode && strings.TrimSpace(r.InlineSource) == "":
		return &SubmissionError{Field: "code", Reason: "code is empty"}
	}
	if !r.Language.Valid() {
		return &SubmissionError{Field: "language", Reason: "language must be python or javascript"}
	}
	return nil
}

// ScanJob tracks one backend job. Only poll responses mutate it.
type ScanJob struct {
	ID       ScanID    `json:"id"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
	Message  string    `json:"message"`
}

// Finding a single static-analysis vulnerability
type Finding struct {
	Severity      Severity `json:"severity"`
	Description   string   `json:"description"`
	AffectedLines []int    `json:"affected_lines,omitempty"`
}

// FileAnalysis the per-file result of a completed scan
type FileAnalysis struct {
	FilePath       string    `json:"file_path"`
	OriginalSource []string  `json:"original_source"`
	Findings       []Finding `json:"findings"`
	Narrative      string    `json:"narrative,omitempty"`
}

// FileName is the basename of FilePath.
func (f FileAnalysis) FileName() string {
	return BaseName(f.FilePath)
}

// CorrectionDirective replaces one whole line of the original source.
type CorrectionDirective struct {
	TargetLine  int    `json:"target_line"`
	Replacement string `json:"replacement_text"`
}

// SynthesizedCorrection the patched source for one file
type SynthesizedCorrection struct {
	FileName       string   `json:"file_name"`
	PatchedSource  []string `json:"patched_source"`
	HasExplicitFix bool     `json:"has_explicit_fix"`
}

// Text joins the patched lines back into file content.
func (c SynthesizedCorrection) Text() string {
	return strings.Join(c.PatchedSource, "\n")
}

// ScanSummary value object, copied from the backend and never recomputed
type ScanSummary struct {
	TotalFilesAnalyzed int `json:"total_files_analyzed"`
	Total              int `json:"total_vulnerabilities"`
	Critical           int `json:"critical_vulnerabilities"`
	High               int `json:"high_vulnerabilities"`
	Medium             int `json:"medium_vulnerabilities"`
	Low                int `json:"low_vulnerabilities"`
}

// PackageVulnerability one advisory against a dependency
type PackageVulnerability struct {
	CVEID       string   `json:"cve_id"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// DependencyReport advisories for one package
type DependencyReport struct {
	Package         string                 `json:"package"`
	Version         string                 `json:"version"`
	Vulnerabilities []PackageVulnerability `json:"vulnerabilities"`
}

// ScanResults the payload attached to a completed job
type ScanResults struct {
	Files        []FileAnalysis     `json:"files"`
	Dependencies []DependencyReport `json:"dependency_vulnerabilities,omitempty"`
	Summary      *ScanSummary       `json:"summary,omitempty"`
}

// File returns the first analysis whose basename is name. Distinct paths
// sharing a basename collide; the first one wins.
func (r *ScanResults) File(name string) (FileAnalysis, bool) {
	if r == nil {
		return FileAnalysis{}, false
	}
	for _, f := range r.Files {
		if f.FileName() == name {
			return f, true
		}
	}
	return FileAnalysis{}, false
}

// PollResponse a single poll outcome
type PollResponse struct {
	Job     ScanJob
	Results *ScanResults
}

// BaseName strips every "/" and "\" prefix from a path.
func BaseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// SplitLines splits file content the way the backend joined it.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
