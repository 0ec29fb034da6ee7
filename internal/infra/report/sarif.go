// Package report renders scan results for tools outside this service.
package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

const (
	toolName = "Secured-Code-Analyzer"
	toolURI  = "https://github.com/AKSHAYKM0077/Secured-Code-Analyzer"
)

var rxRuleSlug = regexp.MustCompile(`[^a-z0-9]+`)

// WriteSARIF writes results as a SARIF 2.1.0 log with one run.
func WriteSARIF(w io.Writer, results *analysis.ScanResults) error {
	rep, err := BuildSARIF(results)
	if err != nil {
		return err
	}
	return rep.PrettyWrite(w)
}

// BuildSARIF converts code findings and dependency advisories into a SARIF report.
func BuildSARIF(results *analysis.ScanResults) (*sarif.Report, error) {
	rep, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}
	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	if results != nil {
		for _, file := range results.Files {
			for _, f := range file.Findings {
				addFinding(run, file.FilePath, f)
			}
		}
		for _, dep := range results.Dependencies {
			for _, v := range dep.Vulnerabilities {
				addAdvisory(run, dep, v)
			}
		}
	}
	rep.AddRun(run)
	return rep, nil
}

func addFinding(run *sarif.Run, path string, f analysis.Finding) {
	level := Level(f.Severity)
	rule := run.AddRule(RuleID(f.Description)).
		WithDescription(f.Description).
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})

	var locations []*sarif.Location
	lines := f.AffectedLines
	if len(lines) == 0 {
		lines = []int{0}
	}
	for _, line := range lines {
		phys := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(path))
		if line > 0 {
			phys = phys.WithRegion(sarif.NewRegion().WithStartLine(line))
		}
		locations = append(locations, sarif.NewLocation().WithPhysicalLocation(phys))
	}

	result := sarif.NewRuleResult(rule.ID).
		WithMessage(sarif.NewTextMessage(f.Description)).
		WithLevel(level).
		WithLocations(locations)
	run.AddResult(result)
}

func addAdvisory(run *sarif.Run, dep analysis.DependencyReport, v analysis.PackageVulnerability) {
	id := v.CVEID
	if id == "" {
		id = RuleID(v.Description)
	}
	level := Level(v.Severity)
	rule := run.AddRule(id).
		WithDescription(v.Description).
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})

	msg := fmt.Sprintf("%s %s: %s", dep.Package, dep.Version, v.Description)
	loc := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(dep.Package)),
	)
	result := sarif.NewRuleResult(rule.ID).
		WithMessage(sarif.NewTextMessage(msg)).
		WithLevel(level).
		WithLocations([]*sarif.Location{loc})
	run.AddResult(result)
}

// RuleID slug of a finding description, stable across scans.
func RuleID(description string) string {
	slug := strings.Trim(rxRuleSlug.ReplaceAllString(strings.ToLower(description), "-"), "-")
	if len(slug) > 64 {
		slug = strings.TrimRight(slug[:64], "-")
	}
	if slug == "" {
		slug = "finding"
	}
	return "sca/" + slug
}

// Level maps severities onto SARIF result levels.
func Level(s analysis.Severity) string {
	switch analysis.ParseSeverity(string(s)) {
	case analysis.SeverityCritical, analysis.SeverityHigh:
		return "error"
	case analysis.SeverityMedium:
		return "warning"
	case analysis.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
