package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/corrections"
	appscans "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/scans"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/backend"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/report"
)

const defaultBackendURL = "http://localhost:5000"

type scanOptions struct {
	backendURL   string
	repo         string
	file         string
	code         string
	language     string
	deps         bool
	sarifPath    string
	showFixes    bool
	timeout      time.Duration
	pollInterval time.Duration
	retries      int
}

func newScanCmd(root *rootOptions) *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan (--repo URL | --file PATH | --code SOURCE)",
		Short: "Submit code for scanning and wait for the results",
		Example: `  scanctl scan --repo https://github.com/acme/app --deps
  scanctl scan --file app.py --show-fixes --sarif app.sarif`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), opts, root, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	backendURL := os.Getenv("SCA_BACKEND_URL")
	if backendURL == "" {
		backendURL = defaultBackendURL
	}
	f := cmd.Flags()
	f.StringVar(&opts.backendURL, "backend", backendURL, "scan backend base URL")
	f.StringVar(&opts.repo, "repo", "", "repository URL to scan")
	f.StringVar(&opts.file, "file", "", "source file to scan inline")
	f.StringVar(&opts.code, "code", "", "source code to scan inline")
	f.StringVarP(&opts.language, "language", "l", "", "python or javascript (default: from --file extension, else python)")
	f.BoolVar(&opts.deps, "deps", false, "also check dependencies for known vulnerabilities")
	f.StringVar(&opts.sarifPath, "sarif", "", "write findings as SARIF to this path")
	f.BoolVar(&opts.showFixes, "show-fixes", false, "print synthesized corrections for every file with findings")
	f.DurationVar(&opts.timeout, "timeout", 15*time.Minute, "give up waiting after this long")
	f.DurationVar(&opts.pollInterval, "poll-interval", appscans.DefaultPollInterval, "delay between status polls")
	f.IntVar(&opts.retries, "retries", 0, "retry transient poll failures this many times")
	cmd.MarkFlagsMutuallyExclusive("repo", "file", "code")
	return cmd
}

func (o *scanOptions) request() (analysis.ScanRequest, error) {
	req := analysis.ScanRequest{
		RepositoryURL:     strings.TrimSpace(o.repo),
		InlineSource:      o.code,
		CheckDependencies: o.deps,
		Language:          analysis.Language(strings.ToLower(o.language)),
	}
	if o.file != "" {
		data, err := os.ReadFile(o.file)
		if err != nil {
			return req, err
		}
		req.InlineSource = string(data)
		if req.Language == "" {
			req.Language = languageFor(o.file)
		}
	}
	if req.Language == "" {
		req.Language = analysis.LanguagePython
	}
	return req, req.Validate()
}

func languageFor(path string) analysis.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx":
		return analysis.LanguageJavaScript
	default:
		return analysis.LanguagePython
	}
}

func runScan(ctx context.Context, o *scanOptions, root *rootOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := o.request()
	if err != nil {
		return err
	}

	log := root.logger(stderr)
	progress := &progressPrinter{w: stderr}
	ctrl := appscans.NewController(
		backend.New(o.backendURL, 0, log),
		corrections.New(nil),
		appscans.Options{
			PollInterval:     o.pollInterval,
			TransportRetries: o.retries,
			Logger:           log,
			OnUpdate:         progress.print,
		},
	)
	defer ctrl.Abandon()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if _, _, err := ctrl.Submit(ctx, req); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	snap, err := ctrl.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("scan %s still %s after %s", snap.Job.ID, snap.Job.Status, o.timeout)
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	results, err := ctrl.Results()
	if err != nil {
		return err
	}
	printResults(stdout, results)

	if o.showFixes {
		for _, f := range results.Files {
			corr, ok, err := ctrl.Cache().Correction(f.FileName())
			if err != nil {
				return err
			}
			if ok {
				printCorrection(stdout, f, corr)
			}
		}
	}

	if o.sarifPath != "" {
		out, err := os.Create(o.sarifPath)
		if err != nil {
			return fmt.Errorf("error writing SARIF report: %w", err)
		}
		defer out.Close()
		if err := report.WriteSARIF(out, results); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "SARIF report written to %s\n", o.sarifPath)
	}
	return nil
}

// progressPrinter writes one line per state or progress change
type progressPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func (p *progressPrinter) print(s appscans.Snapshot) {
	line := fmt.Sprintf("[%s] %d%%", s.State, s.Job.Progress)
	if s.Job.Message != "" {
		line += " " + s.Job.Message
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintln(p.w, line)
}

func printResults(w io.Writer, results *analysis.ScanResults) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Critical", "High", "Medium", "Low"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})
	for _, f := range results.Files {
		c := countFindings(f.Findings)
		table.Append([]string{f.FilePath, strconv.Itoa(c[analysis.SeverityCritical]), strconv.Itoa(c[analysis.SeverityHigh]), strconv.Itoa(c[analysis.SeverityMedium]), strconv.Itoa(c[analysis.SeverityLow])})
	}
	if s := results.Summary; s != nil {
		table.SetFooter([]string{fmt.Sprintf("%d files, %d total", s.TotalFilesAnalyzed, s.Total), strconv.Itoa(s.Critical), strconv.Itoa(s.High), strconv.Itoa(s.Medium), strconv.Itoa(s.Low)})
	}
	table.Render()

	for _, f := range results.Files {
		for _, finding := range f.Findings {
			fmt.Fprintf(w, "%s [%s] %s%s\n", f.FileName(), finding.Severity, finding.Description, linesSuffix(finding.AffectedLines))
		}
	}

	if len(results.Dependencies) == 0 {
		return
	}
	fmt.Fprintln(w)
	deps := tablewriter.NewWriter(w)
	deps.SetHeader([]string{"Package", "Version", "Advisory", "Severity"})
	deps.SetBorder(false)
	deps.SetCenterSeparator("")
	for _, d := range results.Dependencies {
		for _, v := range d.Vulnerabilities {
			deps.Append([]string{d.Package, d.Version, v.CVEID, string(v.Severity)})
		}
	}
	deps.Render()
}

func printCorrection(w io.Writer, f analysis.FileAnalysis, corr analysis.SynthesizedCorrection) {
	kind := "suggested fixes"
	if !corr.HasExplicitFix {
		kind = "no applicable fix"
	}
	fmt.Fprintf(w, "\n--- %s (%s)\n", corr.FileName, kind)
	for i, line := range corr.PatchedSource {
		if i < len(f.OriginalSource) && f.OriginalSource[i] == line {
			continue
		}
		if i < len(f.OriginalSource) {
			fmt.Fprintf(w, "%5d - %s\n", i+1, f.OriginalSource[i])
		}
		fmt.Fprintf(w, "%5d + %s\n", i+1, line)
	}
}

func countFindings(findings []analysis.Finding) map[analysis.Severity]int {
	out := map[analysis.Severity]int{}
	for _, f := range findings {
		out[analysis.ParseSeverity(string(f.Severity))]++
	}
	return out
}

func linesSuffix(lines []int) string {
	if len(lines) == 0 {
		return ""
	}
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strconv.Itoa(l)
	}
	return " (line " + strings.Join(parts, ", ") + ")"
}

