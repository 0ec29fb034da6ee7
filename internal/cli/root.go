package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type rootOptions struct {
	logLevel string
	jsonLogs bool
}

// NewRootCmd builds the scanctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:                   "scanctl [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "scanctl submits code to the security scan backend and prints the findings.",
		Long: `scanctl submits a repository URL or a source file to the security scan backend,
follows the scan until it finishes and prints findings, dependency advisories and
line-level corrections.`,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error); "+logger.LevelEnv+" wins")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "emit logs as JSON")

	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) logger(w io.Writer) hclog.Logger {
	level := o.logLevel
	if level == "" {
		level = "warn"
	}
	log, _ := logger.New(logger.Options{
		Name:   "scanctl",
		Level:  level,
		JSON:   o.jsonLogs,
		Output: w,
	})
	return log
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scanctl %s (built %s)\n", Version, BuildTime)
		},
	}
}
