// Package cli provides the command-line interface for spritetint.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/spritetint/internal/version"
)

var (
	// Global output flags
	globalVerbose bool
	globalQuiet   bool

	// logger is configured from the global flags before any command runs.
	logger hclog.Logger = hclog.NewNullLogger()
)

// NewRootCmd builds the spritetint command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spritetint",
		Short: "Sprite palette analysis and asset inspection",
		Long: `spritetint analyses the dominant colours of sprite sheets and inspects
animation assets for a 3D character pipeline.

Point it at a directory of PNG sprites to get a JSON report mapping every
file to its ranked palette, or inspect individual GIF and glTF assets.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if globalVerbose && globalQuiet {
				return fmt.Errorf("--verbose and --quiet cannot be used together")
			}
			logger = newLogger(cmd.ErrOrStderr(), globalVerbose, globalQuiet)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

// newLogger creates the process logger. Errors are always shown.
func newLogger(out io.Writer, verbose, quiet bool) hclog.Logger {
	level := hclog.Info
	switch {
	case verbose:
		level = hclog.Debug
	case quiet:
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "spritetint",
		Output: out,
		Level:  level,
	})
}

// infof prints progress for humans unless --quiet was given.
func infof(cmd *cobra.Command, format string, args ...any) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
