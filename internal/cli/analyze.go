package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/spritetint/internal/colour"
	"github.com/jmylchreest/spritetint/internal/image"
	"github.com/jmylchreest/spritetint/internal/report"
)

var (
	// Analyze command flags
	analyzeConfig     colour.Config
	analyzeOutput     string
	analyzeWorkers    int
	analyzeExtensions []string
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [directory]",
		Short: "Write a palette report for every sprite in a directory",
		Long: `Analyse every PNG sprite in a directory and write a JSON report mapping
each file name to its dominant colours and their share of visible pixels.

Pixels with alpha at or below the threshold are ignored. Files that cannot be
read are logged and reported with an empty palette; they never stop the run.

Examples:
  # Analyse the current directory into ./color_analysis.json
  spritetint analyze

  # Analyse a sprite folder with at most 4 colours per sprite
  spritetint analyze -c 4 public/static/animation-files/sprites

  # Write an xz-compressed report somewhere else
  spritetint analyze -o /tmp/palettes.json.xz sprites/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	addExtractionFlags(cmd.Flags(), &analyzeConfig)
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "report path (default: <directory>/"+report.DefaultFilename+"; .xz compresses)")
	cmd.Flags().IntVarP(&analyzeWorkers, "workers", "w", 0, "images processed in parallel (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&analyzeExtensions, "ext", image.DefaultExtensions(), "file extensions to analyse, from "+strings.Join(image.SupportedImageExtensions(), ", "))

	return cmd
}

// runAnalyze executes the analyze command.
func runAnalyze(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	// Invalid tunables are fatal before any file is touched.
	if err := analyzeConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	output := analyzeOutput
	if output == "" {
		output = filepath.Join(dir, report.DefaultFilename)
	}

	if unsupported := image.UnsupportedExtensions(analyzeExtensions); len(unsupported) > 0 {
		return fmt.Errorf("invalid configuration: unsupported extensions %v (supported: %v)",
			unsupported, image.SupportedImageExtensions())
	}

	analyzer := report.NewAnalyzer(analyzeConfig,
		report.WithExtensions(analyzeExtensions...),
		report.WithWorkers(analyzeWorkers),
		report.WithLogger(logger.Named("analyze")),
	)

	files, err := analyzer.Scan(dir)
	if err != nil {
		return err
	}
	infof(cmd, "Found %d image files.", len(files))

	logger.Debug("analysing directory",
		"dir", dir,
		"algorithm", analyzeConfig.Algorithm,
		"colours", analyzeConfig.MaxColours,
		"alpha_threshold", analyzeConfig.AlphaThreshold,
	)

	r, err := analyzer.AnalyzeFiles(cmd.Context(), files)
	if err != nil {
		return fmt.Errorf("failed to analyse %s: %w", dir, err)
	}

	if err := r.WriteFile(output); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if len(r.Failures) > 0 {
		logger.Warn("some images could not be analysed", "failed", len(r.Failures), "total", r.Len())
	}
	infof(cmd, "Analysis complete. Saved to %s", output)
	return nil
}
