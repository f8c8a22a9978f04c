package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/spritetint/internal/colour"
	"github.com/jmylchreest/spritetint/internal/image"
)

var (
	// Extract command flags
	extractConfig  colour.Config
	extractFormat  string
	extractOutput  string
	extractPreview bool
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the dominant colours of a single image",
		Long: `Extract the ranked palette of one image.

Supported image formats: PNG, JPEG, GIF, WebP

Examples:
  # Show the six dominant colours of a sprite
  spritetint extract hero.png

  # Output as JSON, in the same shape as one report entry
  spritetint extract --format json hero.png

  # Use k-means with up to 3 colours and colour swatches
  spritetint extract -a kmeans -c 3 --preview hero.png`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	addExtractionFlags(cmd.Flags(), &extractConfig)
	cmd.Flags().StringVarP(&extractFormat, "format", "f", "hex", "output format (hex, json)")
	cmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&extractPreview, "preview", false, "show colour swatches (default: on when stdout is a terminal)")

	return cmd
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	extractor, err := colour.NewExtractor(extractConfig)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	width, height, err := image.GetImageDimensions(imagePath)
	if err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	logger.Debug("loading image", "path", imagePath, "width", width, "height", height)
	palette, err := extractor.ExtractFile(image.NewFileLoader(), imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	logger.Debug("extracted palette", "colours", palette.Len(), "algorithm", extractConfig.Algorithm)

	preview := extractPreview
	if !cmd.Flags().Changed("preview") {
		preview = extractOutput == "" && isTerminal(cmd.OutOrStdout())
	}

	output, err := formatPalette(palette, extractFormat, preview)
	if err != nil {
		return err
	}

	if extractOutput != "" {
		logger.Debug("writing output", "path", extractOutput)
		if err := os.WriteFile(extractOutput, []byte(output), 0o644); err != nil { // #nosec G306 - Output is meant to be shared
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, preview bool) (string, error) {
	switch format {
	case "hex":
		return palette.Format(preview), nil
	case "json":
		data, err := json.MarshalIndent(palette, "", "    ")
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, json)", format)
	}
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
