package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/spritetint/internal/inspect"
)

// inspectJSON switches inspect output to JSON.
var inspectJSON bool

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect animation assets",
		Long:  `Inspect animated GIFs and glTF/GLB character files.`,
	}
	cmd.PersistentFlags().BoolVar(&inspectJSON, "json", false, "output as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "gif <file>",
		Short: "Show frame and timing details of a GIF",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectGIF,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "gltf <file>",
		Short: "List the animations in a glTF or GLB file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectGLTF,
	})

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to convert to JSON: %w", err)
	}
	return nil
}

func runInspectGIF(cmd *cobra.Command, args []string) error {
	info, err := inspect.GIF(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		return writeJSON(out, info)
	}

	fmt.Fprintf(out, "Format: %s\n", info.Format)
	fmt.Fprintf(out, "Size: %dx%d\n", info.Width, info.Height)
	fmt.Fprintf(out, "Is Animated: %t\n", info.Animated)
	fmt.Fprintf(out, "Frames: %d\n", info.Frames)
	fmt.Fprintf(out, "Duration: %s\n", info.Duration)
	fmt.Fprintf(out, "Loop: %s\n", info.Loops())
	fmt.Fprintf(out, "Transparent: %t\n", info.Transparent)
	return nil
}

func runInspectGLTF(cmd *cobra.Command, args []string) error {
	path := args[0]
	anims, err := inspect.GLTFAnimations(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		return writeJSON(out, anims)
	}

	if len(anims) == 0 {
		fmt.Fprintf(out, "No animations found in %s.\n", path)
		return nil
	}

	fmt.Fprintf(out, "Animations in %s:\n", path)
	table := NewTable("Index", "Name", "Channels", "Samplers")
	table.AlignRight(0, 2, 3)
	for _, a := range anims {
		table.AddRow(strconv.Itoa(a.Index), a.Name, strconv.Itoa(a.Channels), strconv.Itoa(a.Samplers))
	}
	_, err = table.WriteTo(out)
	return err
}
