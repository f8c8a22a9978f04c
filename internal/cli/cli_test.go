// Package cli_test provides tests for the CLI package.
package cli_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/spritetint/internal/cli"
)

// runCLI executes the root command with args and returns stdout, stderr and the error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeSprite writes the 2x2 test sprite: two red, one blue, one transparent pixel.
func writeSprite(t *testing.T, path string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{A: 0})

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create sprite: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode sprite: %v", err)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, filepath.Join(dir, "hero.png"))
	if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := runCLI(t, "analyze", dir)
	if err != nil {
		t.Fatalf("analyze failed: %v\nstderr: %s", err, stderr)
	}

	if !strings.Contains(stdout, "Found 2 image files.") {
		t.Errorf("stdout missing file count: %q", stdout)
	}
	reportPath := filepath.Join(dir, "color_analysis.json")
	if !strings.Contains(stdout, "Analysis complete. Saved to "+reportPath) {
		t.Errorf("stdout missing completion line: %q", stdout)
	}
	if !strings.Contains(stderr, "bad.png") {
		t.Errorf("stderr should name the failing file: %q", stderr)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}

	want := `{
    "bad.png": {},
    "hero.png": {
        "#ff0000": 0.6667,
        "#0000ff": 0.3333
    }
}
`
	if string(data) != want {
		t.Errorf("report =\n%s\nwant\n%s", data, want)
	}
}

func TestAnalyzeCommandEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "report.json")

	stdout, _, err := runCLI(t, "analyze", "-o", out, dir)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(stdout, "Found 0 image files.") {
		t.Errorf("stdout = %q", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil || len(decoded) != 0 {
		t.Errorf("report = %s, want empty object", data)
	}
}

func TestAnalyzeCommandInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "zero colours", args: []string{"--colours", "0"}},
		{name: "threshold above range", args: []string{"--alpha-threshold", "256"}},
		{name: "negative threshold", args: []string{"--alpha-threshold=-1"}},
		{name: "unknown algorithm", args: []string{"--algorithm", "popularity"}},
		{name: "unsupported extension", args: []string{"--ext", "png,tga"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSprite(t, filepath.Join(dir, "hero.png"))

			args := append([]string{"analyze"}, tt.args...)
			args = append(args, dir)
			if _, _, err := runCLI(t, args...); err == nil {
				t.Fatal("analyze expected an error")
			}
			if _, err := os.Stat(filepath.Join(dir, "color_analysis.json")); !os.IsNotExist(err) {
				t.Error("report should not be written for invalid configuration")
			}
		})
	}
}

func TestAnalyzeCommandQuiet(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, filepath.Join(dir, "hero.png"))

	stdout, _, err := runCLI(t, "analyze", "-q", dir)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("quiet stdout = %q, want empty", stdout)
	}
}

func TestVerboseAndQuietConflict(t *testing.T) {
	if _, _, err := runCLI(t, "analyze", "-v", "-q", t.TempDir()); err == nil {
		t.Error("expected error for --verbose with --quiet")
	}
}

func TestExtractCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hero.png")
	writeSprite(t, path)

	t.Run("json", func(t *testing.T) {
		stdout, _, err := runCLI(t, "extract", "--format", "json", path)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		want := "{\n    \"#ff0000\": 0.6667,\n    \"#0000ff\": 0.3333\n}\n"
		if stdout != want {
			t.Errorf("stdout = %q, want %q", stdout, want)
		}
	})

	t.Run("hex", func(t *testing.T) {
		stdout, _, err := runCLI(t, "extract", path)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		if len(lines) != 2 || !strings.Contains(lines[0], "#ff0000") || !strings.Contains(lines[1], "#0000ff") {
			t.Errorf("stdout = %q", stdout)
		}
		if strings.Contains(stdout, "\033[") {
			t.Error("non-terminal output should not contain ANSI swatches")
		}
	})

	t.Run("preview", func(t *testing.T) {
		stdout, _, err := runCLI(t, "extract", "--preview", "-c", "1", path)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if !strings.Contains(stdout, "\033[48;2;") {
			t.Errorf("stdout = %q, want ANSI swatch", stdout)
		}
	})

	t.Run("output file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "palette.json")
		if _, _, err := runCLI(t, "extract", "-f", "json", "-o", out, path); err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "#ff0000") {
			t.Errorf("output file = %s", data)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		if _, _, err := runCLI(t, "extract", "--format", "yaml", path); err == nil {
			t.Error("expected error for unsupported format")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := runCLI(t, "extract", filepath.Join(t.TempDir(), "gone.png")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestInspectGIFCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "electric-transparent.gif")
	palette := color.Palette{color.RGBA{R: 255, A: 255}, color.RGBA{}}
	anim := &gif.GIF{}
	for range 3 {
		anim.Image = append(anim.Image, image.NewPaletted(image.Rect(0, 0, 2, 2), palette))
		anim.Delay = append(anim.Delay, 10)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		t.Fatal(err)
	}
	f.Close()

	stdout, _, err := runCLI(t, "inspect", "gif", path)
	if err != nil {
		t.Fatalf("inspect gif failed: %v", err)
	}
	for _, want := range []string{"Format: gif", "Is Animated: true", "Frames: 3", "Transparent: true"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, "inspect", "gif", "--json", path)
	if err != nil {
		t.Fatalf("inspect gif --json failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if decoded["frames"] != float64(3) {
		t.Errorf("frames = %v, want 3", decoded["frames"])
	}
}

func TestInspectGLTFCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Male.gltf")
	doc := `{"asset":{"version":"2.0"},"animations":[{"name":"Run","channels":[],"samplers":[]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, "inspect", "gltf", path)
	if err != nil {
		t.Fatalf("inspect gltf failed: %v", err)
	}
	if !strings.Contains(stdout, "Animations in "+path) || !strings.Contains(stdout, "Run") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "spritetint version ") {
		t.Errorf("stdout = %q", stdout)
	}
}
