// Package report builds and persists palette analysis reports for sprite directories.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/spritetint/internal/colour"
)

// DefaultFilename is the report name written next to the analysed images.
const DefaultFilename = "color_analysis.json"

// Failure records an image that could not be analysed.
type Failure struct {
	File string
	Err  error
}

// Report maps image file names to their palettes.
// Files that failed to load are present with an empty palette.
type Report struct {
	Palettes map[string]*colour.Palette
	Failures []Failure
}

// New creates an empty Report.
func New() *Report {
	return &Report{Palettes: make(map[string]*colour.Palette)}
}

// Files returns the file names in the report, sorted.
func (r *Report) Files() []string {
	files := make([]string, 0, len(r.Palettes))
	for name := range r.Palettes {
		files = append(files, name)
	}
	slices.Sort(files)
	return files
}

// Len returns the number of files in the report.
func (r *Report) Len() int {
	return len(r.Palettes)
}

// MarshalJSON encodes the report as an object keyed by file name in sorted order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.Files() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		palette := r.Palettes[name]
		if palette == nil {
			palette = &colour.Palette{}
		}
		val, err := json.Marshal(palette)
		if err != nil {
			return nil, fmt.Errorf("failed to encode palette for %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a report written by MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw map[string]*colour.Palette
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Palettes = make(map[string]*colour.Palette, len(raw))
	for name, p := range raw {
		if p == nil {
			p = &colour.Palette{}
		}
		r.Palettes[name] = p
	}
	return nil
}

// Write writes the report as JSON indented by four spaces.
func (r *Report) Write(w io.Writer) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to convert report to JSON: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "    "); err != nil {
		return fmt.Errorf("failed to indent report: %w", err)
	}
	out.WriteByte('\n')

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func isCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xz")
}

// WriteFile writes the report to path, replacing any existing file atomically.
// Paths ending in ".xz" are written xz-compressed.
func (r *Report) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if isCompressed(path) {
		xzw, err := xz.NewWriter(tmp)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("failed to create xz writer: %w", err)
		}
		if err := r.Write(xzw); err != nil {
			tmp.Close()
			return err
		}
		if err := xzw.Close(); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to finish xz stream: %w", err)
		}
	} else if err := r.Write(tmp); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { // #nosec G302 - Report is meant to be shared with other tools
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}

// ReadFile reads a report written by WriteFile, decompressing ".xz" paths.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified report path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if isCompressed(path) {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		src = xzr
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	r := New()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return r, nil
}
