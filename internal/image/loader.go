// Package image provides utilities for loading and discovering sprite images.
package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format
)

// NotFoundError is returned when an image path does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a path exists but cannot be decoded as an image.
type DecodeError struct {
	Path   string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("failed to decode image %s (format: %s): %v", e.Path, e.Format, e.Err)
	}
	return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Loader handles loading images.
type Loader interface {
	// Load loads an image from the given path.
	Load(path string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: PNG, JPEG, GIF, WebP.
// Missing paths return *NotFoundError; anything unreadable as an image returns *DecodeError.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, &NotFoundError{Path: path, Err: fs.ErrNotExist}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to stat image file: %w", err)}
	}

	if info.IsDir() {
		return nil, &DecodeError{Path: path, Err: errors.New("path is a directory, not a file")}
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to open image file: %w", err)}
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Format: format, Err: err}
	}

	return img, nil
}

// SupportedImageExtensions returns every extension the loader can decode.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// DefaultExtensions returns the extensions scanned by batch analysis.
func DefaultExtensions() []string {
	return []string{".png"}
}

// NormaliseExtensions lowercases extensions and adds a leading dot where missing.
func NormaliseExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	return out
}

// hasExtension checks if a file name ends in one of exts, ignoring case.
func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(exts, ext)
}

// ScanDirectory returns the image files directly inside dirPath whose extension
// is in exts, sorted by name. It does not recurse into subdirectories, but
// follows symlinks. A directory without matches yields an empty slice.
func ScanDirectory(dirPath string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	exts = NormaliseExtensions(exts)
	imageFiles := []string{}
	for _, entry := range entries {
		if !hasExtension(entry.Name(), exts) {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			// Broken symlinks are still listed so the failure is reported per file.
			if entry.Type()&fs.ModeSymlink != 0 {
				imageFiles = append(imageFiles, fullPath)
			}
			continue
		}
		if info.IsDir() {
			continue
		}

		imageFiles = append(imageFiles, fullPath)
	}

	slices.Sort(imageFiles)
	return imageFiles, nil
}

// GetImageDimensions checks that path is a readable image file and returns
// its width and height from the header, without decoding pixel data.
func GetImageDimensions(path string) (width, height int, err error) {
	if path == "" {
		return 0, 0, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, &NotFoundError{Path: path, Err: err}
		}
		return 0, 0, fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return 0, 0, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, &DecodeError{Path: path, Format: format, Err: fmt.Errorf("unsupported or invalid image format: %w", err)}
	}

	return config.Width, config.Height, nil
}

// UnsupportedExtensions returns the entries of exts, after normalisation,
// that no registered decoder handles.
func UnsupportedExtensions(exts []string) []string {
	var out []string
	for _, ext := range NormaliseExtensions(exts) {
		if !slices.Contains(SupportedImageExtensions(), ext) {
			out = append(out, ext)
		}
	}
	return out
}
