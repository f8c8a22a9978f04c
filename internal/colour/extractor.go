package colour

import (
	"fmt"
	"image"
	"slices"
)

// quantizer reduces a visible colour population to at most k clusters.
type quantizer interface {
	Quantize(h histogram, k int) []Cluster
}

// Loader loads an image from a path.
type Loader interface {
	Load(path string) (image.Image, error)
}

// Algorithm represents the quantization algorithm type.
type Algorithm string

const (
	// AlgorithmOctree uses a fixed-depth octree reduction.
	AlgorithmOctree Algorithm = "octree"

	// AlgorithmKMeans uses weighted k-means clustering with a fixed seed.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmMedianCut uses weighted median-cut bucketing.
	AlgorithmMedianCut Algorithm = "mediancut"
)

const (
	// DefaultMaxColours is the default palette size.
	DefaultMaxColours = 6

	// DefaultAlphaThreshold is the alpha value a pixel must exceed to be counted.
	DefaultAlphaThreshold = 10

	maxPaletteSize = 256
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmOctree, AlgorithmKMeans, AlgorithmMedianCut}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// ConfigError reports an invalid extraction setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Config holds configuration for palette extraction.
type Config struct {
	Algorithm      Algorithm
	MaxColours     int
	AlphaThreshold int
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		Algorithm:      AlgorithmOctree,
		MaxColours:     DefaultMaxColours,
		AlphaThreshold: DefaultAlphaThreshold,
	}
}

// Validate validates the extraction configuration.
func (c Config) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return &ConfigError{
			Field:  "algorithm",
			Reason: fmt.Sprintf("%q (valid algorithms: %v)", c.Algorithm, ValidAlgorithms()),
		}
	}
	if c.MaxColours < 1 {
		return &ConfigError{Field: "max colours", Reason: fmt.Sprintf("must be at least 1, got %d", c.MaxColours)}
	}
	if c.MaxColours > maxPaletteSize {
		return &ConfigError{Field: "max colours", Reason: fmt.Sprintf("too large: %d (maximum: %d)", c.MaxColours, maxPaletteSize)}
	}
	if c.AlphaThreshold < 0 || c.AlphaThreshold > 255 {
		return &ConfigError{Field: "alpha threshold", Reason: fmt.Sprintf("must be within [0, 255], got %d", c.AlphaThreshold)}
	}
	return nil
}

// newQuantizer creates a quantizer for the specified algorithm.
func newQuantizer(alg Algorithm) (quantizer, error) {
	switch alg {
	case AlgorithmOctree:
		return NewOctreeQuantizer(), nil
	case AlgorithmKMeans:
		return NewKMeansQuantizer(), nil
	case AlgorithmMedianCut:
		return NewMedianCutQuantizer(), nil
	default:
		return nil, &ConfigError{
			Field:  "algorithm",
			Reason: fmt.Sprintf("%q (valid algorithms: %v)", alg, ValidAlgorithms()),
		}
	}
}

// Extractor computes dominant-colour palettes.
// It holds no per-image state and is safe for concurrent use.
type Extractor struct {
	config    Config
	quantizer quantizer
}

// NewExtractor validates cfg and creates an Extractor for it.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q, err := newQuantizer(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Extractor{config: cfg, quantizer: q}, nil
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config {
	return e.config
}

// Extract computes the ranked palette of an image.
// An image with no visible pixels yields an empty palette.
func (e *Extractor) Extract(img image.Image) *Palette {
	if img == nil {
		return &Palette{}
	}

	h := visibleHistogram(img, uint8(e.config.AlphaThreshold))
	if h.total == 0 {
		return &Palette{}
	}

	clusters := e.quantizer.Quantize(h, e.config.MaxColours)
	return newPalette(clusters, h.total)
}

// ExtractFile loads the image at path and computes its palette.
// When loading fails the returned palette is empty and err describes the cause,
// so callers can report the failure and carry on.
func (e *Extractor) ExtractFile(loader Loader, path string) (*Palette, error) {
	img, err := loader.Load(path)
	if err != nil {
		return &Palette{}, err
	}
	return e.Extract(img), nil
}
