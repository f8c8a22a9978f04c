package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/spritetint/internal/colour"
)

// algorithmValue is a pflag.Value restricted to the known quantizers.
type algorithmValue colour.Algorithm

var _ pflag.Value = (*algorithmValue)(nil)

func newAlgorithmValue(def colour.Algorithm, p *colour.Algorithm) *algorithmValue {
	*p = def
	return (*algorithmValue)(p)
}

func (a *algorithmValue) String() string {
	return string(*a)
}

func (a *algorithmValue) Set(s string) error {
	alg := colour.Algorithm(s)
	if !colour.IsValidAlgorithm(alg) {
		return fmt.Errorf("unknown algorithm %q (valid: %v)", s, colour.ValidAlgorithms())
	}
	*a = algorithmValue(alg)
	return nil
}

func (a *algorithmValue) Type() string {
	return "algorithm"
}

// addExtractionFlags registers the palette tunables shared by analyze and extract.
func addExtractionFlags(flags *pflag.FlagSet, cfg *colour.Config) {
	defaults := colour.DefaultConfig()
	flags.IntVarP(&cfg.MaxColours, "colours", "c", defaults.MaxColours, "maximum number of palette colours (1-256)")
	flags.IntVar(&cfg.AlphaThreshold, "alpha-threshold", defaults.AlphaThreshold, "pixels with alpha at or below this value are ignored (0-255)")
	flags.VarP(newAlgorithmValue(defaults.Algorithm, &cfg.Algorithm), "algorithm", "a", fmt.Sprintf("quantization algorithm %v", colour.ValidAlgorithms()))
}
