package colour

import (
	"cmp"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/ericpauley/go-quantize/quantize"
)

// MedianCutQuantizer splits the colour population at the weighted median of
// its widest channel until k buckets remain, and uses each bucket's weighted
// mean as its colour.
type MedianCutQuantizer struct{}

// NewMedianCutQuantizer creates a new MedianCutQuantizer.
func NewMedianCutQuantizer() *MedianCutQuantizer {
	return &MedianCutQuantizer{}
}

// Quantize clusters the histogram into at most k colours. Every unique colour
// is counted against the nearest bucket colour.
func (q *MedianCutQuantizer) Quantize(h histogram, k int) []Cluster {
	if h.len() == 0 || k < 1 {
		return nil
	}
	if h.len() <= k {
		return h.clusters()
	}

	// One opaque pixel per unique colour, weighted by its population.
	strip := image.NewNRGBA(image.Rect(0, 0, h.len(), 1))
	for i, c := range h.colours {
		strip.SetNRGBA(i, 0, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	mc := quantize.MedianCutQuantizer{
		Aggregation: quantize.Mean,
		Weighting: func(_ image.Image, x, _ int) uint32 {
			return uint32(min(h.counts[x], math.MaxUint32))
		},
	}
	palette := mc.Quantize(make(color.Palette, 0, k), strip)

	// Bucket order is not part of the result.
	centres := make([]RGB, 0, len(palette))
	for _, c := range palette {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		centres = append(centres, RGB{R: n.R, G: n.G, B: n.B})
	}
	slices.SortFunc(centres, func(a, b RGB) int {
		return cmp.Compare(pack(a.R, a.G, a.B), pack(b.R, b.G, b.B))
	})
	centres = slices.Compact(centres)
	if len(centres) == 0 {
		return nil
	}

	counts := make([]uint64, len(centres))
	for i, c := range h.colours {
		best, bestDist := 0, colourDistanceSq(c, centres[0])
		for j := 1; j < len(centres); j++ {
			if d := colourDistanceSq(c, centres[j]); d < bestDist {
				best, bestDist = j, d
			}
		}
		counts[best] += h.counts[i]
	}

	clusters := make([]Cluster, 0, len(centres))
	for i, c := range centres {
		if counts[i] == 0 {
			continue
		}
		clusters = append(clusters, Cluster{Colour: c, Count: counts[i]})
	}
	return clusters
}
