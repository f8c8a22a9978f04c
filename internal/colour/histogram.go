package colour

import (
	"image"
	"image/color"
	"slices"
)

// Cluster is a representative colour and the number of visible pixels assigned to it.
type Cluster struct {
	Colour RGB
	Count  uint64
}

// histogram is the visible pixel population of one image, reduced to unique colours.
// Colours are kept in ascending packed order so quantizers see a deterministic input.
type histogram struct {
	colours []RGB
	counts  []uint64
	total   uint64
}

func (h histogram) len() int {
	return len(h.colours)
}

// clusters returns every unique colour as its own cluster.
func (h histogram) clusters() []Cluster {
	clusters := make([]Cluster, h.len())
	for i, c := range h.colours {
		clusters[i] = Cluster{Colour: c, Count: h.counts[i]}
	}
	return clusters
}

func pack(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func unpack(key uint32) RGB {
	return RGB{R: uint8(key >> 16), G: uint8(key >> 8), B: uint8(key)}
}

// visibleHistogram counts every pixel whose alpha is strictly above threshold.
func visibleHistogram(img image.Image, threshold uint8) histogram {
	counts := make(map[uint32]uint64)
	var total uint64

	add := func(r, g, b, a uint8) {
		if a <= threshold {
			return
		}
		counts[pack(r, g, b)]++
		total++
	}

	bounds := img.Bounds()
	switch src := img.(type) {
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, y):src.PixOffset(bounds.Max.X, y)]
			for i := 0; i+3 < len(row); i += 4 {
				add(row[i], row[i+1], row[i+2], row[i+3])
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				n := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				add(n.R, n.G, n.B, n.A)
			}
		}
	}

	keys := make([]uint32, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h := histogram{
		colours: make([]RGB, len(keys)),
		counts:  make([]uint64, len(keys)),
		total:   total,
	}
	for i, k := range keys {
		h.colours[i] = unpack(k)
		h.counts[i] = counts[k]
	}
	return h
}
