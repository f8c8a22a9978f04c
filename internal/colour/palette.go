// Package colour provides dominant-colour extraction for sprite images.
package colour

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB represents a colour in 8-bit RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a lowercase hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}.Hex()
}

// ParseHex parses a "#rrggbb" string into an RGB value.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Entry is one palette colour and its share of the visible pixels.
type Entry struct {
	Hex        string
	Proportion float64
}

// Palette is an ordered list of entries, most dominant first.
// The zero value is an empty palette.
type Palette struct {
	Entries []Entry
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// Sum returns the total of all proportions.
func (p *Palette) Sum() float64 {
	if p == nil {
		return 0
	}
	var total float64
	for _, e := range p.Entries {
		total += e.Proportion
	}
	return total
}

// MarshalJSON encodes the palette as a JSON object keyed by hex colour.
// Keys are written in palette order so the most dominant colour comes first.
func (p Palette) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Hex)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Proportion)
		if err != nil {
			return nil, fmt.Errorf("failed to encode proportion for %s: %w", e.Hex, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keyed by hex colour, keeping key order.
func (p *Palette) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("palette must be a JSON object, got %v", tok)
	}

	p.Entries = p.Entries[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		if _, err := ParseHex(key); err != nil {
			return err
		}
		var proportion float64
		if err := dec.Decode(&proportion); err != nil {
			return fmt.Errorf("failed to decode proportion for %s: %w", key, err)
		}
		p.Entries = append(p.Entries, Entry{Hex: key, Proportion: proportion})
	}
	_, err = dec.Token()
	return err
}

// String returns a human-readable representation of the palette.
func (p *Palette) String() string {
	return p.Format(false)
}

// Format renders one line per colour with its percentage share.
// When preview is true each line is prefixed with an ANSI colour swatch.
func (p *Palette) Format(preview bool) string {
	if p.Len() == 0 {
		return "Empty palette\n"
	}

	var sb strings.Builder
	for i, e := range p.Entries {
		line := fmt.Sprintf("%2d: %s %6.2f%%", i+1, e.Hex, e.Proportion*100)
		if preview {
			if rgb, err := ParseHex(e.Hex); err == nil {
				line = ColourPreview(rgb, defaultWidth) + " " + line
			}
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// roundTo rounds v to the given number of decimal places. Exact ties go to
// the even digit.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// newPalette turns quantized clusters into a ranked palette.
// Clusters with identical hex strings are merged. Proportions are rounded to
// four decimal places and are not renormalised afterwards.
func newPalette(clusters []Cluster, total uint64) *Palette {
	if total == 0 {
		return &Palette{}
	}

	entries := make([]Entry, 0, len(clusters))
	index := make(map[string]int, len(clusters))
	for _, c := range clusters {
		if c.Count == 0 {
			continue
		}
		hex := c.Colour.Hex()
		ratio := float64(c.Count) / float64(total)
		if i, ok := index[hex]; ok {
			entries[i].Proportion += ratio
			continue
		}
		index[hex] = len(entries)
		entries = append(entries, Entry{Hex: hex, Proportion: ratio})
	}

	for i := range entries {
		entries[i].Proportion = roundTo(entries[i].Proportion, 4)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Proportion > b.Proportion:
			return -1
		case a.Proportion < b.Proportion:
			return 1
		default:
			return 0
		}
	})

	return &Palette{Entries: entries}
}
