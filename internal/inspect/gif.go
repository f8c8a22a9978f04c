// Package inspect reports structural details of animation assets.
package inspect

import (
	"errors"
	"fmt"
	"image/gif"
	"io/fs"
	"os"
	"time"

	"github.com/jmylchreest/spritetint/internal/image"
)

// GIFInfo describes an animated or still GIF.
type GIFInfo struct {
	Path        string          `json:"path"`
	Format      string          `json:"format"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Frames      int             `json:"frames"`
	Animated    bool            `json:"animated"`
	LoopCount   int             `json:"loop_count"`
	Delays      []time.Duration `json:"delays"`
	Duration    time.Duration   `json:"duration"`
	Transparent bool            `json:"transparent"`
}

// Loops returns a human-readable loop description.
func (g *GIFInfo) Loops() string {
	switch {
	case g.LoopCount == 0:
		return "forever"
	case g.LoopCount < 0:
		return "once"
	default:
		return fmt.Sprintf("%d extra", g.LoopCount)
	}
}

// GIF decodes every frame of the GIF at path and summarises it.
func GIF(path string) (*GIFInfo, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified asset path, intended to be read
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &image.NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open gif: %w", err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, &image.DecodeError{Path: path, Format: "gif", Err: err}
	}

	info := &GIFInfo{
		Path:      path,
		Format:    "gif",
		Width:     g.Config.Width,
		Height:    g.Config.Height,
		Frames:    len(g.Image),
		Animated:  len(g.Image) > 1,
		LoopCount: g.LoopCount,
		Delays:    make([]time.Duration, len(g.Delay)),
	}

	// Delays are stored in hundredths of a second.
	for i, d := range g.Delay {
		info.Delays[i] = time.Duration(d) * 10 * time.Millisecond
		info.Duration += info.Delays[i]
	}

	for _, frame := range g.Image {
		for _, c := range frame.Palette {
			if _, _, _, a := c.RGBA(); a == 0 {
				info.Transparent = true
				break
			}
		}
		if info.Transparent {
			break
		}
	}

	return info, nil
}
