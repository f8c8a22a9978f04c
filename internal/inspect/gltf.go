package inspect

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/qmuntal/gltf"

	"github.com/jmylchreest/spritetint/internal/image"
)

// Animation summarises one animation clip in a glTF asset.
type Animation struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Channels int    `json:"channels"`
	Samplers int    `json:"samplers"`
}

// GLTFAnimations lists the animations in a .gltf or .glb file.
// An asset without animations yields an empty slice.
func GLTFAnimations(path string) ([]Animation, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &image.NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read glTF %s: %w", path, err)
	}

	anims := make([]Animation, 0, len(doc.Animations))
	for i, a := range doc.Animations {
		anims = append(anims, Animation{
			Index:    i,
			Name:     a.Name,
			Channels: len(a.Channels),
			Samplers: len(a.Samplers),
		})
	}
	return anims, nil
}
