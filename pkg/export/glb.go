// Package export converts a decoded point cloud into a binary glTF (GLB)
// document for quick preview in standard viewers.
//
// The export is intentionally lossy: splats become plain colored points, so
// anisotropic scale, rotation, and view-dependent color are dropped. It is a
// preview aid, not a round-trippable container.
package export

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/SplatTools/splatFileTools/pkg/cloud"
)

// ToGLB builds a GLB document with one POINTS-mode primitive holding the
// cloud's positions and vertex colors.
func ToGLB(c *cloud.PointCloud) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid point cloud: %w", err)
	}

	positions := make([][3]float32, c.PointCount())
	for i, p := range c.Position {
		positions[i] = [3]float32{float32(p[0]), float32(p[1]), float32(p[2])}
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "splatFileTools"
	posAccessor := modeler.WritePosition(doc, positions)
	colorAccessor := modeler.WriteColor(doc, c.Color)

	prim := &gltf.Primitive{
		Mode: gltf.PrimitivePoints,
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
	}
	name := c.Name
	if name == "" {
		name = "PointCloud"
	}
	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode glb: %w", err)
	}
	return out.Bytes(), nil
}
