// Package splat parses the flat .splat container format.
//
// The format is a headerless sequence of 32-byte records:
//
//	offset  0  position  3 x float32 LE
//	offset 12  scale     3 x float32 LE
//	offset 24  color     4 x uint8 (RGBA)
//	offset 28  rotation  4 x uint8, (b-128)/128 per component
//
// There is no magic, no version, and no spherical-harmonics data; the record
// count is the buffer length divided by 32.
package splat

import (
	"encoding/binary"

	"github.com/SplatTools/splatFileTools/pkg/binread"
	"github.com/SplatTools/splatFileTools/pkg/cloud"
	"github.com/SplatTools/splatFileTools/pkg/quat"
)

// RecordSize is the fixed size of one splat record in bytes.
const RecordSize = 32

// Parse decodes a flat .splat buffer into a point cloud.
//
// The buffer length must be a positive multiple of RecordSize; anything else
// is a FormatError. Cancellation is checked between records and surfaces as
// cloud.ErrCanceled with no cloud.
func Parse(data []byte, opts cloud.Options) (*cloud.PointCloud, error) {
	if len(data) == 0 {
		return nil, cloud.FormatErrorf("splat", "no records found (empty buffer)")
	}
	if len(data)%RecordSize != 0 {
		return nil, cloud.FormatErrorf("splat", "buffer length %d is not a multiple of the %d-byte record size",
			len(data), RecordSize)
	}
	count := len(data) / RecordSize

	c := cloud.New(count)
	c.Name = opts.Name
	c.CRS = opts.CRS

	r := binread.New(data)
	for i := 0; i < count; i++ {
		if opts.Canceled() {
			return nil, cloud.ErrCanceled
		}

		x := float64(r.Float32(binary.LittleEndian))
		y := float64(r.Float32(binary.LittleEndian))
		z := float64(r.Float32(binary.LittleEndian))
		c.Position[i] = opts.Transform.Apply(x, y, z)

		c.Scale[i] = [3]float32{
			r.Float32(binary.LittleEndian),
			r.Float32(binary.LittleEndian),
			r.Float32(binary.LittleEndian),
		}

		c.Color[i] = [4]uint8{r.Uint8(), r.Uint8(), r.Uint8(), r.Uint8()}

		// Quantized rotation, passed through without renormalization.
		c.Rotation[i] = quat.FromBytes([4]byte{r.Uint8(), r.Uint8(), r.Uint8(), r.Uint8()})
	}
	if err := r.Err(); err != nil {
		return nil, cloud.FormatErrorf("splat", "short read: %v", err)
	}
	return c, nil
}
