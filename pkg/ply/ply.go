package ply

import (
	"fmt"
	"math"

	"github.com/SplatTools/splatFileTools/pkg/binread"
	"github.com/SplatTools/splatFileTools/pkg/cloud"
	"github.com/SplatTools/splatFileTools/pkg/quat"
	"github.com/SplatTools/splatFileTools/pkg/sh"
)

// maxRestIndex is the highest f_rest_<k> coefficient index any supported
// degree uses (degree 3 carries rest indices 0..44).
const maxRestIndex = 44

// fieldLayout holds the pre-resolved schema positions of every property the
// decoder consumes, so the per-record loop never searches by name.
type fieldLayout struct {
	x, y, z int

	dc      [3]int // f_dc_0..2, -1 when absent
	hasDC   bool
	rest    []int // schema position per f_rest_<k>, -1 when absent
	maxRest int   // highest k seen, -1 when none

	rgb    [3]int // red, green, blue
	hasRGB bool

	opacity  int
	scale    [3]int
	hasScale bool
	rot      [4]int
	hasRot   bool
}

func resolveLayout(h *Header) (*fieldLayout, error) {
	l := &fieldLayout{opacity: -1, maxRest: -1}

	var ok bool
	if l.x, ok = h.Index("x"); !ok {
		return nil, cloud.FormatErrorf("ply", "mandatory property %q is missing", "x")
	}
	if l.y, ok = h.Index("y"); !ok {
		return nil, cloud.FormatErrorf("ply", "mandatory property %q is missing", "y")
	}
	if l.z, ok = h.Index("z"); !ok {
		return nil, cloud.FormatErrorf("ply", "mandatory property %q is missing", "z")
	}

	if _, ok := h.Index("f_dc_0"); ok {
		l.hasDC = true
		for i := 0; i < 3; i++ {
			l.dc[i] = -1
			if idx, ok := h.Index(fmt.Sprintf("f_dc_%d", i)); ok {
				l.dc[i] = idx
			}
		}
	}

	l.rest = make([]int, maxRestIndex+1)
	for k := 0; k <= maxRestIndex; k++ {
		l.rest[k] = -1
		if idx, ok := h.Index(fmt.Sprintf("f_rest_%d", k)); ok {
			l.rest[k] = idx
			l.maxRest = k
		}
	}

	if _, ok := h.Index("red"); ok {
		l.hasRGB = true
		for i, name := range []string{"red", "green", "blue"} {
			l.rgb[i] = -1
			if idx, ok := h.Index(name); ok {
				l.rgb[i] = idx
			}
		}
	}

	if idx, ok := h.Index("opacity"); ok {
		l.opacity = idx
	}

	if _, ok := h.Index("scale_0"); ok {
		l.hasScale = true
		for i := 0; i < 3; i++ {
			l.scale[i] = -1
			if idx, ok := h.Index(fmt.Sprintf("scale_%d", i)); ok {
				l.scale[i] = idx
			}
		}
	}

	if _, ok := h.Index("rot_0"); ok {
		l.hasRot = true
		for i := 0; i < 4; i++ {
			l.rot[i] = -1
			if idx, ok := h.Index(fmt.Sprintf("rot_%d", i)); ok {
				l.rot[i] = idx
			}
		}
	}

	return l, nil
}

// degreeForRest maps the highest f_rest index present to the SH degree the
// file carries. Partially present bands round down to the highest complete
// degree.
func degreeForRest(maxRest int) int {
	switch {
	case maxRest >= 44:
		return 3
	case maxRest >= 23:
		return 2
	case maxRest >= 8:
		return 1
	default:
		return 0
	}
}

// Parse decodes a binary PLY buffer into a point cloud.
//
// Field presence drives behavior: x/y/z are mandatory; when f_dc_* fields are
// present the display color is derived from the SH DC term and the
// coefficients are retained, with the degree inferred from the highest
// f_rest_<k> index; otherwise red/green/blue are copied directly, or the
// color defaults to mid-gray. opacity passes through a sigmoid, scale_* are
// stored log-encoded, rot_* is normalized to unit length. ASCII files are
// rejected with UnsupportedFormatError.
func Parse(data []byte, opts cloud.Options) (*cloud.PointCloud, error) {
	h, body, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	layout, err := resolveLayout(h)
	if err != nil {
		return nil, err
	}

	degree := 0
	var coeffLen int
	if layout.hasDC {
		degree = degreeForRest(layout.maxRest)
		coeffLen = cloud.CoeffCount(degree)
	}

	c := cloud.New(h.Count)
	c.Name = opts.Name
	c.CRS = opts.CRS
	if layout.hasDC {
		c.SHDegree = uint8(degree)
		c.SHCoeffs = make([][]float32, h.Count)
	}

	vals := make([]float64, len(h.Properties))
	r := binread.New(body)

	for i := 0; i < h.Count; i++ {
		if opts.Canceled() {
			return nil, cloud.ErrCanceled
		}

		r.Seek(i * h.Stride())
		for j, p := range h.Properties {
			vals[j] = readValue(r, p.Kind, h)
		}
		if err := r.Err(); err != nil {
			return nil, cloud.FormatErrorf("ply", "vertex %d: short read: %v", i, err)
		}

		c.Position[i] = opts.Transform.Apply(vals[layout.x], vals[layout.y], vals[layout.z])

		switch {
		case layout.hasDC:
			coeffs := make([]float32, coeffLen)
			for ch := 0; ch < 3; ch++ {
				var dc float64
				if layout.dc[ch] >= 0 {
					dc = vals[layout.dc[ch]]
				}
				coeffs[ch] = float32(dc)
				c.Color[i][ch] = uint8(clip(0.5+sh.C0*dc, 0, 1) * 255)
			}
			for k := 0; k <= layout.maxRest && 3+k < coeffLen; k++ {
				if layout.rest[k] >= 0 {
					coeffs[3+k] = float32(vals[layout.rest[k]])
				}
			}
			c.SHCoeffs[i] = coeffs
		case layout.hasRGB:
			for ch := 0; ch < 3; ch++ {
				if layout.rgb[ch] >= 0 {
					c.Color[i][ch] = uint8(clip(vals[layout.rgb[ch]], 0, 255))
				}
			}
		default:
			c.Color[i][0], c.Color[i][1], c.Color[i][2] = 128, 128, 128
		}

		if layout.opacity >= 0 {
			alpha := sigmoid(vals[layout.opacity])
			c.Color[i][3] = uint8(clip(alpha*255, 0, 255))
		} else {
			c.Color[i][3] = 255
		}

		if layout.hasScale {
			for ax := 0; ax < 3; ax++ {
				if layout.scale[ax] >= 0 {
					c.Scale[i][ax] = float32(math.Exp(vals[layout.scale[ax]]))
				} else {
					c.Scale[i][ax] = 1
				}
			}
		} else {
			c.Scale[i] = [3]float32{1, 1, 1}
		}

		if layout.hasRot {
			var q [4]float32
			for k := 0; k < 4; k++ {
				if layout.rot[k] >= 0 {
					q[k] = float32(vals[layout.rot[k]])
				}
			}
			c.Rotation[i] = quat.Normalize(q)
		} else {
			c.Rotation[i] = [4]float32{1, 0, 0, 0}
		}
	}

	return c, nil
}

// readValue decodes one property as float64, the common carrier for every
// numeric kind.
func readValue(r *binread.Reader, k Kind, h *Header) float64 {
	switch k {
	case KindFloat64:
		return r.Float64(h.ByteOrder)
	case KindInt8:
		return float64(r.Int8())
	case KindUint8:
		return float64(r.Uint8())
	case KindInt16:
		return float64(r.Int16(h.ByteOrder))
	case KindUint16:
		return float64(r.Uint16(h.ByteOrder))
	case KindInt32:
		return float64(r.Int32(h.ByteOrder))
	case KindUint32:
		return float64(r.Uint32(h.ByteOrder))
	default:
		return float64(r.Float32(h.ByteOrder))
	}
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
