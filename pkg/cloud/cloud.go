// Package cloud defines the canonical in-memory representation of a decoded
// Gaussian-splat point cloud, shared by every container parser.
//
// A PointCloud is built once per successful parse and is immutable by
// convention afterwards. All per-point data lives in parallel slices indexed
// 0..PointCount()-1.
package cloud

import "fmt"

// MaxSHDegree is the highest spherical-harmonics degree any parser produces.
const MaxSHDegree = 3

// PointCloud is the canonical decoded splat set.
//
// Rotation quaternions are stored in (w, x, y, z) order. Color always holds a
// displayable RGBA value, even when SH coefficients are present (the DC term
// is mirrored into it during parsing so view-independent consumers never need
// to evaluate SH).
type PointCloud struct {
	Name string
	CRS  string // opaque coordinate-reference token, passed through unmodified

	Position [][3]float64
	Color    [][4]uint8
	Scale    [][3]float32
	Rotation [][4]float32

	// SHCoeffs is nil when the source carries no view-dependent color.
	// When present, each per-point slice has CoeffCount(SHDegree) entries:
	// indices 0..2 are the DC RGB term, the rest follow in band order with
	// each band's RGB channels contiguous.
	SHCoeffs [][]float32
	SHDegree uint8
}

// New returns a PointCloud with all per-point slices pre-sized to n points.
// SHCoeffs is left nil; parsers that produce SH data allocate it themselves.
func New(n int) *PointCloud {
	return &PointCloud{
		Position: make([][3]float64, n),
		Color:    make([][4]uint8, n),
		Scale:    make([][3]float32, n),
		Rotation: make([][4]float32, n),
	}
}

// PointCount returns the number of points in the cloud.
func (c *PointCloud) PointCount() int {
	return len(c.Position)
}

// Validate checks the parallel-slice invariants: every per-point slice has
// the same length, SHDegree is in range, and when SH coefficients are present
// each point carries exactly CoeffCount(SHDegree) values.
func (c *PointCloud) Validate() error {
	n := len(c.Position)
	if n == 0 {
		return fmt.Errorf("point cloud is empty")
	}
	if len(c.Color) != n {
		return fmt.Errorf("color count %d does not match point count %d", len(c.Color), n)
	}
	if len(c.Scale) != n {
		return fmt.Errorf("scale count %d does not match point count %d", len(c.Scale), n)
	}
	if len(c.Rotation) != n {
		return fmt.Errorf("rotation count %d does not match point count %d", len(c.Rotation), n)
	}
	if c.SHDegree > MaxSHDegree {
		return fmt.Errorf("invalid SH degree %d (max %d)", c.SHDegree, MaxSHDegree)
	}
	if c.SHCoeffs != nil {
		if len(c.SHCoeffs) != n {
			return fmt.Errorf("SH coefficient count %d does not match point count %d", len(c.SHCoeffs), n)
		}
		want := CoeffCount(int(c.SHDegree))
		for i, coeffs := range c.SHCoeffs {
			if len(coeffs) != want {
				return fmt.Errorf("point %d: %d SH coefficients, expected %d for degree %d",
					i, len(coeffs), want, c.SHDegree)
			}
		}
	}
	return nil
}

// CoeffCount returns the number of SH coefficients (RGB channels included)
// stored per point for the given degree: 3 * (degree+1)^2.
func CoeffCount(degree int) int {
	basis := (degree + 1) * (degree + 1)
	return basis * 3
}

// Transform maps raw container coordinates into world space.
type Transform struct {
	Origin [3]float64
	Scale  float64
}

// Identity is the no-op transform.
var Identity = Transform{Scale: 1}

// Apply maps a raw coordinate triple to world space: world = raw*scale + origin.
func (t Transform) Apply(x, y, z float64) [3]float64 {
	return [3]float64{
		x*t.Scale + t.Origin[0],
		y*t.Scale + t.Origin[1],
		z*t.Scale + t.Origin[2],
	}
}

// Options carries the caller-supplied context for a single parse: the
// coordinate transform, reference metadata, and the cooperative cancellation
// query. The zero value is usable except that a zero Scale collapses all
// positions onto the origin; use Identity when no transform is wanted.
type Options struct {
	Transform Transform
	CRS       string
	Name      string

	// Cancel is polled between records (or batches of records) during a
	// parse. Returning true aborts the parse with ErrCanceled and no cloud.
	// In-flight record decoding always completes before the next check.
	// Nil means the parse cannot be canceled.
	Cancel func() bool
}

// Canceled reports whether the caller has requested cancellation.
func (o *Options) Canceled() bool {
	return o.Cancel != nil && o.Cancel()
}
