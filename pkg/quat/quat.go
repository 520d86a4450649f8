// Package quat decodes the rotation encodings used by Gaussian-splat
// containers. All functions return a quaternion as [4]float32 in
// (w, x, y, z) order.
package quat

import "math"

// FromBytes decodes the flat-container encoding: four unsigned bytes, each
// mapped (b-128)/128 into roughly [-1, 1).
//
// The result is not renormalized. Producers of this encoding quantize an
// already-unit quaternion, and downstream consumers tolerate the small
// deviation from unit length that quantization introduces.
func FromBytes(b [4]byte) [4]float32 {
	return [4]float32{
		(float32(b[0]) - 128) / 128,
		(float32(b[1]) - 128) / 128,
		(float32(b[2]) - 128) / 128,
		(float32(b[3]) - 128) / 128,
	}
}

// FromXYZBytes decodes the drop-w encoding: x, y, z as signed bytes scaled by
// 1/127, with w reconstructed from the unit-quaternion constraint.
func FromXYZBytes(x, y, z int8) [4]float32 {
	fx := float64(x) / 127
	fy := float64(y) / 127
	fz := float64(z) / 127
	w := math.Sqrt(math.Max(0, 1-fx*fx-fy*fy-fz*fz))
	return [4]float32{float32(w), float32(fx), float32(fy), float32(fz)}
}

// FromPacked decodes the smallest-three encoding packed into 32 bits:
//
//	bits  1..0   index of the omitted (largest-magnitude) component
//	bits 11..2   c0, 10-bit two's complement
//	bits 21..12  c1, 10-bit two's complement
//	bits 31..22  c2, 10-bit two's complement
//
// Each fraction is scaled by 1/511. The omitted component is reconstructed as
// sqrt(max(0, 1-c0²-c1²-c2²)) and placed in the slot named by the index
// (0→w, 1→x, 2→y, 3→z); the three stored fractions fill the remaining slots
// in order.
func FromPacked(v uint32) [4]float32 {
	largest := v & 0x3
	c0 := signExtend10(v >> 2 & 0x3FF)
	c1 := signExtend10(v >> 12 & 0x3FF)
	c2 := signExtend10(v >> 22 & 0x3FF)

	f0 := float64(c0) / 511
	f1 := float64(c1) / 511
	f2 := float64(c2) / 511
	rec := math.Sqrt(math.Max(0, 1-f0*f0-f1*f1-f2*f2))

	switch largest {
	case 0:
		return [4]float32{float32(rec), float32(f0), float32(f1), float32(f2)}
	case 1:
		return [4]float32{float32(f0), float32(rec), float32(f1), float32(f2)}
	case 2:
		return [4]float32{float32(f0), float32(f1), float32(rec), float32(f2)}
	default:
		return [4]float32{float32(f0), float32(f1), float32(f2), float32(rec)}
	}
}

// signExtend10 widens a 10-bit two's-complement value to int32.
func signExtend10(v uint32) int32 {
	if v&0x200 != 0 {
		return int32(v) - 0x400
	}
	return int32(v)
}

// Normalize scales q to unit length. A zero quaternion yields the identity
// rotation (1, 0, 0, 0) instead of dividing by zero.
func Normalize(q [4]float32) [4]float32 {
	n := math.Sqrt(float64(q[0])*float64(q[0]) + float64(q[1])*float64(q[1]) +
		float64(q[2])*float64(q[2]) + float64(q[3])*float64(q[3]))
	if n == 0 {
		return [4]float32{1, 0, 0, 0}
	}
	inv := float32(1 / n)
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// Norm returns the Euclidean length of q.
func Norm(q [4]float32) float64 {
	return math.Sqrt(float64(q[0])*float64(q[0]) + float64(q[1])*float64(q[1]) +
		float64(q[2])*float64(q[2]) + float64(q[3])*float64(q[3]))
}
