// Package sh evaluates real spherical-harmonics color coefficients for
// Gaussian splats.
//
// Coefficients are laid out as the decoder produces them: indices 0..2 hold
// the degree-0 (DC) RGB term, followed by each higher band's terms with the
// three RGB channels of every basis function contiguous. Degree d uses
// 3*(d+1)² coefficients in total.
package sh

import "math"

// Basis normalization constants for the real spherical harmonics, degree 0-3.
const (
	C0 = 0.28209479177387814 // 1 / (2*sqrt(pi))
	C1 = 0.4886025119029199  // sqrt(3) / (2*sqrt(pi))
)

var (
	C2 = [5]float64{
		1.0925484305920792, // sqrt(15) / (2*sqrt(pi))
		-1.0925484305920792,
		0.31539156525252005, // sqrt(5) / (4*sqrt(pi))
		-1.0925484305920792,
		0.5462742152960396, // sqrt(15) / (4*sqrt(pi))
	}
	C3 = [7]float64{
		-0.5900435899266435,
		2.890611442640554,
		-0.4570457994644658,
		0.3731763325901154,
		-0.4570457994644658,
		1.445305721320277,
		-0.5900435899266435,
	}
)

// CoeffCount returns the number of coefficients (RGB channels included) used
// by an evaluation up to the given degree.
func CoeffCount(degree int) int {
	basis := (degree + 1) * (degree + 1)
	return basis * 3
}

// DefaultDirection is the forward view direction used when none applies.
var DefaultDirection = [3]float64{0, 0, 1}

// Eval evaluates the coefficients for a view direction and returns RGB with
// each channel clipped to [0, 1].
//
// dir is normalized internally; the zero vector degrades to DefaultDirection
// rather than dividing by zero. A degree outside 0..3 falls back to inferring
// the degree from len(coeffs) using the same thresholds the PLY decoder uses.
// The fallback exists for compatibility with producers that omit the degree;
// new callers should always pass it explicitly.
func Eval(coeffs []float32, dir [3]float64, degree int) [3]float64 {
	if degree < 0 || degree > 3 {
		degree = inferDegree(len(coeffs))
	}

	x, y, z := normalize(dir)

	var acc [3]float64
	for ch := 0; ch < 3 && ch < len(coeffs); ch++ {
		acc[ch] = C0 * float64(coeffs[ch])
	}

	if degree >= 1 && len(coeffs) >= 12 {
		addBand1(&acc, coeffs, x, y, z)
	}
	if degree >= 2 && len(coeffs) >= 27 {
		addBand2(&acc, coeffs, x, y, z)
	}
	if degree >= 3 && len(coeffs) >= 48 {
		addBand3(&acc, coeffs, x, y, z)
	}

	for ch := range acc {
		acc[ch] = clip01(0.5 + acc[ch])
	}
	return acc
}

// CoeffsToRGB evaluates the coefficients at the fixed forward direction and
// returns 0-255 channel values, for view-independent display of the DC term.
func CoeffsToRGB(coeffs []float32, degree int) (r, g, b uint8) {
	rgb := Eval(coeffs, DefaultDirection, degree)
	return uint8(clip01(rgb[0]) * 255), uint8(clip01(rgb[1]) * 255), uint8(clip01(rgb[2]) * 255)
}

func addBand1(acc *[3]float64, coeffs []float32, x, y, z float64) {
	for ch := 0; ch < 3; ch++ {
		acc[ch] += C1 * (-x*float64(coeffs[3+ch]) +
			y*float64(coeffs[6+ch]) +
			-z*float64(coeffs[9+ch]))
	}
}

func addBand2(acc *[3]float64, coeffs []float32, x, y, z float64) {
	xx, yy, zz := x*x, y*y, z*z
	basis := [5]float64{
		x * y,
		y * z,
		2*zz - xx - yy,
		x * z,
		xx - yy,
	}
	for k := 0; k < 5; k++ {
		w := C2[k] * basis[k]
		for ch := 0; ch < 3; ch++ {
			acc[ch] += w * float64(coeffs[12+3*k+ch])
		}
	}
}

func addBand3(acc *[3]float64, coeffs []float32, x, y, z float64) {
	xx, yy, zz := x*x, y*y, z*z
	basis := [7]float64{
		y * (3*xx - yy),
		x * y * z,
		y * (4*zz - xx - yy),
		z * (2*zz - 3*xx - 3*yy),
		x * (4*zz - xx - yy),
		z * (xx - yy),
		x * (xx - 3*yy),
	}
	for k := 0; k < 7; k++ {
		w := C3[k] * basis[k]
		for ch := 0; ch < 3; ch++ {
			acc[ch] += w * float64(coeffs[27+3*k+ch])
		}
	}
}

// inferDegree maps a coefficient count to the highest degree it can satisfy,
// mirroring the PLY rest-coefficient thresholds.
func inferDegree(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 12:
		return 1
	case n <= 27:
		return 2
	default:
		return 3
	}
}

func normalize(dir [3]float64) (x, y, z float64) {
	n := math.Sqrt(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])
	if n == 0 {
		return DefaultDirection[0], DefaultDirection[1], DefaultDirection[2]
	}
	return dir[0] / n, dir[1] / n, dir[2] / n
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
