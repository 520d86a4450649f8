package spz

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"

	"github.com/SplatTools/splatFileTools/pkg/binread"
	"github.com/SplatTools/splatFileTools/pkg/cloud"
	"github.com/SplatTools/splatFileTools/pkg/quat"
)

// cancelBatch is the number of points decoded between cancellation checks.
// SPZ records are tiny, so a per-record poll would dominate the decode loop.
const cancelBatch = 8192

// Parse gunzips and decodes an SPZ buffer into a point cloud.
//
// Corrupt gzip framing is a DecompressionError; a bad magic, zero point
// count, or short payload is a FormatError; an unknown wire version is an
// UnsupportedFormatError. Cancellation is polled every cancelBatch points
// and aborts with cloud.ErrCanceled and no cloud.
func Parse(data []byte, opts cloud.Options) (*cloud.PointCloud, error) {
	raw, err := gunzip(data)
	if err != nil {
		return nil, &cloud.DecompressionError{Format: "spz", Err: err}
	}

	var h Header
	if err := h.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	want := HeaderSize + h.payloadSize()
	if len(raw) < want {
		return nil, cloud.FormatErrorf("spz", "insufficient data (got %d bytes, expected %d for %d points)",
			len(raw), want, h.PointCount)
	}

	count := int(h.PointCount)
	c := cloud.New(count)
	c.Name = opts.Name
	c.CRS = opts.CRS
	c.SHDegree = h.SHDegree

	r := binread.New(raw)
	r.Skip(HeaderSize)

	// Positions: per axis, a little-endian 24-bit fixed-point integer with
	// h.FractionalBits fractional bits.
	unit := math.Ldexp(1, -int(h.FractionalBits))
	for i := 0; i < count; i++ {
		if i%cancelBatch == 0 && opts.Canceled() {
			return nil, cloud.ErrCanceled
		}
		x := float64(r.Int24()) * unit
		y := float64(r.Int24()) * unit
		z := float64(r.Int24()) * unit
		c.Position[i] = opts.Transform.Apply(x, y, z)
	}

	// Alphas, then colors, copied verbatim.
	for i := 0; i < count; i++ {
		c.Color[i][3] = r.Uint8()
	}
	if opts.Canceled() {
		return nil, cloud.ErrCanceled
	}
	for i := 0; i < count; i++ {
		c.Color[i][0] = r.Uint8()
		c.Color[i][1] = r.Uint8()
		c.Color[i][2] = r.Uint8()
	}
	if opts.Canceled() {
		return nil, cloud.ErrCanceled
	}

	// Scales: signed bytes, log-encoded in sixteenths.
	for i := 0; i < count; i++ {
		for ax := 0; ax < 3; ax++ {
			c.Scale[i][ax] = float32(math.Exp(float64(r.Int8()) / 16))
		}
	}
	if opts.Canceled() {
		return nil, cloud.ErrCanceled
	}

	// Rotations: version-dependent quaternion codec.
	if h.Version == Version3 {
		for i := 0; i < count; i++ {
			if i%cancelBatch == 0 && opts.Canceled() {
				return nil, cloud.ErrCanceled
			}
			c.Rotation[i] = quat.FromPacked(r.Uint32(binary.LittleEndian))
		}
	} else {
		for i := 0; i < count; i++ {
			if i%cancelBatch == 0 && opts.Canceled() {
				return nil, cloud.ErrCanceled
			}
			c.Rotation[i] = quat.FromXYZBytes(r.Int8(), r.Int8(), r.Int8())
		}
	}

	// Optional spherical harmonics: signed bytes scaled by 1/127, DC first,
	// the rest in encoded order. The wire carries fewer values than the
	// canonical 3*(degree+1)^2 layout; the tail stays zero.
	if per := h.CoeffsPerPoint(); per > 0 {
		full := cloud.CoeffCount(int(h.SHDegree))
		c.SHCoeffs = make([][]float32, count)
		for i := 0; i < count; i++ {
			if i%cancelBatch == 0 && opts.Canceled() {
				return nil, cloud.ErrCanceled
			}
			coeffs := make([]float32, full)
			for k := 0; k < per; k++ {
				coeffs[k] = float32(r.Int8()) / 127
			}
			c.SHCoeffs[i] = coeffs
		}
	}

	if err := r.Err(); err != nil {
		return nil, cloud.FormatErrorf("spz", "short read: %v", err)
	}
	return c, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
