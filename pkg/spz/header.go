// Package spz parses the compressed SPZ Gaussian-splat container.
//
// An SPZ file is a gzip stream wrapping a 16-byte header followed by
// fixed-stride per-attribute sections in a set order: positions (24-bit
// fixed point), alphas, RGB colors, log-encoded scales, rotations (encoding
// depends on the wire version), and optional spherical-harmonics
// coefficients.
package spz

import (
	"encoding/binary"

	"github.com/SplatTools/splatFileTools/pkg/cloud"
)

// Magic identifies an SPZ header ("NGSP" little-endian).
const Magic = 0x5053474E

// HeaderSize is the fixed binary size of an SPZ header.
const HeaderSize = 16 // 4 + 4 + 4 + 1 + 1 + 1 + 1 bytes

// Supported wire versions. Version 2 stores rotations as three signed bytes;
// version 3 packs them into a 32-bit smallest-three word.
const (
	Version2 = 2
	Version3 = 3
)

// Header is the decoded SPZ file header.
type Header struct {
	MagicNumber    uint32
	Version        uint32
	PointCount     uint32
	SHDegree       uint8
	FractionalBits uint8
	Flags          uint8
	Reserved       uint8
}

// DecodeFrom reads the header fields from the given buffer.
// Does not validate - use UnmarshalBinary for validation.
func (h *Header) DecodeFrom(data []byte) {
	h.MagicNumber = binary.LittleEndian.Uint32(data[0:4])
	h.Version = binary.LittleEndian.Uint32(data[4:8])
	h.PointCount = binary.LittleEndian.Uint32(data[8:12])
	h.SHDegree = data[12]
	h.FractionalBits = data[13]
	h.Flags = data[14]
	h.Reserved = data[15]
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return cloud.FormatErrorf("spz", "buffer too small for header (got %d bytes, need %d)", len(data), HeaderSize)
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// Validate checks the header for validity. Unknown versions are reported as
// UnsupportedFormatError so callers can tell "newer than me" apart from
// corruption.
func (h *Header) Validate() error {
	if h.MagicNumber != Magic {
		return cloud.FormatErrorf("spz", "bad magic number (got 0x%08X, expected 0x%08X)", h.MagicNumber, Magic)
	}
	if h.Version != Version2 && h.Version != Version3 {
		return cloud.UnsupportedFormatErrorf("spz", "version %d (supported: %d, %d)", h.Version, Version2, Version3)
	}
	if h.PointCount == 0 {
		return cloud.FormatErrorf("spz", "file contains no points")
	}
	if h.SHDegree > cloud.MaxSHDegree {
		return cloud.FormatErrorf("spz", "invalid SH degree %d (max %d)", h.SHDegree, cloud.MaxSHDegree)
	}
	return nil
}

// CoeffsPerPoint returns the number of SH coefficient bytes stored per point
// for the header's degree: 0, 9, 24 or 45.
func (h *Header) CoeffsPerPoint() int {
	switch h.SHDegree {
	case 1:
		return 9
	case 2:
		return 24
	case 3:
		return 45
	default:
		return 0
	}
}

// rotationSize returns the per-point rotation section stride for the
// header's version.
func (h *Header) rotationSize() int {
	if h.Version == Version3 {
		return 4
	}
	return 3
}

// payloadSize returns the total byte size of all sections after the header.
func (h *Header) payloadSize() int {
	n := int(h.PointCount)
	return n*9 + // positions, 3 bytes per axis
		n + // alphas
		n*3 + // colors
		n*3 + // scales
		n*h.rotationSize() +
		n*h.CoeffsPerPoint()
}
