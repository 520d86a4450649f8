// Package ply parses the binary PLY container format carrying Gaussian-splat
// vertex data.
//
// A PLY file opens with a textual header that declares the encoding, the
// vertex count, and an ordered property schema; binary vertex records follow
// immediately after the "end_header" line. Field meaning is resolved by
// property name, never by position, because producers vary the schema freely.
package ply

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/SplatTools/splatFileTools/pkg/cloud"
)

// headerTerminator closes the textual header; binary records start right
// after it.
const headerTerminator = "end_header\n"

// Kind identifies a fixed-width numeric property type.
type Kind uint8

const (
	KindFloat32 Kind = iota
	KindFloat64
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
)

// Size returns the encoded size of the kind in bytes.
func (k Kind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindFloat64:
		return 8
	default:
		return 4
	}
}

// kindNames maps both the classic and the sized PLY type spellings.
var kindNames = map[string]Kind{
	"float":   KindFloat32,
	"float32": KindFloat32,
	"double":  KindFloat64,
	"float64": KindFloat64,
	"char":    KindInt8,
	"int8":    KindInt8,
	"uchar":   KindUint8,
	"uint8":   KindUint8,
	"short":   KindInt16,
	"int16":   KindInt16,
	"ushort":  KindUint16,
	"uint16":  KindUint16,
	"int":     KindInt32,
	"int32":   KindInt32,
	"uint":    KindUint32,
	"uint32":  KindUint32,
}

// Property is one named field of the vertex record.
type Property struct {
	Name string
	Kind Kind
}

// Header is the parsed PLY header: encoding, vertex count, and the ordered
// property schema with the derived record stride.
type Header struct {
	Count      int
	ByteOrder  binary.ByteOrder
	Properties []Property

	index  map[string]int // property name -> schema position
	stride int
}

// Stride returns the fixed byte size of one vertex record.
func (h *Header) Stride() int {
	return h.stride
}

// Index returns the schema position of the named property and whether it
// exists.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// parseHeader splits data into the parsed header and the binary record
// region that follows the terminator.
func parseHeader(data []byte) (*Header, []byte, error) {
	end := strings.Index(string(data), headerTerminator)
	if end < 0 {
		return nil, nil, cloud.FormatErrorf("ply", "no end_header terminator found")
	}
	headerText := string(data[:end])
	body := data[end+len(headerTerminator):]

	h := &Header{index: make(map[string]int)}
	binaryFormat := false
	asciiFormat := false

	for _, line := range strings.Split(headerText, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, nil, cloud.FormatErrorf("ply", "malformed format line %q", line)
			}
			switch fields[1] {
			case "binary_little_endian":
				binaryFormat = true
				h.ByteOrder = binary.LittleEndian
			case "binary_big_endian":
				binaryFormat = true
				h.ByteOrder = binary.BigEndian
			case "ascii":
				asciiFormat = true
			default:
				return nil, nil, cloud.FormatErrorf("ply", "unknown format %q", fields[1])
			}
		case "element":
			if len(fields) == 3 && fields[1] == "vertex" {
				n, err := strconv.Atoi(fields[2])
				if err != nil || n < 0 {
					return nil, nil, cloud.FormatErrorf("ply", "bad vertex count %q", fields[2])
				}
				h.Count = n
			}
		case "property":
			if len(fields) < 3 {
				return nil, nil, cloud.FormatErrorf("ply", "malformed property line %q", line)
			}
			if fields[1] == "list" {
				return nil, nil, cloud.UnsupportedFormatErrorf("ply", "list properties are not supported")
			}
			kind, ok := kindNames[fields[1]]
			if !ok {
				// Unknown scalar types decode as float32, matching
				// established reader behavior.
				kind = KindFloat32
			}
			name := fields[2]
			h.index[name] = len(h.Properties)
			h.Properties = append(h.Properties, Property{Name: name, Kind: kind})
			h.stride += kind.Size()
		}
	}

	if asciiFormat {
		return nil, nil, cloud.UnsupportedFormatErrorf("ply", "ascii encoding is not supported")
	}
	if !binaryFormat {
		return nil, nil, cloud.FormatErrorf("ply", "no format line declared")
	}
	if h.Count == 0 {
		return nil, nil, cloud.FormatErrorf("ply", "no vertices declared")
	}
	if len(h.Properties) == 0 {
		return nil, nil, cloud.FormatErrorf("ply", "no vertex properties declared")
	}
	// An absurd count whose record region cannot fit in the buffer is caught
	// here, before any allocation sized from it.
	if h.Count > len(body)/h.stride {
		return nil, nil, cloud.FormatErrorf("ply", "insufficient vertex data (got %d bytes, expected %d per vertex for %d vertices)",
			len(body), h.stride, h.Count)
	}
	return h, body, nil
}
