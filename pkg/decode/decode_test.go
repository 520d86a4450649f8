package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"

	"github.com/SplatTools/splatFileTools/pkg/cloud"
	"github.com/SplatTools/splatFileTools/pkg/spz"
)

// flatRecord is one zero-position 32-byte .splat record.
func flatRecord() []byte {
	buf := make([]byte, 32)
	// Unit scale, opaque white, identity-ish rotation.
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(1))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(1))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(1))
	copy(buf[24:28], []byte{255, 255, 255, 255})
	copy(buf[28:32], []byte{255, 128, 128, 128})
	return buf
}

// minimalPLY is a one-vertex binary PLY with positions only.
func minimalPLY() []byte {
	header := "ply\nformat binary_little_endian 1.0\nelement vertex 1\n" +
		"property float x\nproperty float y\nproperty float z\nend_header\n"
	buf := []byte(header)
	for _, v := range []float32{1, 2, 3} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// minimalSPZ is a gzipped one-point version-3 SPZ buffer.
func minimalSPZ(t *testing.T) []byte {
	t.Helper()
	var raw []byte
	raw = binary.LittleEndian.AppendUint32(raw, spz.Magic)
	raw = binary.LittleEndian.AppendUint32(raw, spz.Version3)
	raw = binary.LittleEndian.AppendUint32(raw, 1)
	raw = append(raw, 0, 12, 0, 0)
	raw = append(raw, make([]byte, 9)...)          // position
	raw = append(raw, 128)                         // alpha
	raw = append(raw, 7, 8, 9)                     // color
	raw = append(raw, 0, 0, 0)                     // scale
	raw = binary.LittleEndian.AppendUint32(raw, 0) // rotation, w slot

	var out bytes.Buffer
	zw := gzip.NewWriter(&out)
	if _, err := zw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

func TestDecodeDispatch(t *testing.T) {
	opts := cloud.Options{Transform: cloud.Identity}

	c, err := Decode("scene.splat", flatRecord(), opts)
	if err != nil {
		t.Fatalf("splat dispatch: %v", err)
	}
	if c.PointCount() != 1 || c.Name != "scene" {
		t.Errorf("splat: count=%d name=%q", c.PointCount(), c.Name)
	}

	c, err = Decode("scene.ply", minimalPLY(), opts)
	if err != nil {
		t.Fatalf("ply dispatch: %v", err)
	}
	if c.Position[0] != [3]float64{1, 2, 3} {
		t.Errorf("ply: position %v", c.Position[0])
	}

	c, err = Decode("scene.spz", minimalSPZ(t), opts)
	if err != nil {
		t.Fatalf("spz dispatch: %v", err)
	}
	if c.Color[0] != [4]uint8{7, 8, 9, 128} {
		t.Errorf("spz: color %v", c.Color[0])
	}

	// Unknown suffixes fall through to the flat parser.
	if _, err := Decode("scene.bin", flatRecord(), opts); err != nil {
		t.Errorf("unknown suffix should use the flat parser: %v", err)
	}

	// Suffix matching is case-insensitive.
	if _, err := Decode("SCENE.PLY", minimalPLY(), opts); err != nil {
		t.Errorf("uppercase suffix: %v", err)
	}
}

func TestDecodeZstWrapper(t *testing.T) {
	inner := minimalPLY()
	wrapped, err := zstd.Compress(nil, inner)
	if err != nil {
		t.Fatalf("compress fixture: %v", err)
	}

	c, err := Decode("scene.ply.zst", wrapped, cloud.Options{Transform: cloud.Identity})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Position[0] != [3]float64{1, 2, 3} {
		t.Errorf("position %v", c.Position[0])
	}
	if c.Name != "scene" {
		t.Errorf("expected name %q, got %q", "scene", c.Name)
	}

	var de *cloud.DecompressionError
	if _, err := Decode("scene.ply.zst", []byte("garbage"), cloud.Options{}); !errors.As(err, &de) {
		t.Errorf("corrupt zstd: expected DecompressionError, got %v", err)
	}
}

func TestDecodeDefaultNames(t *testing.T) {
	data := flatRecord()

	c, err := Decode("", data, cloud.Options{Transform: cloud.Identity})
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("splat-%016x", SourceDigest(data))
	if c.Name != want {
		t.Errorf("expected digest name %q, got %q", want, c.Name)
	}

	// An explicit name hint wins over the filename.
	c, err = Decode("scene.splat", data, cloud.Options{Transform: cloud.Identity, Name: "custom"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "custom" {
		t.Errorf("expected %q, got %q", "custom", c.Name)
	}
}

func TestDecodeCancellation(t *testing.T) {
	data := bytes.Repeat(flatRecord(), 1000)
	opts := cloud.Options{
		Transform: cloud.Identity,
		Cancel:    func() bool { return true },
	}
	c, err := Decode("scene.splat", data, opts)
	if !errors.Is(err, cloud.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if c != nil {
		t.Error("canceled decode must not return a cloud")
	}
}

func TestSourceDigest(t *testing.T) {
	a := SourceDigest([]byte("scene data"))
	if a != SourceDigest([]byte("scene data")) {
		t.Error("digest must be stable")
	}
	if a == SourceDigest([]byte("other data")) {
		t.Error("different buffers should not collide on trivial inputs")
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"scene.splat", "scene"},
		{"https://example.com/models/garden.ply", "garden"},
		{"C:\\data\\scan.spz", "scan"},
		{"archive.spz.zst", "archive"},
		{"noext", "noext"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestBaseNameUsedForLayerName(t *testing.T) {
	c, err := Decode("https://example.com/path/city.splat", flatRecord(),
		cloud.Options{Transform: cloud.Identity})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "city" {
		t.Errorf("expected %q, got %q", "city", c.Name)
	}
	if strings.Contains(c.Name, ".") {
		t.Errorf("suffix not stripped: %q", c.Name)
	}
}
