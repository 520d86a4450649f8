package splat

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/SplatTools/splatFileTools/pkg/cloud"
)

// appendRecord encodes one 32-byte splat record.
func appendRecord(buf []byte, pos, scale [3]float32, rgba, rot [4]uint8) []byte {
	for _, v := range pos {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, v := range scale {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	buf = append(buf, rgba[:]...)
	buf = append(buf, rot[:]...)
	return buf
}

func TestParse(t *testing.T) {
	var buf []byte
	buf = appendRecord(buf,
		[3]float32{1, 2, 3},
		[3]float32{0.5, 0.25, 2},
		[4]uint8{10, 20, 30, 255},
		[4]uint8{255, 128, 128, 128},
	)
	buf = appendRecord(buf,
		[3]float32{-1, 0, 1},
		[3]float32{1, 1, 1},
		[4]uint8{0, 0, 0, 0},
		[4]uint8{128, 255, 0, 128},
	)

	opts := cloud.Options{
		Transform: cloud.Transform{Origin: [3]float64{10, 0, 0}, Scale: 2},
		Name:      "fixture",
		CRS:       "EPSG:4978",
	}
	c, err := Parse(buf, opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.PointCount() != 2 {
		t.Fatalf("expected 2 points, got %d", c.PointCount())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("decoded cloud failed validation: %v", err)
	}

	if c.Position[0] != [3]float64{12, 4, 6} {
		t.Errorf("position 0: expected (12,4,6), got %v", c.Position[0])
	}
	if c.Scale[0] != [3]float32{0.5, 0.25, 2} {
		t.Errorf("scale 0: expected (0.5,0.25,2), got %v", c.Scale[0])
	}
	if c.Color[0] != [4]uint8{10, 20, 30, 255} {
		t.Errorf("color 0: expected (10,20,30,255), got %v", c.Color[0])
	}

	// (255-128)/128, then three zero components.
	want := [4]float32{127.0 / 128, 0, 0, 0}
	if c.Rotation[0] != want {
		t.Errorf("rotation 0: expected %v, got %v", want, c.Rotation[0])
	}
	// (128-128)/128, (255-128)/128, (0-128)/128, (128-128)/128.
	want = [4]float32{0, 127.0 / 128, -1, 0}
	if c.Rotation[1] != want {
		t.Errorf("rotation 1: expected %v, got %v", want, c.Rotation[1])
	}

	if c.Name != "fixture" || c.CRS != "EPSG:4978" {
		t.Errorf("metadata not carried through: name=%q crs=%q", c.Name, c.CRS)
	}
	if c.SHDegree != 0 || c.SHCoeffs != nil {
		t.Error("flat format must never produce SH data")
	}
}

func TestParseRejectsBadLengths(t *testing.T) {
	var fe *cloud.FormatError

	_, err := Parse(nil, cloud.Options{Transform: cloud.Identity})
	if !errors.As(err, &fe) {
		t.Errorf("empty buffer: expected FormatError, got %v", err)
	}

	_, err = Parse(make([]byte, 33), cloud.Options{Transform: cloud.Identity})
	if !errors.As(err, &fe) {
		t.Errorf("non-multiple length: expected FormatError, got %v", err)
	}

	_, err = Parse(make([]byte, 31), cloud.Options{Transform: cloud.Identity})
	if !errors.As(err, &fe) {
		t.Errorf("short buffer: expected FormatError, got %v", err)
	}
}

func TestParseCancellation(t *testing.T) {
	var buf []byte
	for i := 0; i < 100; i++ {
		buf = appendRecord(buf, [3]float32{0, 0, 0}, [3]float32{1, 1, 1},
			[4]uint8{0, 0, 0, 255}, [4]uint8{128, 128, 128, 128})
	}

	// Cancel partway through: no cloud, no decode error, just ErrCanceled.
	calls := 0
	opts := cloud.Options{
		Transform: cloud.Identity,
		Cancel: func() bool {
			calls++
			return calls > 50
		},
	}
	c, err := Parse(buf, opts)
	if !errors.Is(err, cloud.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if c != nil {
		t.Error("canceled parse must not return a partial cloud")
	}
	var fe *cloud.FormatError
	if errors.As(err, &fe) {
		t.Error("cancellation must not be a FormatError")
	}
}

func BenchmarkParse(b *testing.B) {
	var buf []byte
	for i := 0; i < 10000; i++ {
		buf = appendRecord(buf, [3]float32{1, 2, 3}, [3]float32{1, 1, 1},
			[4]uint8{100, 100, 100, 255}, [4]uint8{200, 128, 60, 128})
	}
	opts := cloud.Options{Transform: cloud.Identity}
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(buf, opts); err != nil {
			b.Fatal(err)
		}
	}
}
