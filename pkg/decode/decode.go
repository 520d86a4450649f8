// Package decode selects the container parser for a Gaussian-splat byte
// buffer and runs it.
//
// Selection is driven purely by the filename suffix, matching how producers
// in the wild name these files: ".ply" selects the mesh-interchange parser,
// ".spz" the compressed parser, and everything else falls through to the
// flat .splat parser. This is a naming convention, not content sniffing; a
// mislabeled file fails inside its parser.
package decode

import (
	"fmt"
	"path"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/cespare/xxhash/v2"

	"github.com/SplatTools/splatFileTools/pkg/cloud"
	"github.com/SplatTools/splatFileTools/pkg/ply"
	"github.com/SplatTools/splatFileTools/pkg/splat"
	"github.com/SplatTools/splatFileTools/pkg/spz"
)

// zstSuffix marks an outer zstd wrapper around any of the container
// formats, e.g. "scene.spz.zst". The wrapper is stripped before format
// selection.
const zstSuffix = ".zst"

// Decode parses data into a point cloud, choosing the parser from the
// filename suffix. When opts.Name is empty the cloud is named from the
// filename, or from the content digest if the filename is empty too.
func Decode(name string, data []byte, opts cloud.Options) (*cloud.PointCloud, error) {
	lower := strings.ToLower(name)

	if strings.HasSuffix(lower, zstSuffix) {
		raw, err := zstd.Decompress(nil, data)
		if err != nil {
			return nil, &cloud.DecompressionError{Format: "zst", Err: err}
		}
		data = raw
		name = name[:len(name)-len(zstSuffix)]
		lower = lower[:len(lower)-len(zstSuffix)]
	}

	if opts.Name == "" {
		opts.Name = BaseName(name)
		if opts.Name == "" {
			opts.Name = fmt.Sprintf("splat-%016x", SourceDigest(data))
		}
	}

	switch {
	case strings.HasSuffix(lower, ".ply"):
		return ply.Parse(data, opts)
	case strings.HasSuffix(lower, ".spz"):
		return spz.Parse(data, opts)
	default:
		return splat.Parse(data, opts)
	}
}

// SourceDigest returns a stable 64-bit fingerprint of a source buffer, used
// for provenance reporting and default naming.
func SourceDigest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// BaseName derives a display name from a file name or URL: the last path
// element with the known container suffixes stripped.
func BaseName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	for _, suffix := range []string{zstSuffix, ".splat", ".ply", ".spz"} {
		if strings.HasSuffix(strings.ToLower(base), suffix) {
			base = base[:len(base)-len(suffix)]
		}
	}
	return base
}
