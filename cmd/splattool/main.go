// Package main provides a command-line tool for inspecting and converting
// Gaussian-splat files.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/SplatTools/splatFileTools/pkg/cloud"
	"github.com/SplatTools/splatFileTools/pkg/decode"
	"github.com/SplatTools/splatFileTools/pkg/export"
)

var (
	mode       string
	inputPath  string
	outputPath string
	originSpec string
	scale      float64
	crs        string
	layerName  string
)

func init() {
	flag.StringVar(&mode, "mode", "info", "Operation mode: info, glb")
	flag.StringVar(&inputPath, "input", "", "Input file (.splat, .ply, .spz, optionally .zst wrapped)")
	flag.StringVar(&outputPath, "output", "", "Output file for glb mode")
	flag.StringVar(&originSpec, "origin", "0,0,0", "World origin offset as x,y,z")
	flag.Float64Var(&scale, "scale", 1, "Uniform scale applied to positions")
	flag.StringVar(&crs, "crs", "", "Coordinate reference token to attach")
	flag.StringVar(&layerName, "name", "", "Display name (default derived from the input file)")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	origin, err := parseOrigin(originSpec)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	opts := cloud.Options{
		Transform: cloud.Transform{Origin: origin, Scale: scale},
		CRS:       crs,
		Name:      layerName,
	}
	c, err := decode.Decode(inputPath, data, opts)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	switch mode {
	case "info":
		printInfo(c, data)
		return nil
	case "glb":
		return writeGLB(c)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	if inputPath == "" {
		return fmt.Errorf("input file is required")
	}
	if scale <= 0 {
		return fmt.Errorf("scale must be positive")
	}
	switch mode {
	case "info":
	case "glb":
		if outputPath == "" {
			return fmt.Errorf("glb mode requires -output")
		}
	default:
		return fmt.Errorf("mode must be 'info' or 'glb'")
	}
	return nil
}

// parseOrigin reads an "x,y,z" triple.
func parseOrigin(spec string) ([3]float64, error) {
	var origin [3]float64
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return origin, fmt.Errorf("origin must be x,y,z, got %q", spec)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return origin, fmt.Errorf("bad origin component %q: %w", p, err)
		}
		origin[i] = v
	}
	return origin, nil
}

func printInfo(c *cloud.PointCloud, source []byte) {
	fmt.Printf("Name:          %s\n", c.Name)
	if c.CRS != "" {
		fmt.Printf("CRS:           %s\n", c.CRS)
	}
	fmt.Printf("Points:        %d\n", c.PointCount())
	fmt.Printf("SH degree:     %d\n", c.SHDegree)
	if c.SHCoeffs != nil {
		fmt.Printf("SH coeffs:     %d per point\n", cloud.CoeffCount(int(c.SHDegree)))
	}
	fmt.Printf("Source digest: %016x\n", decode.SourceDigest(source))

	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range c.Position {
		for ax := 0; ax < 3; ax++ {
			lo[ax] = math.Min(lo[ax], p[ax])
			hi[ax] = math.Max(hi[ax], p[ax])
		}
	}
	fmt.Printf("Bounds min:    %.4f %.4f %.4f\n", lo[0], lo[1], lo[2])
	fmt.Printf("Bounds max:    %.4f %.4f %.4f\n", hi[0], hi[1], hi[2])
}

func writeGLB(c *cloud.PointCloud) error {
	data, err := export.ToGLB(c)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %d points to %s (%d bytes)\n", c.PointCount(), outputPath, len(data))
	return nil
}
