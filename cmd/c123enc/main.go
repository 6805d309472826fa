// c123enc compresses raster images into .c123 containers.
//
// Usage:
//
//	c123enc -i <input> -o <output> [-nx <X> -ny <Y> -nz <Z> -d <bits>] [--ppm]
//
// Inputs are planar .bsq rasters (dimensions required) or binary P6
// netpbm images (dimensions inferred; forced with --ppm). When the
// input path is a directory every regular file inside it is encoded, in
// lexicographic order, into the output directory with the input's stem
// and a .c123 extension.
//
// Exit code 0 on success; 1 with a one-line diagnostic on stderr on
// failure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bartokon/ccsds123/c123"
	"github.com/bartokon/ccsds123/c123util"
	"github.com/bartokon/ccsds123/raster"
)

type options struct {
	input    string
	output   string
	nx       int
	ny       int
	nz       int
	d        int
	forcePPM bool
}

func usage() {
	fmt.Println("Usage: c123enc -i <input> -o <output> -nx <X> -ny <Y> -nz <Z> -d <bits>")
	fmt.Println("       Use --ppm to read binary PPM (P6). Dimensions inferred from header.")
}

func parseArgs(args []string) (options, error) {
	opts := options{nz: 3, d: 8}
	needValue := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("missing value for %s", flag)
		}
		return args[i+1], nil
	}
	parseInt := func(i int, flag string) (int, error) {
		s, err := needValue(i, flag)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("bad value for %s: %q", flag, s)
		}
		return v, nil
	}

	var err error
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-i":
			if opts.input, err = needValue(i, "-i"); err != nil {
				return opts, err
			}
			i++
		case "-o":
			if opts.output, err = needValue(i, "-o"); err != nil {
				return opts, err
			}
			i++
		case "-nx":
			if opts.nx, err = parseInt(i, "-nx"); err != nil {
				return opts, err
			}
			i++
		case "-ny":
			if opts.ny, err = parseInt(i, "-ny"); err != nil {
				return opts, err
			}
			i++
		case "-nz":
			if opts.nz, err = parseInt(i, "-nz"); err != nil {
				return opts, err
			}
			i++
		case "-d":
			if opts.d, err = parseInt(i, "-d"); err != nil {
				return opts, err
			}
			i++
		case "--ppm":
			opts.forcePPM = true
		case "-h", "--help":
			usage()
			os.Exit(0)
		default:
			return opts, fmt.Errorf("unknown option: %s", args[i])
		}
	}
	if opts.input == "" {
		return opts, fmt.Errorf("missing -i input path")
	}
	if opts.output == "" {
		return opts, fmt.Errorf("missing -o output path")
	}
	return opts, nil
}

func isPPM(opts options, path string) bool {
	if opts.forcePPM {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ppm"
}

func loadImage(opts options, path string) (raster.Cube, error) {
	if isPPM(opts, path) {
		return raster.LoadPPM(path)
	}
	if opts.nx <= 0 || opts.ny <= 0 || opts.nz <= 0 {
		return raster.Cube{}, fmt.Errorf("invalid dimensions for BSQ input (use -nx/-ny/-nz)")
	}
	return raster.LoadBSQ(path, opts.nx, opts.ny, opts.nz, opts.d)
}

func writeContainer(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func encodeSingle(opts options, inFile, outFile string) error {
	cube, err := loadImage(opts, inFile)
	if err != nil {
		return err
	}
	container, err := c123.Encode(cube.Samples, c123.DefaultParams(cube.NX, cube.NY, cube.NZ, cube.D))
	if err != nil {
		return err
	}
	return writeContainer(outFile, container)
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	if c123util.IsDir(opts.input) {
		if opts.forcePPM {
			return fmt.Errorf("directory inputs do not support --ppm")
		}
		if err := c123util.EnsureOutputDir(opts.output); err != nil {
			return err
		}
		inputs, err := c123util.ListInputs(opts.input)
		if err != nil {
			return err
		}
		for _, in := range inputs {
			out := c123util.OutputName(opts.output, in, ".c123")
			if err := encodeSingle(opts, in, out); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
		}
		return nil
	}

	return encodeSingle(opts, opts.input, c123util.ResolveOutput(opts.output, opts.input, ".c123"))
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "c123enc: %v\n", err)
		os.Exit(1)
	}
}
