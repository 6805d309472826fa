// c123dec decompresses .c123 containers back into planar .bsq rasters.
//
// Usage:
//
//	c123dec -i <input> -o <output>
//
// When the input path is a directory every regular file inside it is
// decoded, in lexicographic order, into the output directory with the
// input's stem and a .bsq extension.
//
// Exit code 0 on success; 1 with a one-line diagnostic on stderr on
// failure.
package main

import (
	"fmt"
	"os"

	"github.com/bartokon/ccsds123/c123"
	"github.com/bartokon/ccsds123/c123util"
	"github.com/bartokon/ccsds123/raster"
)

type options struct {
	input  string
	output string
}

func usage() {
	fmt.Println("Usage: c123dec -i <input> -o <output>")
}

func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-i":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("missing value for -i")
			}
			opts.input = args[i+1]
			i++
		case "-o":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("missing value for -o")
			}
			opts.output = args[i+1]
			i++
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

func decodeSingle(inFile, outFile string) error {
	container, err := os.ReadFile(inFile)
	if err != nil {
		return err
	}
	samples, p, err := c123.Decode(container)
	if err != nil {
		return err
	}
	return raster.WriteBSQ(outFile, raster.Cube{
		NX: p.NX, NY: p.NY, NZ: p.NZ, D: p.D,
		Samples: samples,
	})
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	if c123util.IsDir(opts.input) {
		if err := c123util.EnsureOutputDir(opts.output); err != nil {
			return err
		}
		inputs, err := c123util.ListInputs(opts.input)
		if err != nil {
			return err
		}
		for _, in := range inputs {
			out := c123util.OutputName(opts.output, in, ".bsq")
			if err := decodeSingle(in, out); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
		}
		return nil
	}

	return decodeSingle(opts.input, c123util.ResolveOutput(opts.output, opts.input, ".bsq"))
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "c123dec: %v\n", err)
		os.Exit(1)
	}
}
