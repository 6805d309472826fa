// Package c123util provides the shared file-dispatch helpers for the
// CCSDS-123 command-line tools: directory enumeration for batch
// processing and derivation of output file names.
package c123util

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// ErrEmptyDirectory is returned when a batch input directory contains
// no regular files.
var ErrEmptyDirectory = errors.New("c123util: no input files found in directory")

// ListInputs returns the regular files directly inside dir, sorted
// lexicographically so batch runs process frames in a stable order.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, ErrEmptyDirectory
	}
	sort.Strings(files)
	return files, nil
}

// Stem returns the final path element with its extension removed.
func Stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// OutputName derives the output file for an input: the input's stem
// with the given extension, placed in outDir.
func OutputName(outDir, input, ext string) string {
	return filepath.Join(outDir, Stem(input)+ext)
}

// ResolveOutput normalizes a single-file output path: if out is an
// existing directory the input's stem is appended, and a missing
// extension is replaced with ext.
func ResolveOutput(out, input, ext string) string {
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return OutputName(out, input, ext)
	}
	if filepath.Ext(out) == "" {
		return out + ext
	}
	return out
}

// EnsureOutputDir verifies out can serve as a batch output directory,
// creating it when absent.
func EnsureOutputDir(out string) error {
	info, err := os.Stat(out)
	if err == nil {
		if !info.IsDir() {
			return errors.New("c123util: output path must be a directory for batch processing")
		}
		return nil
	}
	return os.MkdirAll(out, 0o755)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
