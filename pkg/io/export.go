package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
	"github.com/matzehuels/moltda/pkg/persim"
)

// Result is the serialized form of one vectorization: the diagrams in
// Euclidean units, one image per dimension, and the bounds each image was
// rasterized over.
type Result struct {
	Diagrams diagram.Arrays `json:"diagrams"`
	Images   []persim.Image `json:"images"`
	Specs    []persim.Specs `json:"specs,omitempty"`
	Dims     []int          `json:"dims,omitempty"`
}

// WriteResult encodes res as indented JSON and writes it to w.
func WriteResult(res Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResult writes res to a JSON file at path.
func ExportResult(res Result, path string) error {
	return create(path, func(w io.Writer) error { return WriteResult(res, w) })
}

// ReadResult decodes a result document written by [WriteResult].
func ReadResult(r io.Reader) (Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode result")
	}
	if err := res.Diagrams.Validate(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// ImportResult reads a result file written by [ExportResult].
func ImportResult(path string) (Result, error) {
	f, err := open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return ReadResult(f)
}

// WriteDiagramsJSON writes arrays in the keyed form accepted by
// [ReadDiagrams].
func WriteDiagramsJSON(arrays diagram.Arrays, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(arrays); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ResultPath returns the default output path for an input file:
// "<stem>_result.json" in the working directory.
func ResultPath(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_result.json"
}

func create(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
