package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
)

// Input formats recognised by file extension.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXYZ  = "xyz"
	FormatPNG  = "png"
)

// FormatFromPath returns the lower-cased extension of path without the dot.
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ReadDiagrams decodes diagrams in the given format (json or csv) from r.
//
// When raw is set the values are treated as squared filtration values and
// square-rooted via [diagram.ToArrays]. The engine's list form is always raw.
// The result is validated and ReadDiagrams does not close r.
func ReadDiagrams(r io.Reader, format string, raw bool) (diagram.Arrays, error) {
	switch format {
	case FormatJSON:
		return readDiagramsJSON(r, raw)
	case FormatCSV:
		return readDiagramsCSV(r, raw)
	}
	return nil, errors.New(errors.ErrCodeUnsupportedFileType, "unsupported diagram format %q (must be json or csv)", format)
}

// ImportDiagrams reads a diagram file, choosing the format by extension.
func ImportDiagrams(path string, raw bool) (diagram.Arrays, error) {
	format := FormatFromPath(path)
	if format != FormatJSON && format != FormatCSV {
		return nil, errors.New(errors.ErrCodeUnsupportedFileType, "unsupported diagram file %s (must be .json or .csv)", path)
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	arrays, err := ReadDiagrams(f, format, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return arrays, nil
}

func readDiagramsJSON(r io.Reader, raw bool) (diagram.Arrays, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty diagram document")
	}

	if trimmed[0] == '[' {
		var dgms diagram.Diagrams
		if err := json.Unmarshal(trimmed, &dgms); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode engine diagrams")
		}
		return diagram.ToArrays(dgms)
	}

	var arrays diagram.Arrays
	if err := json.Unmarshal(trimmed, &arrays); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram arrays")
	}
	return finishArrays(arrays, raw)
}

func finishArrays(arrays diagram.Arrays, raw bool) (diagram.Arrays, error) {
	if err := arrays.Validate(); err != nil {
		return nil, err
	}
	if raw {
		return diagram.ToArrays(arrays.Diagrams())
	}
	return arrays, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
