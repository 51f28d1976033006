package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/moltda/pkg/cloud"
	"github.com/matzehuels/moltda/pkg/errors"
)

// ReadCloud decodes a point cloud in the given format (xyz or json) and
// validates it.
func ReadCloud(r io.Reader, format string) (cloud.Cloud, error) {
	var (
		c   cloud.Cloud
		err error
	)
	switch format {
	case FormatXYZ:
		c, err = readXYZ(r)
	case FormatJSON:
		if derr := json.NewDecoder(r).Decode(&c); derr != nil {
			err = errors.Wrap(errors.ErrCodeInvalidFormat, derr, "decode cloud")
		}
	default:
		return cloud.Cloud{}, errors.New(errors.ErrCodeUnsupportedFileType, "unsupported structure format %q (must be xyz or json)", format)
	}
	if err != nil {
		return cloud.Cloud{}, err
	}
	if err := c.Validate(); err != nil {
		return cloud.Cloud{}, err
	}
	return c, nil
}

// ImportCloud reads a structure file, choosing the format by extension.
// Crystallographic formats such as CIF are not supported.
func ImportCloud(path string) (cloud.Cloud, error) {
	format := FormatFromPath(path)
	if format != FormatXYZ && format != FormatJSON {
		return cloud.Cloud{}, errors.New(errors.ErrCodeUnsupportedFileType, "unsupported structure file %s (must be .xyz or .json)", path)
	}
	f, err := open(path)
	if err != nil {
		return cloud.Cloud{}, err
	}
	defer f.Close()

	c, err := ReadCloud(f, format)
	if err != nil {
		return cloud.Cloud{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// readXYZ parses the XYZ format: an atom count, a free-form comment line and
// one "Element x y z" row per atom.
func readXYZ(r io.Reader) (cloud.Cloud, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return cloud.Cloud{}, errors.New(errors.ErrCodeInvalidFormat, "xyz: missing atom count")
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || n < 0 {
		return cloud.Cloud{}, errors.New(errors.ErrCodeInvalidFormat, "xyz: invalid atom count %q", sc.Text())
	}
	sc.Scan() // comment

	// The header is untrusted; grow past this as atoms are actually read.
	const maxPrealloc = 1 << 16
	c := cloud.Cloud{
		Coords:   make([]cloud.Point, 0, min(n, maxPrealloc)),
		Elements: make([]string, 0, min(n, maxPrealloc)),
	}
	line := 2
	for len(c.Coords) < n && sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 4 {
			return cloud.Cloud{}, errors.New(errors.ErrCodeInvalidFormat, "xyz line %d: want element and 3 coordinates", line)
		}
		var p cloud.Point
		for i := range p {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return cloud.Cloud{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "xyz line %d", line)
			}
			p[i] = v
		}
		c.Coords = append(c.Coords, p)
		c.Elements = append(c.Elements, fields[0])
	}
	if err := sc.Err(); err != nil {
		return cloud.Cloud{}, fmt.Errorf("read: %w", err)
	}
	if len(c.Coords) != n {
		return cloud.Cloud{}, errors.New(errors.ErrCodeInvalidFormat, "xyz: header says %d atoms, found %d", n, len(c.Coords))
	}
	return c, nil
}
