package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
)

var csvHeader = []string{"dim", "birth", "death", "data"}

func readDiagramsCSV(r io.Reader, raw bool) (diagram.Arrays, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var dgms diagram.Diagrams
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "csv")
		}
		if row == 1 && isHeader(rec) {
			continue
		}
		dim, p, err := parseCSVRecord(rec)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "csv row %d", row)
		}
		for len(dgms) <= dim {
			dgms = append(dgms, diagram.Diagram{})
		}
		dgms[dim] = append(dgms[dim], p)
	}

	if raw {
		return diagram.ToArrays(dgms)
	}
	arrays := make(diagram.Arrays, len(dgms))
	for d, dgm := range dgms {
		arrays[diagram.DimKey(d)] = dgm
	}
	return finishArrays(arrays, false)
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), csvHeader[0])
}

func parseCSVRecord(rec []string) (int, diagram.Pair, error) {
	if len(rec) < 3 || len(rec) > 4 {
		return 0, diagram.Pair{}, fmt.Errorf("want 3 or 4 columns, got %d", len(rec))
	}
	dim, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil || dim < 0 {
		return 0, diagram.Pair{}, fmt.Errorf("invalid dimension %q", rec[0])
	}
	birth, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return 0, diagram.Pair{}, fmt.Errorf("invalid birth %q", rec[1])
	}
	death := math.Inf(1)
	if s := strings.TrimSpace(rec[2]); s != "" {
		if death, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, diagram.Pair{}, fmt.Errorf("invalid death %q", rec[2])
		}
	}
	var data uint64
	if len(rec) == 4 && strings.TrimSpace(rec[3]) != "" {
		if data, err = strconv.ParseUint(strings.TrimSpace(rec[3]), 10, 32); err != nil {
			return 0, diagram.Pair{}, fmt.Errorf("invalid data tag %q", rec[3])
		}
	}
	return dim, diagram.Pair{Birth: birth, Death: death, Data: uint32(data)}, nil
}

// WriteDiagramsCSV writes arrays as dim,birth,death,data rows in ascending
// dimension order. Essential classes get an empty death column.
func WriteDiagramsCSV(arrays diagram.Arrays, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range arrays.Dims() {
		for _, p := range arrays.Dim(d) {
			death := ""
			if !p.IsEssential() {
				death = strconv.FormatFloat(p.Death, 'g', -1, 64)
			}
			rec := []string{
				strconv.Itoa(d),
				strconv.FormatFloat(p.Birth, 'g', -1, 64),
				death,
				strconv.FormatUint(uint64(p.Data), 10),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
