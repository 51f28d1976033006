package pipeline

import (
	"bytes"
	"fmt"
	"time"

	"github.com/matzehuels/moltda/pkg/diagram"
	pkgio "github.com/matzehuels/moltda/pkg/io"
)

// Artifact names produced by Render.
const (
	ArtifactResult   = "result.json"
	ArtifactDiagrams = "diagrams.csv"
)

// PNGArtifact returns the artifact name of the image for dim.
func PNGArtifact(dim int) string { return diagram.DimKey(dim) + ".png" }

// Render encodes res in every requested format.
//
// json produces the full result document, csv the converted diagrams and png
// one heatmap per vectorized dimension.
func Render(res *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			if err := pkgio.WriteResult(res.Output(), &buf); err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[ArtifactResult] = buf.Bytes()
		case FormatCSV:
			var buf bytes.Buffer
			if err := pkgio.WriteDiagramsCSV(res.Arrays, &buf); err != nil {
				return nil, fmt.Errorf("render csv: %w", err)
			}
			artifacts[ArtifactDiagrams] = buf.Bytes()
		case FormatPNG:
			for i, dim := range res.Dims {
				var buf bytes.Buffer
				if err := pkgio.WritePNG(res.Images[i], opts.PNGScale, &buf); err != nil {
					return nil, fmt.Errorf("render %s: %w", PNGArtifact(dim), err)
				}
				artifacts[PNGArtifact(dim)] = buf.Bytes()
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
	}
	return artifacts, nil
}

// RenderInto renders res and stores the artifacts on it.
func (r *Runner) RenderInto(res *Result, opts Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	start := time.Now()
	artifacts, err := Render(res, opts)
	if err != nil {
		return err
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	return nil
}
