package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgio "github.com/matzehuels/moltda/pkg/io"
	"github.com/matzehuels/moltda/pkg/pipeline"
	"github.com/matzehuels/moltda/pkg/store"
)

// artifactPaths maps artifact names to output files.
//
// The JSON result goes to output when given, else to <stem>_result.json in
// the working directory.
// Other artifacts are siblings of that path: <base>_diagrams.csv and
// <base>_dim1.png.
func artifactPaths(input, output string, artifacts map[string][]byte) map[string]string {
	resultPath := output
	if resultPath == "" {
		resultPath = pkgio.ResultPath(input)
	}
	base := strings.TrimSuffix(resultPath, filepath.Ext(resultPath))
	base = strings.TrimSuffix(base, "_result")

	paths := make(map[string]string, len(artifacts))
	for name := range artifacts {
		switch name {
		case pipeline.ArtifactResult:
			paths[name] = resultPath
		default:
			paths[name] = base + "_" + name
		}
	}
	return paths
}

// writeArtifacts writes every artifact of res and returns the paths written in
// a stable order.
func writeArtifacts(input, output string, res *pipeline.Result) ([]string, error) {
	paths := artifactPaths(input, output, res.Artifacts)
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		path := paths[name]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, res.Artifacts[name], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// saveRecord stores res in the configured result store and returns its ID.
func (c *CLI) saveRecord(ctx context.Context, name string, opts pipeline.Options, res *pipeline.Result) (string, error) {
	st, err := c.newStore(ctx)
	if err != nil {
		return "", err
	}
	defer st.Close()

	rec := store.NewRecord(name, opts, res)
	if err := st.Put(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// reportResult prints the standard summary for one vectorized input.
func reportResult(res *pipeline.Result, written []string) {
	fmt.Println("  " + summaryLine(res))
	for _, path := range written {
		printFile(path)
	}
}
