// Package homology runs an external alpha-shape persistent homology engine.
//
// Computing alpha filtrations and persistence is out of scope for this
// module. An [Engine] takes a point cloud and returns raw diagrams in
// filtration units (squared radii); [diagram.ToArrays] converts them.
package homology

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moltda/pkg/cloud"
	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
)

// Options selects the alpha-shape flavour.
type Options struct {
	// Exact requests exact rather than floating-point alpha shapes.
	Exact bool `json:"exact"`
	// Periodic requests periodic alpha shapes on a rectangular cell.
	Periodic bool `json:"periodic"`
}

// Engine computes raw persistence diagrams for a point cloud.
type Engine interface {
	Compute(ctx context.Context, c cloud.Cloud, opts Options) (diagram.Diagrams, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, c cloud.Cloud, opts Options) (diagram.Diagrams, error)

// Compute calls f.
func (f EngineFunc) Compute(ctx context.Context, c cloud.Cloud, opts Options) (diagram.Diagrams, error) {
	return f(ctx, c, opts)
}

// request is the JSON document written to the engine's stdin.
type request struct {
	Coords   []cloud.Point `json:"coords"`
	Weights  []float64     `json:"weights,omitempty"`
	Exact    bool          `json:"exact"`
	Periodic bool          `json:"periodic"`
}

// CommandEngine runs an external program as the homology engine.
//
// The program receives {"coords", "weights", "exact", "periodic"} as JSON on
// stdin and must print the diagrams on stdout as a JSON array indexed by
// dimension, each entry a list of {"birth", "death", "data"} objects or
// [birth, death, data] triples. A null death marks an essential class.
type CommandEngine struct {
	Path   string
	Args   []string
	Logger *log.Logger
}

// NewCommandEngine splits command on whitespace into program and arguments.
func NewCommandEngine(command string, logger *log.Logger) (*CommandEngine, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "engine command is empty")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CommandEngine{Path: fields[0], Args: fields[1:], Logger: logger}, nil
}

// Compute validates the cloud, runs the program and decodes its output.
func (e *CommandEngine) Compute(ctx context.Context, c cloud.Cloud, opts Options) (diagram.Diagrams, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	path, err := exec.LookPath(e.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineFailed, err, "engine %q not found", e.Path)
	}

	in, err := json.Marshal(request{
		Coords:   c.Coords,
		Weights:  c.Weights,
		Exact:    opts.Exact,
		Periodic: opts.Periodic,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode engine request")
	}

	cmd := exec.CommandContext(ctx, path, e.Args...)
	cmd.Stdin = bytes.NewReader(in)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if e.Logger != nil {
		e.Logger.Debug("starting homology engine", "path", path, "args", e.Args, "points", c.Len(), "weighted", c.Weighted())
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeEngineFailed, err, "%s: %s", e.Path, strings.TrimSpace(errBuf.String()))
	}

	var dgms diagram.Diagrams
	if err := json.Unmarshal(out.Bytes(), &dgms); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineFailed, err, "decode %s output", e.Path)
	}
	if e.Logger != nil {
		e.Logger.Debug("homology engine finished", "dimensions", len(dgms))
	}
	return dgms, nil
}
