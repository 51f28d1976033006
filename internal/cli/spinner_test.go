package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/observability"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

type rasterizeRecorder struct {
	observability.NoopPipelineHooks
	starts, completes int
}

func (r *rasterizeRecorder) OnRasterizeStart(context.Context, []int, [2]int) { r.starts++ }
func (r *rasterizeRecorder) OnRasterizeComplete(context.Context, []int, time.Duration, error) {
	r.completes++
}

func TestStageSpinnerMessages(t *testing.T) {
	t.Cleanup(observability.Reset)
	ctx := context.Background()

	tests := []struct {
		name  string
		event func(*stageSpinner)
		want  string
	}{
		{"import start", func(s *stageSpinner) { s.OnImportStart(ctx, "water.json") }, "Reading water.json..."},
		{"import done", func(s *stageSpinner) { s.OnImportComplete(ctx, "water.json", 12, time.Millisecond, nil) }, "Read 12 pairs from water.json"},
		{"import failed", func(s *stageSpinner) {
			s.OnImportComplete(ctx, "water.json", 0, time.Millisecond, errors.New("bad"))
		}, "Starting..."},
		{"engine", func(s *stageSpinner) { s.OnEngineStart(ctx, "alpha --json", 3) }, "Computing homology of 3 atoms..."},
		{"rasterize", func(s *stageSpinner) { s.OnRasterizeStart(ctx, []int{0, 1}, [2]int{50, 40}) }, "Rasterizing dim0, dim1 at 50x40..."},
		{"rasterize done", func(s *stageSpinner) { s.OnRasterizeComplete(ctx, []int{0}, time.Millisecond, nil) }, "Rendering artifacts..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startStages(ctx, io.Discard, "Starting...")
			defer s.Stop()
			tt.event(s)
			if got := s.Message(); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStageSpinnerFollowsRunner(t *testing.T) {
	t.Cleanup(observability.Reset)
	rec := &rasterizeRecorder{}
	observability.SetPipelineHooks(rec)

	s := startStages(context.Background(), io.Discard, "Vectorizing...")
	if observability.Pipeline() != observability.PipelineHooks(s) {
		t.Fatal("spinner should be the registered pipeline hooks while running")
	}

	arrays := diagram.Arrays{"dim1": {{Birth: 1, Death: 2}, {Birth: 0.5, Death: 3}}}
	r := pipeline.NewRunner(nil, nil, nil)
	if _, err := r.Vectorize(context.Background(), arrays, pipeline.Options{Pixels: [2]int{6, 4}, Dims: []int{1}}); err != nil {
		t.Fatalf("Vectorize() error = %v", err)
	}
	if got, want := s.Message(), "Rendering artifacts..."; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	s.Stop()

	if rec.starts != 1 || rec.completes != 1 {
		t.Errorf("forwarded rasterize events = %d/%d, want 1/1", rec.starts, rec.completes)
	}
	if observability.Pipeline() != observability.PipelineHooks(rec) {
		t.Error("Stop() should restore the previous pipeline hooks")
	}
}

func TestStageSpinnerStopClearsLine(t *testing.T) {
	t.Cleanup(observability.Reset)
	var buf bytes.Buffer
	s := startStages(context.Background(), &buf, "Rasterizing dim0 at 50x50...")
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Rasterizing dim0 at 50x50...") {
		t.Errorf("output %q does not show the stage", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q should end by clearing the line", out)
	}
}

func TestStageSpinnerContextCancel(t *testing.T) {
	t.Cleanup(observability.Reset)
	ctx, cancel := context.WithCancel(context.Background())
	s := startStages(ctx, io.Discard, "Computing homology of 3 atoms...")
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() did not return after context cancellation")
	}
}
