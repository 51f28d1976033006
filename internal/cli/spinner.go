package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// stageSpinner animates the current pipeline stage on a terminal line.
//
// While running it is registered as the pipeline hooks, so the runner's
// import, engine and rasterize events replace its message. Stop restores the
// hooks that were registered before.
type stageSpinner struct {
	out  io.Writer
	prev observability.PipelineHooks

	mu      sync.Mutex
	message string
	width   int

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// startStages registers a spinner as the pipeline hooks and starts drawing
// to out. It stops drawing when ctx is cancelled; Stop must still be called.
func startStages(ctx context.Context, out io.Writer, message string) *stageSpinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &stageSpinner{
		out:     out,
		message: message,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	s.prev = observability.SetPipelineHooks(s)
	go s.run()
	return s
}

func (s *stageSpinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			line := fmt.Sprintf("\r%s %s", styleSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
			s.width = max(s.width, len(s.message)+2)
			fmt.Fprint(s.out, line)
			s.mu.Unlock()
		}
	}
}

// Stop ends the animation, clears the line and restores the previous hooks.
// Later calls do nothing.
func (s *stageSpinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		observability.SetPipelineHooks(s.prev)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// Message returns the stage currently shown.
func (s *stageSpinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *stageSpinner) set(format string, args ...any) {
	s.mu.Lock()
	s.message = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

func (s *stageSpinner) OnImportStart(ctx context.Context, source string) {
	s.prev.OnImportStart(ctx, source)
	s.set("Reading %s...", source)
}

func (s *stageSpinner) OnImportComplete(ctx context.Context, source string, pairs int, d time.Duration, err error) {
	s.prev.OnImportComplete(ctx, source, pairs, d, err)
	if err == nil {
		s.set("Read %d pairs from %s", pairs, source)
	}
}

func (s *stageSpinner) OnEngineStart(ctx context.Context, engine string, atoms int) {
	s.prev.OnEngineStart(ctx, engine, atoms)
	s.set("Computing homology of %d atoms...", atoms)
}

func (s *stageSpinner) OnEngineComplete(ctx context.Context, engine string, d time.Duration, err error) {
	s.prev.OnEngineComplete(ctx, engine, d, err)
}

func (s *stageSpinner) OnRasterizeStart(ctx context.Context, dims []int, pixels [2]int) {
	s.prev.OnRasterizeStart(ctx, dims, pixels)
	keys := make([]string, len(dims))
	for i, d := range dims {
		keys[i] = diagram.DimKey(d)
	}
	s.set("Rasterizing %s at %dx%d...", strings.Join(keys, ", "), pixels[0], pixels[1])
}

func (s *stageSpinner) OnRasterizeComplete(ctx context.Context, dims []int, d time.Duration, err error) {
	s.prev.OnRasterizeComplete(ctx, dims, d, err)
	if err == nil {
		s.set("Rendering artifacts...")
	}
}
