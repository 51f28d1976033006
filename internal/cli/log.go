package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stageTimer logs the end of a command stage with its elapsed time.
type stageTimer struct {
	logger *log.Logger
	start  time.Time
}

func startTimer(l *log.Logger) *stageTimer {
	return &stageTimer{logger: l, start: time.Now()}
}

// done logs msg at info level followed by keyvals and the elapsed duration,
// rounded to the millisecond.
func (t *stageTimer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "duration", time.Since(t.start).Round(time.Millisecond))
	t.logger.Info(msg, keyvals...)
}

// resultFields returns the log fields describing res:
// pairs, dims ("dim0,dim1") and whether the images were cached.
func resultFields(res *pipeline.Result) []any {
	keys := make([]string, len(res.Dims))
	for i, d := range res.Dims {
		keys[i] = diagram.DimKey(d)
	}
	return []any{
		"pairs", res.Stats.Pairs,
		"dims", strings.Join(keys, ","),
		"cached", res.CacheInfo.ImageHit,
	}
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a
// command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
