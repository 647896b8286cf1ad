package httpfetch

import (
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"mclocale/internal/logging"
)

// Progress starts a tracker for one transfer. total is -1 when unknown.
type Progress interface {
	Start(label string, total int64) Tracker
}

// Tracker receives transferred bytes. Write never fails.
type Tracker interface {
	io.Writer
	Finish()
}

// NewBarProgress renders an interactive byte bar on w.
func NewBarProgress(w io.Writer) Progress {
	return barProgress{w: w}
}

type barProgress struct {
	w io.Writer
}

func (p barProgress) Start(label string, total int64) Tracker {
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &barTracker{bar: bar}
}

type barTracker struct {
	bar *progressbar.ProgressBar
}

func (t *barTracker) Write(p []byte) (int, error) {
	_ = t.bar.Add(len(p))
	return len(p), nil
}

func (t *barTracker) Finish() {
	_ = t.bar.Finish()
}

// NewLogProgress reports progress as sampled log lines: every 10% when the
// size is known, otherwise every 50 MiB.
func NewLogProgress(logger *slog.Logger) Progress {
	if logger == nil {
		logger = logging.NewNop()
	}
	return logProgress{logger: logger}
}

type logProgress struct {
	logger *slog.Logger
}

func (p logProgress) Start(label string, total int64) Tracker {
	return &logTracker{
		logger:  p.logger,
		label:   label,
		total:   total,
		sampler: logging.NewProgressSampler(10, 50<<20),
	}
}

type logTracker struct {
	logger  *slog.Logger
	label   string
	total   int64
	done    int64
	sampler *logging.ProgressSampler
}

func (t *logTracker) Write(p []byte) (int, error) {
	t.done += int64(len(p))
	if t.sampler.ShouldLog(t.done, t.total) {
		attrs := []logging.Attr{
			logging.String("file", t.label),
			logging.Bytes(logging.FieldProgressBytes, t.done),
		}
		if t.total > 0 {
			attrs = append(attrs,
				logging.Int(logging.FieldProgressPercent, int(t.done*100/t.total)),
				logging.Bytes("total", t.total),
			)
		}
		t.logger.Info("download progress", logging.Args(attrs...)...)
	}
	return len(p), nil
}

func (t *logTracker) Finish() {}

// NopProgress discards progress.
type NopProgress struct{}

func (NopProgress) Start(string, int64) Tracker { return nopTracker{} }

type nopTracker struct{}

func (nopTracker) Write(p []byte) (int, error) { return len(p), nil }

func (nopTracker) Finish() {}
