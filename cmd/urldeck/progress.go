package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"urldeck/internal/enrich"
	"urldeck/internal/logging"
)

// progressRenderer consumes enrichment events for display.
type progressRenderer interface {
	Update(ev enrich.Event)
	Finish()
}

// newProgressRenderer draws a bar on terminals and falls back to sampled log
// lines elsewhere.
func newProgressRenderer(w io.Writer, total int, logger *slog.Logger) progressRenderer {
	if isTerminal(w) {
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Fetching icons"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		return &barRenderer{bar: bar}
	}
	return &logRenderer{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(10),
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type barRenderer struct {
	bar *progressbar.ProgressBar
}

func (r *barRenderer) Update(ev enrich.Event) {
	_ = r.bar.Set(ev.Completed)
}

func (r *barRenderer) Finish() {
	_ = r.bar.Finish()
}

type logRenderer struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func (r *logRenderer) Update(ev enrich.Event) {
	if ev.Done || !r.sampler.ShouldLog(ev.Completed, ev.Total) {
		return
	}
	r.logger.Info("icons resolved",
		logging.Uint64(logging.FieldEpoch, ev.Epoch),
		logging.Int("completed", ev.Completed),
		logging.Int("total", ev.Total),
	)
}

func (r *logRenderer) Finish() {}
