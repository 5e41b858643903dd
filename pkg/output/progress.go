package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/doppelganger/pkg/models"
)

const progressTemplate = `{{string . "phase"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// ProgressFormatter draws a progress bar for each phase and delegates the
// final output to another formatter
type ProgressFormatter struct {
	inner  Formatter
	writer io.Writer

	mu    sync.Mutex
	bar   *pb.ProgressBar
	phase models.Phase
}

// NewProgressFormatter wraps inner and draws on writer (normally stderr)
func NewProgressFormatter(inner Formatter, writer io.Writer) *ProgressFormatter {
	return &ProgressFormatter{
		inner:  inner,
		writer: writer,
	}
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Start initializes the wrapped formatter
func (f *ProgressFormatter) Start(writer io.Writer, maxWorkers int) error {
	return f.inner.Start(writer, maxWorkers)
}

// Progress advances the bar for the current phase
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch update.Type {
	case UpdatePhaseStart:
		f.finishBar()
		f.phase = update.Phase
		f.bar = pb.New(update.Total)
		f.bar.SetTemplateString(progressTemplate)
		f.bar.SetWriter(f.writer)
		f.bar.Set("phase", string(update.Phase))
		f.bar.Start()

	case UpdateFileDone, UpdateFileError, UpdateClusterDone:
		if f.bar == nil || update.Phase != f.phase {
			return nil
		}
		f.bar.Increment()

	case UpdatePhaseComplete:
		if f.bar != nil && update.Phase == f.phase {
			f.bar.SetTotal(int64(update.Total))
			f.bar.SetCurrent(int64(update.Current))
		}
		f.finishBar()
	}

	return f.inner.Progress(update)
}

// finishBar stops the active bar; callers hold f.mu
func (f *ProgressFormatter) finishBar() {
	if f.bar == nil {
		return
	}
	f.bar.Finish()
	f.bar = nil
}

// Complete stops any bar and delegates
func (f *ProgressFormatter) Complete(report *models.HuntReport) error {
	f.mu.Lock()
	f.finishBar()
	f.mu.Unlock()
	return f.inner.Complete(report)
}

// Error stops any bar and delegates
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	f.finishBar()
	f.mu.Unlock()
	return f.inner.Error(err)
}

// Name returns the wrapped formatter's name
func (f *ProgressFormatter) Name() string {
	return f.inner.Name()
}
