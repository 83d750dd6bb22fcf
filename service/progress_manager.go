package service

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressReporterImpl reports per-file analysis progress with a progress
// bar when running in an interactive terminal, and stays silent otherwise.
type ProgressReporterImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	bar         *progressbar.ProgressBar
	interactive bool
	total       int
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporterImpl {
	return &ProgressReporterImpl{
		writer:      os.Stderr,
		interactive: IsInteractiveEnvironment(),
	}
}

// StartProgress initializes progress tracking for the given total
func (pr *ProgressReporterImpl) StartProgress(total int) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.total = total
	if pr.interactive && pr.bar == nil {
		pr.bar = pr.createBar(total)
	}
}

// UpdateProgress advances progress to the given count
func (pr *ProgressReporterImpl) UpdateProgress(processed int) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.bar != nil {
		_ = pr.bar.Set(processed)
	}
}

// FinishProgress completes progress reporting
func (pr *ProgressReporterImpl) FinishProgress() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.bar != nil {
		_ = pr.bar.Finish()
		pr.bar = nil
	}
}

// SetWriter sets the output writer for progress display
func (pr *ProgressReporterImpl) SetWriter(writer io.Writer) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.writer = writer

	// Re-evaluate interactivity for the new writer
	if file, ok := writer.(*os.File); ok {
		pr.interactive = term.IsTerminal(int(file.Fd()))
	} else {
		pr.interactive = false
	}
}

// createBar builds the progress bar configuration
func (pr *ProgressReporterImpl) createBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pr.writer),
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}

// IsInteractiveEnvironment returns true if stderr is attached to a terminal
func IsInteractiveEnvironment() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
