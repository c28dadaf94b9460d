package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mvp-joe/rustport/internal/generator"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements generator.ProgressReporter with progress bars.
type CLIProgressReporter struct {
	quiet          bool
	out            io.Writer
	fileBar        *progressbar.ProgressBar
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(sourceFiles int) {
	if c.quiet {
		return
	}
	log.Printf("Found %d Rust source file(s)\n", sourceFiles)
}

func (c *CLIProgressReporter) OnCompileStart(sourceFiles int) {
	if c.quiet || sourceFiles == 0 {
		return
	}
	log.Printf("Compiling %d source file(s)...\n", sourceFiles)
}

func (c *CLIProgressReporter) OnCompileComplete(artifacts int, duration time.Duration) {
	if c.quiet || artifacts == 0 {
		return
	}
	log.Printf("Built %d shared librar%s in %.1fs\n", artifacts, plural(artifacts, "y", "ies"), duration.Seconds())
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.totalFiles = totalFiles
	c.processedFiles = 0

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Generating bindings"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(relPath string, functions int) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.processedFiles++
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *generator.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Generated %d module(s) with %d function(s) in %.1fs\n",
		stats.ModulesWritten, stats.Functions, stats.Duration.Seconds())
	if stats.FilesSkipped > 0 {
		fmt.Fprintf(c.out, "  Skipped:  %d file(s) without exports\n", stats.FilesSkipped)
	}
	if len(stats.Warnings) > 0 {
		fmt.Fprintf(c.out, "  Warnings: %d\n", len(stats.Warnings))
	}
	fmt.Fprintf(c.out, "  Index:    %s\n", stats.IndexPath)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
