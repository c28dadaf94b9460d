package generator

import "time"

// ProgressReporter provides callbacks for reporting generation progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once source files have been found.
	OnDiscoveryComplete(sourceFiles int)

	// OnCompileStart is called before the compiler runs.
	OnCompileStart(sourceFiles int)

	// OnCompileComplete is called after all artifacts were built.
	OnCompileComplete(artifacts int, duration time.Duration)

	// OnFileProcessingStart is called before sources are parsed and emitted.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each source, with the number of bound functions.
	OnFileProcessed(relPath string, functions int)

	// OnComplete is called after the index has been written.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(sourceFiles int)                    {}
func (n *NoOpProgressReporter) OnCompileStart(sourceFiles int)                         {}
func (n *NoOpProgressReporter) OnCompileComplete(artifacts int, duration time.Duration) {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)                   {}
func (n *NoOpProgressReporter) OnFileProcessed(relPath string, functions int)          {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                                {}
