// Package suggest is the core, scanning the word list for a query and ranking what it finds.
package suggest

// ISearcher defines the interface for search engines driven by the CLI and the IPC server
type ISearcher interface {
	// Search replaces the pending query and starts a fresh scan
	Search(text string) error

	// StopSearch cancels the scan in progress, if any
	StopSearch()

	// SetSink registers where results are delivered
	SetSink(sink Sink)

	// Stats returns counters about the scans run so far
	Stats() map[string]int

	// Close stops the worker and releases the word list
	Close() error
}

// Sink receives the results of a completed scan.
//
// Match is called on the engine's worker goroutine, once per result: strong
// matches first in descending score order, then approximate matches in
// descending score order. Results of a superseded or stopped scan are never
// delivered.
type Sink interface {
	Match(word string, strong bool)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(word string, strong bool)

// Match calls f(word, strong).
func (f SinkFunc) Match(word string, strong bool) {
	f(word, strong)
}

// Finisher is implemented by sinks that want to know when a scan's results
// have all been delivered. It runs on the worker goroutine after the last
// Match call, and also for scans that found nothing.
type Finisher interface {
	SearchFinished(query string, strong, approximate int)
}
