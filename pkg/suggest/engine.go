package suggest

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bastiangx/wordscan/internal/logger"
	"github.com/bastiangx/wordscan/pkg/dictionary"
	"github.com/bastiangx/wordscan/pkg/fuzzy"
	"github.com/charmbracelet/log"
)

// DefaultMaxEditDistance bounds the edit distance of approximate matches.
const DefaultMaxEditDistance = 5

var (
	// ErrFileNotFound is returned by Search when the word list never opened.
	ErrFileNotFound = dictionary.ErrFileNotFound

	// ErrEngineClosed is returned by Search after Close.
	ErrEngineClosed = errors.New("search engine closed")
)

// State drives the worker loop.
type State uint32

const (
	Waiting State = iota
	NewQueryPending
	StopRequested
	ShutdownRequested
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case NewQueryPending:
		return "new-query"
	case StopRequested:
		return "stop"
	case ShutdownRequested:
		return "shutdown"
	}
	return "unknown"
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxResults sets the capacity of each result bucket.
func WithMaxResults(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

// WithMaxEditDistance sets the largest edit distance counted as an approximate match.
func WithMaxEditDistance(d int) Option {
	return func(e *Engine) {
		if d > 0 {
			e.maxEdit = d
		}
	}
}

// WithSink registers the result sink at construction.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// Engine scans a word list on a single background goroutine.
//
// Search and StopSearch may be called from any goroutine. Each call to Search
// supersedes the previous query: a scan that is overtaken by a newer query, a
// stop or Close delivers nothing. Results reach the Sink on the worker
// goroutine once a scan has run to the end of the word list.
type Engine struct {
	path       string
	store      *dictionary.Store
	openErr    error
	maxResults int
	maxEdit    int
	log        *log.Logger

	// guarded by mu
	mu      sync.Mutex
	wake    *sync.Cond
	pending string
	sink    Sink

	// read without mu inside the record loop
	state atomic.Uint32

	done      chan struct{}
	closeOnce sync.Once

	// called before each record is scored; tests use it to hold a scan open
	recordHook func()

	scansStarted   atomic.Int64
	scansCompleted atomic.Int64
	scansAborted   atomic.Int64
	recordsRead    atomic.Int64
	decodeErrors   atomic.Int64
}

// New opens the word list at path and starts the worker. A word list that
// cannot be opened is not fatal: it is logged, reported by Err, and every
// Search returns ErrFileNotFound.
func New(path string, opts ...Option) *Engine {
	e := newEngine(path, opts...)
	e.start()
	return e
}

func newEngine(path string, opts ...Option) *Engine {
	e := &Engine{
		path:       path,
		maxResults: MaxResults,
		maxEdit:    DefaultMaxEditDistance,
		log:        logger.New("search"),
		done:       make(chan struct{}),
	}
	e.wake = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}

	store, err := dictionary.Open(path)
	if err != nil {
		e.log.Warnf("Word list unavailable: %v", err)
		e.openErr = err
	} else {
		e.store = store
	}
	return e
}

func (e *Engine) start() {
	go e.run()
}

// Err returns the error from opening the word list, if any.
func (e *Engine) Err() error {
	return e.openErr
}

// SetSink registers where results are delivered. It must be called before
// the first Search.
func (e *Engine) SetSink(s Sink) {
	e.mu.Lock()
	e.sink = s
	e.mu.Unlock()
}

// Search replaces the pending query with text and wakes the worker. Any scan
// in progress is abandoned at its next record.
func (e *Engine) Search(text string) error {
	if e.store == nil {
		return e.openErr
	}

	e.mu.Lock()
	if State(e.state.Load()) == ShutdownRequested {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.pending = text
	e.state.Store(uint32(NewQueryPending))
	e.mu.Unlock()

	e.wake.Broadcast()
	return nil
}

// StopSearch cancels the scan in progress without starting a new one.
// It has no effect when the engine is idle.
func (e *Engine) StopSearch() {
	e.mu.Lock()
	if State(e.state.Load()) != ShutdownRequested {
		e.state.Store(uint32(StopRequested))
	}
	e.mu.Unlock()

	e.wake.Broadcast()
}

// Close stops the worker, waits for it to exit and then closes the word list.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.state.Store(uint32(ShutdownRequested))
		e.mu.Unlock()
		e.wake.Broadcast()

		<-e.done

		if e.store != nil {
			err = e.store.Close()
		}
		e.log.Debug("Engine closed", "path", e.path)
	})
	return err
}

// Stats returns counters about the scans run so far.
func (e *Engine) Stats() map[string]int {
	return map[string]int{
		"scansStarted":   int(e.scansStarted.Load()),
		"scansCompleted": int(e.scansCompleted.Load()),
		"scansAborted":   int(e.scansAborted.Load()),
		"recordsRead":    int(e.recordsRead.Load()),
		"decodeErrors":   int(e.decodeErrors.Load()),
		"maxResults":     e.maxResults,
	}
}

// run is the worker loop.
func (e *Engine) run() {
	defer close(e.done)

	for {
		e.mu.Lock()
		for State(e.state.Load()) == Waiting {
			e.wake.Wait()
		}

		state := State(e.state.Load())
		if state == ShutdownRequested {
			e.mu.Unlock()
			return
		}
		e.state.Store(uint32(Waiting))
		if state == StopRequested {
			e.mu.Unlock()
			continue
		}
		query := e.pending
		sink := e.sink
		e.mu.Unlock()

		e.scan(query, sink)
	}
}

// cancelled reports whether the scan in progress has been overtaken.
func (e *Engine) cancelled() bool {
	return State(e.state.Load()) != Waiting
}

// scan runs one full pass over the word list for query.
func (e *Engine) scan(query string, sink Sink) {
	if e.store == nil {
		return
	}
	e.scansStarted.Add(1)

	if err := e.store.Rewind(); err != nil {
		e.log.Errorf("Failed to rewind word list: %v", err)
		e.scansAborted.Add(1)
		return
	}

	normQuery := fuzzy.Normalize(query)
	queryCode := fuzzy.Soundex(normQuery)

	strong := NewBucket(e.maxResults)
	approx := NewBucket(e.maxResults)

	for {
		if e.cancelled() {
			e.scansAborted.Add(1)
			e.log.Debug("Scan abandoned", "query", query)
			return
		}
		if e.recordHook != nil {
			e.recordHook()
		}

		rec, ok := e.store.Next()
		if !ok {
			break
		}
		e.recordsRead.Add(1)

		word := rec.String()
		e.classify(query, normQuery, queryCode, word, strong, approx)
	}

	if err := e.store.Err(); err != nil {
		e.decodeErrors.Add(1)
		e.log.Warnf("Word list %s ended early: %v", e.path, err)
	}

	if e.cancelled() {
		e.scansAborted.Add(1)
		return
	}
	e.scansCompleted.Add(1)
	e.deliver(query, sink, strong, approx)
}

// classify scores word against the query and files it in at most one bucket.
// The first stage that matches wins.
func (e *Engine) classify(query, normQuery string, queryCode fuzzy.Code, word string, strong, approx *Bucket) {
	if score := fuzzy.PrefixScore(query, word); score > 0 {
		strong.Add(Candidate{Word: word, Score: score + 1})
		return
	}

	normWord := fuzzy.Normalize(word)
	if score := fuzzy.PrefixScore(normQuery, normWord); score > 0 {
		strong.Add(Candidate{Word: word, Score: score})
		return
	}

	if d := fuzzy.BoundedEditDistance(normQuery, normWord, e.maxEdit); d > 0 && d <= e.maxEdit {
		approx.Add(Candidate{Word: word, Score: 10 - d})
		return
	}

	if fuzzy.Soundex(word) == queryCode {
		approx.Add(Candidate{Word: word, Score: 1})
	}
}

// deliver drains both buckets into the sink.
func (e *Engine) deliver(query string, sink Sink, strong, approx *Bucket) {
	if sink == nil {
		e.log.Error("No result sink registered, dropping results", "query", query)
		return
	}

	for _, c := range strong.Items() {
		e.log.Debugf("%d - %s", c.Score, c.Word)
		sink.Match(c.Word, true)
	}
	for _, c := range approx.Items() {
		e.log.Debugf("%d  %s", c.Score, c.Word)
		sink.Match(c.Word, false)
	}

	if f, ok := sink.(Finisher); ok {
		f.SearchFinished(query, strong.Len(), approx.Len())
	}
}
