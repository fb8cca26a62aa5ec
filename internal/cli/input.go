// Package cli handles cmd line input and prints search results for DBG and testing the engine
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/wordscan/pkg/config"
	"github.com/bastiangx/wordscan/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Commands accepted on the prompt besides plain queries
const (
	cmdStop  = ":stop"
	cmdStats = ":stats"
)

// InputHandler reads queries from stdin and prints results as the engine
// delivers them. Printing happens on the engine's worker goroutine.
type InputHandler struct {
	engine      suggest.ISearcher
	in          io.Reader
	out         io.Writer
	maxQueryLen int

	strongStyle lipgloss.Style
	approxStyle lipgloss.Style
	footerStyle lipgloss.Style

	// guarded by mu; rank counts the lines of the batch being printed
	mu        sync.Mutex
	submitted []submission
	rank      int
}

// submission is a query handed to the engine and when it was handed over
type submission struct {
	query string
	at    time.Time
}

// NewInputHandler handles initialization of the InputHandler on stdin/stdout
func NewInputHandler(engine suggest.ISearcher, cfg *config.Config) *InputHandler {
	return NewInputHandlerWithIO(engine, cfg, os.Stdin, os.Stdout)
}

// NewInputHandlerWithIO creates a handler on arbitrary streams and registers
// it as the engine's result sink.
func NewInputHandlerWithIO(engine suggest.ISearcher, cfg *config.Config, in io.Reader, out io.Writer) *InputHandler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	h := &InputHandler{
		engine:      engine,
		in:          in,
		out:         out,
		maxQueryLen: cfg.Server.MaxQueryLen,
		strongStyle: lipgloss.NewStyle(),
		approxStyle: lipgloss.NewStyle(),
		footerStyle: lipgloss.NewStyle(),
	}
	if cfg.CLI.Color {
		h.strongStyle = h.strongStyle.Foreground(lipgloss.Color("75")).Bold(true)
		h.approxStyle = h.approxStyle.Foreground(lipgloss.Color("179"))
		h.footerStyle = h.footerStyle.Foreground(lipgloss.Color("241")).Italic(true)
	}
	engine.SetSink(h)
	return h
}

// Start begins the interface loop.
// Each line is a new query, replacing whatever is still being scanned.
// An empty line or :stop cancels the scan, :stats prints the engine counters.
// Returns nil once stdin is exhausted.
func (h *InputHandler) Start() error {
	log.Print("WordScan CLI")
	log.Print("type a word and press Enter to search, empty line stops (Ctrl+C to exit):")

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if line != "" || err == nil {
			h.handleInput(strings.TrimSpace(line))
		}
		if err != nil {
			return nil
		}
	}
}

// handleInput runs one prompt line.
func (h *InputHandler) handleInput(line string) {
	switch line {
	case "", cmdStop:
		h.engine.StopSearch()
		return
	case cmdStats:
		h.printStats()
		return
	}

	if len(line) > h.maxQueryLen {
		log.Errorf("Query too long: %d bytes, max %d", len(line), h.maxQueryLen)
		return
	}

	h.mu.Lock()
	h.submitted = append(h.submitted, submission{query: line, at: time.Now()})
	h.mu.Unlock()

	log.Debug("Processing request for", "query", line)
	if err := h.engine.Search(line); err != nil {
		log.Errorf("Search failed: %v", err)
	}
}

// Match prints one result.
func (h *InputHandler) Match(word string, strong bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rank++
	if strong {
		fmt.Fprintf(h.out, "%2d. %s\n", h.rank, h.strongStyle.Render(word))
	} else {
		fmt.Fprintf(h.out, "%2d. %s\n", h.rank, h.approxStyle.Render(word))
	}
}

// SearchFinished prints the footer of a completed scan.
func (h *InputHandler) SearchFinished(query string, strong, approximate int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rank = 0
	var elapsed time.Duration
	for i := len(h.submitted) - 1; i >= 0; i-- {
		if h.submitted[i].query == query {
			elapsed = time.Since(h.submitted[i].at)
			h.submitted = h.submitted[i+1:]
			break
		}
	}
	if strong+approximate == 0 {
		fmt.Fprintln(h.out, h.footerStyle.Render(fmt.Sprintf("no matches for '%s'", query)))
		return
	}
	footer := fmt.Sprintf("%d strong, %d approximate for '%s' [ %v ]", strong, approximate, query, elapsed.Round(time.Microsecond))
	fmt.Fprintln(h.out, h.footerStyle.Render(footer))
}

// printStats writes the engine counters in key order
func (h *InputHandler) printStats() {
	stats := h.engine.Stats()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range slices.Sorted(maps.Keys(stats)) {
		fmt.Fprintf(h.out, "%-16s %d\n", k, stats[k])
	}
}
