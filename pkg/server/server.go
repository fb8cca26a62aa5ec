package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/wordscan/pkg/config"
	"github.com/bastiangx/wordscan/pkg/dictionary"
	"github.com/bastiangx/wordscan/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// pendingSearch is a search request still waiting for its scan to finish
type pendingSearch struct {
	id      string
	query   string
	started time.Time
}

// Server handles the IPC for word search
type Server struct {
	engine suggest.ISearcher
	config *config.Config
	dec    *msgpack.Decoder

	writeMu sync.Mutex
	enc     *msgpack.Encoder

	mu      sync.Mutex
	pending []pendingSearch
	strong  []string
	approx  []string
}

// NewServer creates a new search server using stdin/stdout for IPC
func NewServer(engine suggest.ISearcher, cfg *config.Config) *Server {
	return NewServerWithIO(engine, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on arbitrary streams and registers it as
// the engine's result sink.
func NewServerWithIO(engine suggest.ISearcher, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		engine: engine,
		config: cfg,
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
	}
	engine.SetSink(s)
	return s
}

// Start sends a ready status and processes requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			s.sendError("", "invalid msgpack request", 400)
			return fmt.Errorf("failed to decode request: %w", err)
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one request by action
func (s *Server) handleRequest(req Request) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	switch req.Action {
	case ActionSearch:
		s.handleSearch(req)
	case ActionStop:
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		s.engine.StopSearch()
		s.send(StatusResponse{ID: req.ID, Status: "stopped"})
	case ActionStats:
		s.send(StatusResponse{ID: req.ID, Status: "ok", Stats: s.engine.Stats()})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %q", req.Action), 400)
	}
}

// handleSearch validates the query and hands it to the engine.
func (s *Server) handleSearch(req Request) {
	if req.Query == "" {
		s.sendError(req.ID, "missing 'q' parameter", 400)
		return
	}
	if maxLen := s.config.Server.MaxQueryLen; len(req.Query) > maxLen {
		s.sendError(req.ID, fmt.Sprintf("query exceeds maximum length of %d bytes", maxLen), 400)
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, pendingSearch{id: req.ID, query: req.Query, started: time.Now()})
	s.mu.Unlock()

	if err := s.engine.Search(req.Query); err != nil {
		s.mu.Lock()
		s.pending = s.pending[:len(s.pending)-1]
		s.mu.Unlock()

		code := 500
		if errors.Is(err, dictionary.ErrFileNotFound) {
			code = 503
		}
		s.sendError(req.ID, err.Error(), code)
	}
}

// Match collects one result; it runs on the engine worker.
func (s *Server) Match(word string, strong bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strong {
		s.strong = append(s.strong, word)
	} else {
		s.approx = append(s.approx, word)
	}
}

// SearchFinished answers the newest request for query. Requests queued
// before it were superseded and are dropped without a response.
func (s *Server) SearchFinished(query string, _, _ int) {
	s.mu.Lock()
	strong, approx := s.strong, s.approx
	s.strong, s.approx = nil, nil

	idx := -1
	for i := len(s.pending) - 1; i >= 0; i-- {
		if s.pending[i].query == query {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		log.Debug("Dropping results with no waiting request", "query", query)
		return
	}
	req := s.pending[idx]
	s.pending = s.pending[idx+1:]
	s.mu.Unlock()

	if strong == nil {
		strong = []string{}
	}
	if approx == nil {
		approx = []string{}
	}
	s.send(SearchResponse{
		ID:        req.id,
		Query:     query,
		Strong:    strong,
		Approx:    approx,
		Count:     len(strong) + len(approx),
		TimeTaken: time.Since(req.started).Microseconds(),
	})
}

// send encodes one response; the request loop and the engine worker both write.
func (s *Server) send(response any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
