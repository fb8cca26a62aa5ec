/*
Package server implements msgpack IPC for fuzzy word search.

The server reads a stream of msgpack encoded requests from stdin and writes
msgpack encoded responses to stdout. Searches run on the engine's background
worker, so responses are written as soon as a scan finishes, not in lockstep
with the request loop.

# IPC

Each request carries an id, an action and, for searches, the query:

	{"id": "req_001", "a": "search", "q": "recieve"}

A search response lists strong matches (exact and prefix hits) and
approximate matches (edit distance and sound-alike hits), best first:

	{"id": "req_001", "q": "recieve", "s": [], "x": ["receive", "relieve"], "c": 2, "t": 812}

A newer search replaces an older one that has not finished yet. The older
request then gets no response at all, so clients typing ahead only ever see
results for their latest query.

Stopping and stats:

	{"id": "req_002", "a": "stop"}
	{"id": "req_003", "a": "stats"}

Requests without an id are given a random one, echoed back in the response.
*/
package server

// Actions understood by the server
const (
	ActionSearch = "search"
	ActionStop   = "stop"
	ActionStats  = "stats"
)

// Request - one IPC request
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"a"`
	Query  string `msgpack:"q,omitempty"`
}

// SearchResponse - results of a completed scan
type SearchResponse struct {
	ID        string   `msgpack:"id"`
	Query     string   `msgpack:"q"`
	Strong    []string `msgpack:"s"`
	Approx    []string `msgpack:"x"`
	Count     int      `msgpack:"c"`
	TimeTaken int64    `msgpack:"t"`
}

// StatusResponse - acknowledgement for control actions
type StatusResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
