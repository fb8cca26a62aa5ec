package suggest

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/wordscan/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

const waitTimeout = 5 * time.Second

type batch struct {
	query  string
	strong []string
	approx []string
}

// recordingSink groups delivered matches by the scan that produced them.
type recordingSink struct {
	mu       sync.Mutex
	current  batch
	batches  []batch
	finished chan batch
}

func newRecordingSink() *recordingSink {
	return &recordingSink{finished: make(chan batch, 64)}
}

func (s *recordingSink) Match(word string, strong bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strong {
		s.current.strong = append(s.current.strong, word)
	} else {
		s.current.approx = append(s.current.approx, word)
	}
}

func (s *recordingSink) SearchFinished(query string, strong, approximate int) {
	s.mu.Lock()
	b := s.current
	b.query = query
	s.batches = append(s.batches, b)
	s.current = batch{}
	s.mu.Unlock()
	s.finished <- b
}

func (s *recordingSink) matchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.current.strong) + len(s.current.approx)
	for _, b := range s.batches {
		n += len(b.strong) + len(b.approx)
	}
	return n
}

func (s *recordingSink) wait(t *testing.T) batch {
	t.Helper()
	select {
	case b := <-s.finished:
		return b
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for search results")
		return batch{}
	}
}

func writeWordList(t *testing.T, words ...string) string {
	t.Helper()
	b := dictionary.NewBuilder()
	for _, w := range words {
		_, err := b.Add(w)
		require.NoError(t, err)
	}
	path := filepath.Join(t.TempDir(), "words.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = b.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func newTestEngine(t *testing.T, path string, sink Sink) *Engine {
	t.Helper()
	e := New(path, WithSink(sink))
	require.NoError(t, e.Err())
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineRanksStrongAndApproximate(t *testing.T) {
	sink := newRecordingSink()
	e := newTestEngine(t, writeWordList(t, "cat", "cats", "dog", "elephant"), sink)

	require.NoError(t, e.Search("cat"))
	got := sink.wait(t)

	assert.Equal(t, "cat", got.query)
	assert.Equal(t, []string{"cat", "cats"}, got.strong)
	assert.Equal(t, []string{"dog"}, got.approx, "dog is within the edit bound but never strong")
	assert.NotContains(t, got.strong, "dog")
	assert.NotContains(t, append(got.strong, got.approx...), "elephant")
}

func TestEngineRawMatchBeatsNormalizedMatch(t *testing.T) {
	sink := newRecordingSink()
	e := newTestEngine(t, writeWordList(t, "cat", "Cat", "CATS"), sink)

	require.NoError(t, e.Search("Cat"))
	got := sink.wait(t)

	// Cat scores 25 on the raw pass, cat 24 on the normalized pass, CATS 20.
	assert.Equal(t, []string{"Cat", "cat", "CATS"}, got.strong)
	assert.Empty(t, got.approx)
}

func TestEngineSoundexFallback(t *testing.T) {
	sink := newRecordingSink()
	e := newTestEngine(t, writeWordList(t, "ruhhhhhhhhbe", "cat"), sink)

	require.NoError(t, e.Search("rob"))
	got := sink.wait(t)

	assert.Empty(t, got.strong)
	assert.Equal(t, []string{"cat", "ruhhhhhhhhbe"}, got.approx)
}

func TestEngineBucketLimit(t *testing.T) {
	var ws []string
	for i := 0; i < 30; i++ {
		ws = append(ws, fmt.Sprintf("word%02d", i))
	}
	sink := newRecordingSink()
	e := newTestEngine(t, writeWordList(t, ws...), sink)

	require.NoError(t, e.Search("word"))
	got := sink.wait(t)

	require.Len(t, got.strong, MaxResults)
	assert.Equal(t, ws[:MaxResults], got.strong, "equal scores keep scan order")
	assert.Empty(t, got.approx)
}

func TestEngineMissingWordList(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "missing.bin"))
	defer e.Close()

	assert.ErrorIs(t, e.Err(), ErrFileNotFound)
	assert.ErrorIs(t, e.Search("cat"), ErrFileNotFound)
	e.StopSearch()
	assert.NoError(t, e.Close())
}

func TestEngineLastQueryWins(t *testing.T) {
	sink := newRecordingSink()
	e := newEngine(writeWordList(t, "apple", "banana", "berry"), WithSink(sink))
	require.NoError(t, e.Err())
	defer e.Close()

	require.NoError(t, e.Search("a"))
	require.NoError(t, e.Search("b"))
	e.start()

	got := sink.wait(t)
	assert.Equal(t, "b", got.query)
	assert.Equal(t, []string{"berry", "banana"}, got.strong, "the shorter word loses less to the prefix penalty")

	require.NoError(t, e.Close())
	assert.Len(t, sink.batches, 1)
	assert.Equal(t, 1, e.Stats()["scansStarted"])
}

// holdScan returns an engine whose first scan blocks on its first record until release is closed.
func holdScan(t *testing.T, sink Sink) (e *Engine, entered <-chan struct{}, release chan struct{}) {
	t.Helper()
	e = newEngine(writeWordList(t, "cat", "cats", "catalog", "dog"), WithSink(sink))
	require.NoError(t, e.Err())

	in := make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	e.recordHook = func() {
		once.Do(func() {
			close(in)
			<-release
		})
	}
	e.start()
	return e, in, release
}

func TestEngineStopDuringScan(t *testing.T) {
	sink := newRecordingSink()
	e, entered, release := holdScan(t, sink)
	defer e.Close()

	require.NoError(t, e.Search("cat"))
	<-entered
	e.StopSearch()
	close(release)

	require.Eventually(t, func() bool {
		return e.Stats()["scansAborted"] == 1
	}, waitTimeout, 5*time.Millisecond)
	assert.Zero(t, sink.matchCount())
	assert.Zero(t, e.Stats()["scansCompleted"])

	// the engine is still usable afterwards
	require.NoError(t, e.Search("dog"))
	got := sink.wait(t)
	assert.Equal(t, "dog", got.query)
	assert.Equal(t, []string{"dog"}, got.strong)
}

func TestEngineSupersededDuringScan(t *testing.T) {
	sink := newRecordingSink()
	e, entered, release := holdScan(t, sink)
	defer e.Close()

	require.NoError(t, e.Search("cat"))
	<-entered
	require.NoError(t, e.Search("dog"))
	close(release)

	got := sink.wait(t)
	assert.Equal(t, "dog", got.query)
	assert.Equal(t, 1, e.Stats()["scansAborted"])
	assert.Equal(t, 1, e.Stats()["scansCompleted"])
}

func TestEngineCloseDuringScan(t *testing.T) {
	sink := newRecordingSink()
	e, entered, release := holdScan(t, sink)

	require.NoError(t, e.Search("cat"))
	<-entered

	closed := make(chan error, 1)
	go func() { closed <- e.Close() }()

	require.Eventually(t, func() bool {
		return State(e.state.Load()) == ShutdownRequested
	}, waitTimeout, time.Millisecond)
	close(release)

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("Close did not return")
	}
	assert.Zero(t, sink.matchCount())
	assert.ErrorIs(t, e.Search("cat"), ErrEngineClosed)
	assert.NoError(t, e.Close(), "Close is idempotent")
}

func TestEngineStopWhenIdle(t *testing.T) {
	sink := newRecordingSink()
	e := newTestEngine(t, writeWordList(t, "cat", "dog"), sink)

	e.StopSearch()
	e.StopSearch()
	require.NoError(t, e.Search("dog"))
	assert.Equal(t, "dog", sink.wait(t).query)

	e.StopSearch()
	require.NoError(t, e.Search("cat"))
	assert.Equal(t, "cat", sink.wait(t).query)

	assert.Equal(t, 2, e.Stats()["scansStarted"], "a stop never starts a scan")
}

func TestEngineMalformedTailStillDelivers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.bin")
	require.NoError(t, os.WriteFile(path, []byte{4, 'c', 'a', 't', 0, 9, 'd', 'o'}, 0644))

	sink := newRecordingSink()
	e := newTestEngine(t, path, sink)

	require.NoError(t, e.Search("cat"))
	got := sink.wait(t)
	assert.Equal(t, []string{"cat"}, got.strong)
	assert.Equal(t, 1, e.Stats()["decodeErrors"])
	assert.Equal(t, 1, e.Stats()["recordsRead"])
}

func TestEngineWithoutSinkDropsResults(t *testing.T) {
	e := New(writeWordList(t, "cat"))
	require.NoError(t, e.Search("cat"))
	require.Eventually(t, func() bool {
		return e.Stats()["scansCompleted"] == 1
	}, waitTimeout, 5*time.Millisecond)
	require.NoError(t, e.Close())
}

func TestEngineConcurrentProducers(t *testing.T) {
	var ws []string
	for i := 0; i < 500; i++ {
		ws = append(ws, fmt.Sprintf("term%03d", i))
	}
	ws = append(ws, "cat", "cats")
	sink := newRecordingSink()
	e := newTestEngine(t, writeWordList(t, ws...), sink)

	var g errgroup.Group
	for p := 0; p < 8; p++ {
		g.Go(func() error {
			for i := 0; i < 50; i++ {
				if err := e.Search(fmt.Sprintf("term%d", i)); err != nil {
					return err
				}
				if i%7 == 0 {
					e.StopSearch()
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.NoError(t, e.Search("cat"))

	for {
		got := sink.wait(t)
		if got.query != "cat" {
			continue
		}
		assert.Equal(t, []string{"cat", "cats"}, got.strong)
		break
	}
}

func TestEngineOptions(t *testing.T) {
	sink := newRecordingSink()
	path := writeWordList(t, "word1", "word2", "word3", "ward", "wxrd99")
	e := New(path, WithSink(sink), WithMaxResults(2), WithMaxEditDistance(1))
	defer e.Close()

	require.NoError(t, e.Search("word"))
	got := sink.wait(t)
	assert.Equal(t, []string{"word1", "word2"}, got.strong)
	assert.Equal(t, []string{"ward"}, got.approx)
	assert.Equal(t, 2, e.Stats()["maxResults"])
}

func TestEngineSinkFunc(t *testing.T) {
	var mu sync.Mutex
	var got []string
	sink := SinkFunc(func(word string, strong bool) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, fmt.Sprintf("%s:%t", word, strong))
	})

	e := New(writeWordList(t, "cat", "cats", "dog"), WithSink(sink))
	defer e.Close()

	require.NoError(t, e.Search("cat"))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, waitTimeout, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"cat:true", "cats:true", "dog:false"}, got)
}
