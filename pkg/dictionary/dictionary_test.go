package dictionary

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func readAll(t *testing.T, s *Store) []string {
	t.Helper()
	var words []string
	for rec, ok := s.Next(); ok; rec, ok = s.Next() {
		words = append(words, rec.String())
	}
	return words
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bin")
	store, err := Open(path)
	if store != nil {
		t.Fatal("expected nil store for a missing file")
	}
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	var notFound *FileNotFoundError
	if !errors.As(err, &notFound) || notFound.Path != path {
		t.Errorf("expected FileNotFoundError for %s, got %v", path, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the cause to be preserved, got %v", err)
	}
}

func TestStoreScan(t *testing.T) {
	testCases := []struct {
		data        []byte
		expected    []string
		description string
	}{
		{[]byte{4, 'c', 'a', 't', 0, 5, 'c', 'a', 't', 's', 0}, []string{"cat", "cats"}, "Terminated records"},
		{[]byte{}, nil, "Empty file"},
		{[]byte{0, 3, 'g', 'o', 0, 0}, []string{"go"}, "Zero length records skipped"},
		{[]byte{5, 'a', 'b', 0, 'c', 0}, []string{"ab"}, "Embedded zero byte cuts the text"},
		{[]byte{3, 'g', 'o', 'x'}, []string{"go"}, "Length counts a terminator even when it is missing"},
		{[]byte{1, 0, 2, 'a', 0}, []string{"", "a"}, "Record with only a terminator"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			store, err := Open(writeFile(t, "words.bin", tc.data))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer store.Close()

			if got := readAll(t, store); !equalWords(got, tc.expected) {
				t.Errorf("scan = %q, expected %q", got, tc.expected)
			}
			if err := store.Err(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestStoreMalformedRecordEndsScan(t *testing.T) {
	data := []byte{4, 'c', 'a', 't', 0, 9, 'd', 'o'}
	store, err := Open(writeFile(t, "words.bin", data))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if got := readAll(t, store); !equalWords(got, []string{"cat"}) {
		t.Fatalf("scan = %q, expected [cat]", got)
	}

	var decodeErr *DecodeError
	if !errors.As(store.Err(), &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", store.Err())
	}
	if decodeErr.Offset != 5 || decodeErr.Declared != 9 || decodeErr.Available != 2 {
		t.Errorf("unexpected decode error %+v", decodeErr)
	}

	if _, ok := store.Next(); ok {
		t.Error("Next should keep failing until Rewind")
	}
}

func TestStoreRewind(t *testing.T) {
	data := []byte{4, 'c', 'a', 't', 0, 4, 'd', 'o', 'g', 0, 9, 'x'}
	path := writeFile(t, "words.bin", data)
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	if store.Path() != path {
		t.Errorf("Path = %q, expected %q", store.Path(), path)
	}

	first := readAll(t, store)
	if store.Err() == nil {
		t.Fatal("expected a decode error on the first pass")
	}
	if err := store.Rewind(); err != nil {
		t.Fatalf("Rewind failed: %v", err)
	}
	if store.Err() != nil {
		t.Error("Rewind should clear the previous error")
	}
	second := readAll(t, store)
	if !equalWords(first, second) || !equalWords(first, []string{"cat", "dog"}) {
		t.Errorf("passes differ: %q vs %q", first, second)
	}
}

func TestBuilderWriteTo(t *testing.T) {
	b := NewBuilder()
	for _, w := range []string{"dog", "cat", "cats", "cat"} {
		if _, err := b.Add(w); err != nil {
			t.Fatalf("Add(%q) failed: %v", w, err)
		}
	}
	if b.Len() != 3 {
		t.Fatalf("Len = %d, expected 3", b.Len())
	}

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	expected := []byte{4, 'c', 'a', 't', 0, 5, 'c', 'a', 't', 's', 0, 4, 'd', 'o', 'g', 0}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("WriteTo wrote % x, expected % x", buf.Bytes(), expected)
	}
	if n != int64(len(expected)) {
		t.Errorf("WriteTo reported %d bytes, expected %d", n, len(expected))
	}
}

func TestBuilderAdd(t *testing.T) {
	b := NewBuilder()

	added, err := b.Add("word")
	if err != nil || !added {
		t.Fatalf("first Add = %v, %v", added, err)
	}
	added, err = b.Add("word")
	if err != nil || added {
		t.Errorf("duplicate Add = %v, %v", added, err)
	}
	if _, err := b.Add(""); !errors.Is(err, ErrEmptyWord) {
		t.Errorf("expected ErrEmptyWord, got %v", err)
	}
	if _, err := b.Add(strings.Repeat("x", MaxWordLen+1)); !errors.Is(err, ErrWordTooLong) {
		t.Errorf("expected ErrWordTooLong, got %v", err)
	}
	if _, err := b.Add(strings.Repeat("x", MaxWordLen)); err != nil {
		t.Errorf("a word of exactly %d bytes should fit: %v", MaxWordLen, err)
	}
	if _, err := b.Add("a\x00b"); err == nil {
		t.Error("expected an error for a word with a zero byte")
	}
}

func TestBuildFileRoundTrip(t *testing.T) {
	src := writeFile(t, "words.txt", []byte("# fruit\nbanana\n\napple\n  cherry  \n"+strings.Repeat("z", 300)+"\napple\n"))
	dst := filepath.Join(filepath.Dir(src), "words.bin")

	n, err := BuildFile(src, dst)
	if err != nil {
		t.Fatalf("BuildFile failed: %v", err)
	}
	if n != 3 {
		t.Errorf("BuildFile wrote %d words, expected 3", n)
	}

	store, err := Open(dst)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	if got := readAll(t, store); !equalWords(got, []string{"apple", "banana", "cherry"}) {
		t.Errorf("scan = %q", got)
	}
}

func TestDetectFileFormat(t *testing.T) {
	bin := writeFile(t, "words.bin", []byte{3, 'g', 'o', 0})
	txt := writeFile(t, "words.txt", []byte("go\n"))
	bad := writeFile(t, "broken.bin", []byte{3, 'g'})
	other := writeFile(t, "words.csv", []byte("go\n"))

	if f, err := DetectFileFormat(bin); err != nil || f != FormatRecords {
		t.Errorf("DetectFileFormat(bin) = %v, %v", f, err)
	}
	if f, err := DetectFileFormat(txt); err != nil || f != FormatText {
		t.Errorf("DetectFileFormat(txt) = %v, %v", f, err)
	}
	if _, err := DetectFileFormat(bad); err == nil {
		t.Error("expected an error for a truncated word list")
	}
	if _, err := DetectFileFormat(other); err == nil {
		t.Error("expected an error for an unknown extension")
	}
}
