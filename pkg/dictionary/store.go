// Package dictionary reads and writes the binary word list scanned by the search engine.
//
// The file is a plain sequence of records, each a single unsigned length byte L
// followed by L bytes of content. The content ends with a zero byte which is
// counted in L, so the usable text of a record is its first L-1 bytes. Writers
// in this package keep that convention so files stay byte compatible with
// existing word lists.
package dictionary

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// MaxRecordLen is the largest content length a record can declare.
const MaxRecordLen = 255

// Record is the usable text of one word list entry.
type Record []byte

func (r Record) String() string {
	return string(r)
}

// Store gives a restartable forward scan over a word list file.
// A Store is not safe for concurrent use.
type Store struct {
	path   string
	file   *os.File
	reader *bufio.Reader
	buf    [MaxRecordLen]byte
	offset int64
	err    error
}

// Open opens the word list at path for scanning.
// The returned error matches ErrFileNotFound when the file cannot be opened.
func Open(path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileNotFoundError{Path: path, Err: err}
	}
	log.Debugf("Opened word list %s", path)
	return &Store{
		path:   path,
		file:   file,
		reader: bufio.NewReader(file),
	}, nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Rewind moves the scan back to the first record.
func (s *Store) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.reader.Reset(s.file)
	s.offset = 0
	s.err = nil
	return nil
}

// Next returns the next record. It returns false at the end of the file or
// when a malformed record ends the scan early, in which case Err reports it.
// The returned Record is only valid until the next call.
func (s *Store) Next() (Record, bool) {
	if s.err != nil {
		return nil, false
	}

	for {
		declared, err := s.reader.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return nil, false
		}
		start := s.offset
		s.offset++

		if declared == 0 {
			continue
		}

		content := s.buf[:declared]
		n, err := io.ReadFull(s.reader, content)
		s.offset += int64(n)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				s.err = &DecodeError{Offset: start, Declared: int(declared), Available: n}
			} else {
				s.err = err
			}
			return nil, false
		}

		return recordText(content), true
	}
}

// recordText strips the counted terminator, and anything after an earlier zero byte.
func recordText(content []byte) Record {
	text := content[:len(content)-1]
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	return Record(text)
}

// Err returns the error that ended the last scan, if any.
func (s *Store) Err() error {
	return s.err
}

// Close releases the underlying file.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
