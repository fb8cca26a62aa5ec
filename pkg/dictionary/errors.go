package dictionary

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when the word list cannot be opened.
	ErrFileNotFound = errors.New("word list not found")

	// ErrEmptyWord is returned by the builder for empty input lines.
	ErrEmptyWord = errors.New("empty word")

	// ErrWordTooLong is returned by the builder for words that do not fit a record.
	ErrWordTooLong = errors.New("word too long for a record")
)

// FileNotFoundError carries the path that failed to open.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("word list %s could not be opened: %v", e.Path, e.Err)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

func (e *FileNotFoundError) Unwrap() error {
	return e.Err
}

// DecodeError reports a record whose declared length runs past the end of the file.
type DecodeError struct {
	Offset    int64
	Declared  int
	Available int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed record at offset %d: declared %d bytes, %d available",
		e.Offset, e.Declared, e.Available)
}
