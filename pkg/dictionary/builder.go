package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// MaxWordLen is the longest word a record can hold once the terminator is counted.
const MaxWordLen = MaxRecordLen - 1

// Builder collects words and writes them out as a binary word list.
// Duplicate words are dropped.
type Builder struct {
	trie  *patricia.Trie
	count int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{trie: patricia.NewTrie()}
}

// Add queues a word for writing. It reports whether the word was new.
func (b *Builder) Add(word string) (bool, error) {
	if word == "" {
		return false, ErrEmptyWord
	}
	if len(word) > MaxWordLen {
		return false, fmt.Errorf("%w: %d bytes (max %d)", ErrWordTooLong, len(word), MaxWordLen)
	}
	if strings.IndexByte(word, 0) >= 0 {
		return false, fmt.Errorf("word %q contains a zero byte", word)
	}
	if !b.trie.Insert(patricia.Prefix(word), struct{}{}) {
		return false, nil
	}
	b.count++
	return true, nil
}

// Len returns the number of distinct words added.
func (b *Builder) Len() int {
	return b.count
}

// Words returns the distinct words in byte order.
func (b *Builder) Words() []string {
	words := make([]string, 0, b.count)
	b.trie.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		words = append(words, string(p))
		return nil
	})
	sort.Strings(words)
	return words
}

// WriteTo writes every word as a record: length+1, the word, a zero byte.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, word := range b.Words() {
		if err := bw.WriteByte(byte(len(word) + 1)); err != nil {
			return written, err
		}
		n, err := bw.WriteString(word)
		written += int64(n) + 1
		if err != nil {
			return written, err
		}
		if err := bw.WriteByte(0); err != nil {
			return written, err
		}
		written++
	}
	return written, bw.Flush()
}

// ReadWords adds every non-empty line of r to the builder. Lines starting with
// '#' are comments. Words that cannot be stored are logged and skipped.
func (b *Builder) ReadWords(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if _, err := b.Add(word); err != nil {
			if errors.Is(err, ErrWordTooLong) {
				log.Warnf("Skipping line %d: %v", line, err)
				continue
			}
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}

// BuildFile converts a newline separated text word list into a binary word list.
// It returns the number of records written.
func BuildFile(src, dst string) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open word source %s: %w", src, err)
	}
	defer in.Close()

	builder := NewBuilder()
	if err := builder.ReadWords(in); err != nil {
		return 0, fmt.Errorf("failed to read words from %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create word list %s: %w", dst, err)
	}
	if _, err := builder.WriteTo(out); err != nil {
		out.Close()
		return 0, fmt.Errorf("failed to write word list %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	log.Debugf("Built %s: %d words from %s", dst, builder.Len(), src)
	return builder.Len(), nil
}
