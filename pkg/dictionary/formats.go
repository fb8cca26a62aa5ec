package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the word list file formats the tools understand
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatRecords            // Length-prefixed binary records
	FormatText               // One word per line
)

// FormatInfo contains metadata about a word list file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatRecords: {
		Format:      FormatRecords,
		Description: "Binary Word Records",
		Extensions:  []string{".bin"},
		MinSize:     0, // An empty list is valid
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Word List",
		Extensions:  []string{".txt"},
		MinSize:     1,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	if expectedFormat == FormatRecords {
		return validateRecords(filename)
	}
	return nil
}

// validateRecords walks the whole file and fails on the first malformed record
func validateRecords(filename string) error {
	store, err := Open(filename)
	if err != nil {
		return err
	}
	defer store.Close()

	count := 0
	for _, ok := store.Next(); ok; _, ok = store.Next() {
		count++
	}
	if err := store.Err(); err != nil {
		return fmt.Errorf("invalid word list %s after %d records: %w", filename, count, err)
	}

	log.Debugf("Word list %s validated: %d records", filename, count)
	return nil
}

// DetectFileFormat attempts to detect the format of a file
func DetectFileFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bin":
		if err := ValidateFileFormat(filename, FormatRecords); err != nil {
			return FormatUnknown, err
		}
		return FormatRecords, nil
	case ".txt":
		if err := ValidateFileFormat(filename, FormatText); err != nil {
			return FormatUnknown, err
		}
		return FormatText, nil
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}
