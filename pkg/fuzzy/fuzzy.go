// Package fuzzy holds the scoring functions used to rank dictionary words against a query.
//
// Every function here is pure and works on raw bytes. Only ASCII letters are case folded,
// multi-byte sequences are dropped wholesale by Normalize.
package fuzzy

// NoMatch is returned by the scorers when two strings cannot be compared or do not match.
const NoMatch = -1

// Normalize lower-cases ASCII letters and drops every multi-byte sequence.
// A byte with the high bit set is read as a lead byte and the whole span it
// announces is skipped, never partially copied.
func Normalize(word string) string {
	out := make([]byte, 0, len(word))
	for i := 0; i < len(word); {
		b := word[i]
		if b < 0x80 {
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			out = append(out, b)
			i++
			continue
		}
		i += sequenceLen(b)
	}
	return string(out)
}

// sequenceLen classifies a lead byte by its high-order bit pattern.
func sequenceLen(b byte) int {
	switch {
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	case b&0xfc == 0xf8:
		return 5
	case b&0xfe == 0xfc:
		return 6
	default:
		return 1
	}
}
