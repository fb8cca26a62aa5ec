package fuzzy

import "fmt"

// Code is a Soundex fingerprint: the first letter of a word followed by three
// phonetic digits. Codes are comparable with ==.
type Code struct {
	First  byte
	Digits [3]uint8
}

// String renders the code in the usual letter+digits form, e.g. "R163".
func (c Code) String() string {
	return fmt.Sprintf("%c%d%d%d", c.First, c.Digits[0], c.Digits[1], c.Digits[2])
}

// Soundex computes the phonetic code of word.
//
// The first byte is kept (upper-cased if it is an ASCII letter). Vowels and 'y'
// emit nothing and reset the previous digit, 'h' and 'w' emit nothing and leave
// it alone. Any byte outside the letter classes behaves like a vowel. A digit is
// only written when it differs from the previous one.
func Soundex(word string) Code {
	var code Code
	if len(word) == 0 {
		return code
	}

	code.First = upper(word[0])

	n := 0
	var prev uint8
	for i := 1; i < len(word) && n < len(code.Digits); i++ {
		c := lower(word[i])
		if c == 'h' || c == 'w' {
			continue
		}

		digit := soundexClass(c)
		if digit != 0 && digit != prev {
			code.Digits[n] = digit
			n++
		}
		prev = digit
	}

	return code
}

func soundexClass(c byte) uint8 {
	switch c {
	case 'b', 'f', 'p', 'v':
		return 1
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return 2
	case 'd', 't':
		return 3
	case 'l':
		return 4
	case 'm', 'n':
		return 5
	case 'r':
		return 6
	default:
		return 0
	}
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func lower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
