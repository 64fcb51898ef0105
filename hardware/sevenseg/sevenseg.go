// Package sevenseg maps printable characters to seven-segment masks.
//
// Bit layout follows the usual segment naming:
//
//	 -a-
//	f   b
//	 -g-
//	e   c
//	 -d-   .h
//
// a=bit0 ... g=bit6, bit7 is the decimal point and is never set by Encode.
package sevenseg

import "unicode"

const (
	SegA uint16 = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
	SegDot
)

// Default is shown for characters without a mapping: centered dash.
const Default = SegG

type mapping struct {
	ch   rune
	bits uint16
}

// Order matters only for readability, lookups are linear.
var table = [...]mapping{
	{' ', 0b00000000},
	{'0', 0b00111111},
	{'1', 0b00000110},
	{'2', 0b01011011},
	{'3', 0b01001111},
	{'4', 0b01100110},
	{'5', 0b01101101},
	{'6', 0b01111101},
	{'7', 0b00000111},
	{'8', 0b01111111},
	{'9', 0b01101111},
	{'A', 0b01110111},
	{'b', 0b01111100},
	{'c', 0b01011000},
	{'C', 0b00111001},
	{'d', 0b01011110},
	{'E', 0b01111001},
	{'F', 0b01110001},
	{'G', 0b00111101},
	{'h', 0b01110100},
	{'H', 0b01110110},
	{'i', 0b00000100},
	{'j', 0b00001100},
	{'J', 0b00011110},
	{'L', 0b00111000},
	{'n', 0b01010100},
	{'o', 0b01011100},
	{'P', 0b01110011},
	{'q', 0b01100111},
	{'r', 0b01010000},
	{'S', 0b01101101},
	{'t', 0b01111000},
	{'u', 0b00011100},
	{'y', 0b01101110},
	{'Y', 0b01100110},
	{'-', 0b01000000},
	{'_', 0b00001000},
	{'@', 0b01111011},
}

func lookup(ch rune) (uint16, bool) {
	for _, m := range table {
		if m.ch == ch {
			return m.bits, true
		}
	}
	return 0, false
}

// Encode returns segment mask for ch. With caseFallback, a failed
// direct lookup is retried once with the opposite letter case.
func Encode(ch rune, caseFallback bool) uint16 {
	if bits, ok := lookup(ch); ok {
		return bits
	}
	if caseFallback {
		alt := unicode.ToLower(ch)
		if alt == ch {
			alt = unicode.ToUpper(ch)
		}
		if alt != ch {
			if bits, ok := lookup(alt); ok {
				return bits
			}
		}
	}
	return Default
}

// Supported reports whether ch has a direct mapping.
func Supported(ch rune) bool {
	_, ok := lookup(ch)
	return ok
}

// Decode is reverse lookup, used by simulators and debug output.
// Dot bit is ignored. Returns '?' for masks without exact match.
func Decode(bits uint16) rune {
	bits &^= SegDot
	for _, m := range table {
		if m.bits == bits {
			return m.ch
		}
	}
	return '?'
}
