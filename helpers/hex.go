package helpers

import (
	"encoding/hex"
	"strings"
)

// MustHex accepts spaces between bytes, e.g. "00 3f 00".
func MustHex(s string) []byte {
	b, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return b
}

func ParseHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.Join(strings.Fields(s), ""))
}
