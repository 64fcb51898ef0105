package sevenseg

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestEncodeSupported(t *testing.T) {
	t.Parallel()

	for _, m := range table {
		assert.Equal(t, m.bits, Encode(m.ch, false), "ch=%q", m.ch)
		assert.Equal(t, Encode(m.ch, false), Encode(m.ch, false))
		assert.Zero(t, Encode(m.ch, false)&SegDot, "ch=%q must not use dot bit", m.ch)
	}
}

func TestEncodeCaseFallback(t *testing.T) {
	t.Parallel()

	for _, m := range table {
		if !unicode.IsLetter(m.ch) {
			continue
		}
		lower, upper := unicode.ToLower(m.ch), unicode.ToUpper(m.ch)
		if Supported(lower) && Supported(upper) {
			// both cases mapped directly, fallback never kicks in
			assert.NotEqual(t, Encode(lower, true), Default)
			continue
		}
		assert.Equal(t, Encode(lower, true), Encode(upper, true), "letter=%q", m.ch)
	}

	assert.Equal(t, Encode('A', false), Encode('a', true))
	assert.Equal(t, Encode('b', false), Encode('B', true))
	assert.Equal(t, Default, Encode('a', false))
	assert.Equal(t, Default, Encode('B', false))
}

func TestEncodeUnsupported(t *testing.T) {
	t.Parallel()

	for _, ch := range []rune{'k', 'K', 'm', 'M', 'w', 'x', 'z', '!', '.', '\x00', 'Я'} {
		assert.Equal(t, Default, Encode(ch, false), "ch=%q", ch)
		assert.Equal(t, Default, Encode(ch, true), "ch=%q", ch)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, '8', Decode(Encode('8', false)))
	assert.Equal(t, '8', Decode(Encode('8', false)|SegDot))
	assert.Equal(t, ' ', Decode(0))
	assert.Equal(t, '-', Decode(Default))
	assert.Equal(t, '?', Decode(SegA|SegD))
}
