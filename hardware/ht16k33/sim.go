package ht16k33

import (
	"fmt"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/wificlock/clockd/hardware/sevenseg"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
)

// Sim is in-memory HT16K33 behind i2c.Bus, used with driver=sim
// and in tests. Only commands issued by Dev are decoded.
type Sim struct {
	mu         sync.Mutex
	addr       uint16
	oscillator bool
	on         bool
	blink      byte
	brightness byte
	led        [LedColumns * 2]byte
	key        [KeyColumns * 2]byte
	txCount    uint32
	failNext   int
}

var _ i2c.BusCloser = new(Sim)

func NewSim(addr uint16) *Sim {
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Sim{addr: addr}
}

func (s *Sim) String() string                   { return fmt.Sprintf("sim/%#02x", s.addr) }
func (s *Sim) SetSpeed(f physic.Frequency) error { return nil }
func (s *Sim) Close() error                      { return nil }

func (s *Sim) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCount++
	if addr != s.addr {
		return errors.Errorf("sim addr=%#02x no ack", addr)
	}
	if s.failNext > 0 {
		s.failNext--
		return errors.Errorf("sim injected failure")
	}
	if len(w) == 0 {
		return errors.NotValidf("sim empty write")
	}

	c := w[0]
	switch {
	case c&0xf0 == addrLedMemory:
		offset := int(c & 0x0f)
		for i, b := range w[1:] {
			s.led[(offset+i)%len(s.led)] = b
		}
	case c == cmdOscillatorOff || c == cmdOscillatorOn:
		s.oscillator = c&1 == 1
	case c&0xf0 == cmdDisplayOff:
		s.on = c&1 == 1
		s.blink = (c >> 1) & 3
	case c&0xf0 == cmdBrightness:
		s.brightness = c & 0x0f
	case c == cmdKeyRead:
		copy(r, s.key[:])
		return nil
	default:
		return errors.NotSupportedf("sim command=%#02x", c)
	}
	if len(r) != 0 {
		return errors.NotSupportedf("sim read after command=%#02x", c)
	}
	return nil
}

// Fail makes next n transactions return error.
func (s *Sim) Fail(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

// SetKeys replaces key memory column, as if keys were held during scan.
func (s *Sim) SetKeys(column int, bits uint16) {
	s.mu.Lock()
	s.key[column*2] = byte(bits)
	s.key[column*2+1] = byte(bits >> 8)
	s.mu.Unlock()
}

func (s *Sim) Column(column int) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint16(s.led[column*2]) | uint16(s.led[column*2+1])<<8
}

func (s *Sim) Brightness() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness
}

// On reports whether oscillator runs and display output is enabled.
func (s *Sim) On() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oscillator && s.on
}

func (s *Sim) TxCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

// Text decodes digit columns back to characters, e.g. "12:34" or "01.10.".
// Colon position is always present as ':' or ' '.
func (s *Sim) Text() string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		bits := s.Column(i)
		b.WriteRune(sevenseg.Decode(bits))
		if bits&sevenseg.SegDot != 0 {
			b.WriteByte('.')
		}
		if i == 1 {
			if s.Column(4)&1 != 0 {
				b.WriteByte(':')
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
