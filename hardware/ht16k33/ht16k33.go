// Package ht16k33 drives Holtek HT16K33 LED controller with key scan,
// wired as four digit seven-segment display with colon.
//
// Display memory is double buffered: app code writes pending columns,
// FlushOutput sends them in single bus transaction only when pending
// differs from last committed frame. Failed transaction leaves committed
// memory untouched so next flush retries full frame.
package ht16k33

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/atomic_clock"
	"github.com/wificlock/clockd/log2"
	"periph.io/x/periph/conn/i2c"
)

const DefaultAddress uint16 = 0x70

const (
	cmdOscillatorOff byte = 0x20
	cmdOscillatorOn  byte = 0x21
	cmdDisplayOff    byte = 0x80
	cmdDisplayOn     byte = 0x81 // no blink
	cmdBrightness    byte = 0xe0
	cmdKeyRead       byte = 0x40
	addrLedMemory    byte = 0x00
)

const (
	LedColumns    = 8
	KeyColumns    = 3
	MaxBrightness = 15

	// datasheet, page 8: data transfers on the I2C-bus should be avoided
	// for 1 ms following a power-on to allow completion of the reset action
	PowerOnDelay = 1 * time.Millisecond
	// at least two key scan cycles (2 * 9.504ms) between reads
	KeyScanDelay = 20 * time.Millisecond

	ledFrameLength = 1 + LedColumns*2
	keyFrameLength = KeyColumns * 2
)

type Opts struct {
	Addr       uint16
	Brightness uint8

	sleep func(time.Duration) // tests only
}

var DefaultOpts = Opts{
	Addr:       DefaultAddress,
	Brightness: MaxBrightness,
}

type Dev struct {
	c     i2c.Dev
	log   *log2.Log
	sleep func(time.Duration)

	pending   [LedColumns]uint16
	committed [LedColumns]uint16
	keys      [KeyColumns]uint16

	stat struct {
		flush     uint32
		flushSkip uint32
		rescan    uint32
		busError  uint32
		lastFlush atomic_clock.Clock
	}
}

// Stat is point in time copy of driver counters, safe to read from any goroutine.
type Stat struct {
	Flush     uint32
	FlushSkip uint32
	Rescan    uint32
	BusError  uint32
	LastFlush time.Time
}

// New runs power-on sequence and returns ready device with display enabled.
func New(bus i2c.Bus, opts *Opts, log *log2.Log) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddress
	}
	d := &Dev{
		c:     i2c.Dev{Bus: bus, Addr: addr},
		log:   log,
		sleep: opts.sleep,
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if err := d.init(opts.Brightness); err != nil {
		return nil, errors.Annotatef(err, "%s init", d.String())
	}
	d.log.Debugf("%s init ok", d.String())
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("HT16K33{%s addr=%#02x}", d.c.Bus.String(), d.c.Addr)
}

func (d *Dev) init(brightness uint8) error {
	d.sleep(PowerOnDelay)

	if err := d.command(cmdOscillatorOn); err != nil {
		return errors.Annotate(err, "oscillator on")
	}
	if err := d.SetBrightness(brightness); err != nil {
		return err
	}
	d.ClearAll()
	if err := d.FlushOutput(true); err != nil {
		return err
	}
	if err := d.RescanKeys(); err != nil {
		return err
	}
	return errors.Annotate(d.command(cmdDisplayOn), "display on")
}

// Halt blanks display and stops oscillator (standby mode).
func (d *Dev) Halt() error {
	if err := d.command(cmdDisplayOff); err != nil {
		return errors.Annotate(err, "display off")
	}
	return errors.Annotate(d.command(cmdOscillatorOff), "oscillator off")
}

// SetBrightness takes effect immediately, independent of flush.
// Values above MaxBrightness are clamped.
func (d *Dev) SetBrightness(level uint8) error {
	if level > MaxBrightness {
		level = MaxBrightness
	}
	return errors.Annotatef(d.command(cmdBrightness|level), "brightness=%d", level)
}

// SetColumn stores row bits into pending memory. No I/O.
func (d *Dev) SetColumn(column int, rowBits uint16) {
	if column < 0 || column >= LedColumns {
		panic(fmt.Sprintf("code error ht16k33 SetColumn column=%d", column))
	}
	d.pending[column] = rowBits
}

// Column returns pending value.
func (d *Dev) Column(column int) uint16 {
	if column < 0 || column >= LedColumns {
		panic(fmt.Sprintf("code error ht16k33 Column column=%d", column))
	}
	return d.pending[column]
}

func (d *Dev) ClearAll() {
	d.pending = [LedColumns]uint16{}
}

// FlushOutput writes pending memory when it differs from committed, or force=true.
// Whole frame goes in one transaction.
func (d *Dev) FlushOutput(force bool) error {
	if !force && d.pending == d.committed {
		atomic.AddUint32(&d.stat.flushSkip, 1)
		return nil
	}

	var buf [ledFrameLength]byte
	buf[0] = addrLedMemory
	for i, v := range d.pending {
		binary.LittleEndian.PutUint16(buf[1+i*2:], v)
	}
	if err := d.c.Tx(buf[:], nil); err != nil {
		atomic.AddUint32(&d.stat.busError, 1)
		return errors.Annotatef(err, "%s led write", d.String())
	}
	d.committed = d.pending
	atomic.AddUint32(&d.stat.flush, 1)
	d.stat.lastFlush.SetNow()
	return nil
}

// RescanKeys blocks for KeyScanDelay then reads key memory.
// On bus error key memory keeps previous snapshot.
func (d *Dev) RescanKeys() error {
	d.sleep(KeyScanDelay)

	var buf [keyFrameLength]byte
	if err := d.c.Tx([]byte{cmdKeyRead}, buf[:]); err != nil {
		atomic.AddUint32(&d.stat.busError, 1)
		return errors.Annotatef(err, "%s key read", d.String())
	}
	for i := range d.keys {
		d.keys[i] = binary.LittleEndian.Uint16(buf[i*2:])
	}
	atomic.AddUint32(&d.stat.rescan, 1)
	return nil
}

// KeyColumn returns key bits as of last RescanKeys.
func (d *Dev) KeyColumn(column int) uint16 {
	if column < 0 || column >= KeyColumns {
		panic(fmt.Sprintf("code error ht16k33 KeyColumn column=%d", column))
	}
	return d.keys[column]
}

func (d *Dev) Stat() Stat {
	s := Stat{
		Flush:     atomic.LoadUint32(&d.stat.flush),
		FlushSkip: atomic.LoadUint32(&d.stat.flushSkip),
		Rescan:    atomic.LoadUint32(&d.stat.rescan),
		BusError:  atomic.LoadUint32(&d.stat.busError),
	}
	if !d.stat.lastFlush.IsZero() {
		s.LastFlush = time.Now().Add(-atomic_clock.Since(&d.stat.lastFlush))
	}
	return s
}

func (d *Dev) command(c byte) error {
	if err := d.c.Tx([]byte{c}, nil); err != nil {
		atomic.AddUint32(&d.stat.busError, 1)
		return err
	}
	return nil
}
