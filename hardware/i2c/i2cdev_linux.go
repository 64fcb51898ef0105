// +build linux

package i2c

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
	"periph.io/x/periph/conn/physic"
)

// linux/i2c-dev.h, linux/i2c.h
const (
	ioctlRdwr = 0x0707
	msgFlagRd = 0x0001
)

// struct i2c_msg
type kmsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

// struct i2c_rdwr_ioctl_data
type krdwr struct {
	msgs uintptr
	nmsg uint32
}

// DevBus talks to /dev/i2c-N with combined I2C_RDWR transfers:
// write and read halves of Tx go under one STOP,
// which HT16K33 key RAM reads require.
type DevBus struct {
	busNo byte
	mu    sync.Mutex
	f     *os.File
}

func NewDevBus(busNo byte) *DevBus { return &DevBus{busNo: busNo} }

func (self *DevBus) String() string { return fmt.Sprintf("i2c-dev/%d", self.busNo) }
func (self *DevBus) path() string   { return fmt.Sprintf("/dev/i2c-%d", self.busNo) }

func (self *DevBus) Init() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.open()
}

func (self *DevBus) open() error {
	if self.f != nil {
		return nil
	}
	f, err := os.OpenFile(self.path(), os.O_RDWR, 0)
	if err != nil {
		return errors.Annotatef(err, "open %s", self.path())
	}
	self.f = f
	return nil
}

// SetSpeed is not supported by i2c-dev, bus clock comes from device tree.
func (self *DevBus) SetSpeed(f physic.Frequency) error {
	return errors.NotSupportedf("%s SetSpeed(%s)", self.String(), f.String())
}

func (self *DevBus) Tx(addr uint16, w, r []byte) error {
	var msgs [2]kmsg
	n := 0
	if len(w) != 0 {
		msgs[n] = kmsg{addr: addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))}
		n++
	}
	if len(r) != 0 {
		msgs[n] = kmsg{addr: addr, flags: msgFlagRd, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))}
		n++
	}
	if n == 0 {
		return errors.NotValidf("%s Tx addr=%02x empty", self.String(), addr)
	}
	data := krdwr{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsg: uint32(n)}

	self.mu.Lock()
	defer self.mu.Unlock()
	if err := self.open(); err != nil {
		return err
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, self.f.Fd(), ioctlRdwr, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	runtime.KeepAlive(&msgs)
	if errno != 0 {
		return errors.Annotatef(errno, "%s Tx addr=%02x", self.String(), addr)
	}
	return nil
}

func (self *DevBus) Close() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.f == nil {
		return nil
	}
	err := self.f.Close()
	self.f = nil
	return err
}
