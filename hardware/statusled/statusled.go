// Package statusled drives single GPIO line mirroring link state.
package statusled

import (
	"strconv"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/gpio-cdev-go"
)

const consumerLabel = "clockd-status"

const DefaultChip = "/dev/gpiochip0"

// ChipPath accepts device path or bare name like gpiochip1.
func ChipPath(name string) string {
	switch {
	case name == "":
		return DefaultChip
	case !strings.ContainsRune(name, '/'):
		return "/dev/" + name
	}
	return name
}

type LED struct {
	mu    sync.Mutex
	chip  gpio.Chiper
	lines gpio.Lineser
	set   gpio.LineSetFunc
	on    bool
}

func Open(chipName string, pin string) (*LED, error) {
	chip, err := gpio.Open(chipName, consumerLabel)
	if err != nil {
		return nil, errors.Annotatef(err, "statusled chip=%s", chipName)
	}
	led, err := New(chip, pin)
	if err != nil {
		_ = chip.Close()
		return nil, err
	}
	return led, nil
}

func New(chip gpio.Chiper, pin string) (*LED, error) {
	n, err := strconv.ParseUint(pin, 10, 32)
	if err != nil {
		return nil, errors.NotValidf("statusled pin=%s", pin)
	}
	line := uint32(n)
	lines, err := chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, consumerLabel, line)
	if err != nil {
		return nil, errors.Annotatef(err, "statusled pin=%d", line)
	}
	led := &LED{
		chip:  chip,
		lines: lines,
		set:   lines.SetFunc(line),
	}
	if err = led.Set(false); err != nil {
		_ = lines.Close()
		return nil, err
	}
	return led, nil
}

// Set is safe for concurrent use.
func (self *LED) Set(on bool) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	var v byte
	if on {
		v = 1
	}
	self.set(v)
	if err := self.lines.Flush(); err != nil {
		return errors.Annotate(err, "statusled")
	}
	self.on = on
	return nil
}

func (self *LED) On() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.on
}

func (self *LED) Close() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	err := self.lines.Close()
	if cerr := self.chip.Close(); err == nil {
		err = cerr
	}
	return err
}
