// +build !linux

package i2c

import (
	"fmt"

	"github.com/juju/errors"
	"periph.io/x/periph/conn/physic"
)

type DevBus struct{ busNo byte }

func NewDevBus(busNo byte) *DevBus { return &DevBus{busNo: busNo} }

func (b *DevBus) String() string { return fmt.Sprintf("i2c-dev/%d", b.busNo) }
func (b *DevBus) Init() error    { return errors.NotSupportedf("i2c-dev on this OS") }
func (b *DevBus) Close() error   { return nil }

func (b *DevBus) SetSpeed(physic.Frequency) error {
	return errors.NotSupportedf("i2c-dev on this OS")
}

func (b *DevBus) Tx(addr uint16, w, r []byte) error {
	return errors.NotSupportedf("i2c-dev on this OS")
}
