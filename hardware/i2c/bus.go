// Package i2c opens register buses for display drivers.
// Every transport satisfies periph i2c.BusCloser so drivers and tests
// (i2ctest.Playback) share one interface.
package i2c

import (
	"strconv"
	"sync"

	"github.com/juju/errors"
	periph_i2c "periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

const (
	DriverPeriph = "periph"
	DriverDev    = "i2cdev"
)

const DefaultSpeed = 100 * physic.KiloHertz

// compile-time interface compliance test
var _ periph_i2c.BusCloser = new(DevBus)

var hostInit struct {
	sync.Once
	err error
}

// Open connects bus by driver name. For periph, name is i2creg bus name
// or number ("" picks first). For i2cdev, name is /dev/i2c-N number.
// speed=0 keeps bus default.
func Open(driver, name string, speed physic.Frequency) (periph_i2c.BusCloser, error) {
	switch driver {
	case DriverPeriph, "":
		hostInit.Do(func() {
			_, hostInit.err = host.Init()
		})
		if hostInit.err != nil {
			return nil, errors.Annotate(hostInit.err, "periph/init")
		}
		bus, err := i2creg.Open(name)
		if err != nil {
			return nil, errors.Annotatef(err, "i2creg.Open name=%s", name)
		}
		if speed != 0 {
			if err = bus.SetSpeed(speed); err != nil {
				_ = bus.Close()
				return nil, errors.Annotatef(err, "i2c bus=%s SetSpeed", bus.String())
			}
		}
		return bus, nil

	case DriverDev:
		n, err := strconv.ParseUint(name, 10, 8)
		if err != nil {
			return nil, errors.Annotatef(err, "i2cdev bus number=%s", name)
		}
		bus := NewDevBus(byte(n))
		if err = bus.Init(); err != nil {
			return nil, err
		}
		return bus, nil

	default:
		return nil, errors.NotValidf("i2c driver=%s valid: %s, %s", driver, DriverPeriph, DriverDev)
	}
}
