package state

import (
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/wificlock/clockd/hardware/ht16k33"
	hw_i2c "github.com/wificlock/clockd/hardware/i2c"
	"github.com/wificlock/clockd/hardware/input"
	"github.com/wificlock/clockd/hardware/statusled"
	"github.com/wificlock/clockd/internal/types"
	"github.com/wificlock/clockd/log2"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
)

const DriverSim = "sim"

type hardware struct {
	I2C struct {
		once
		Bus i2c.BusCloser
		Sim *ht16k33.Sim // only with driver=sim
	}
	Display struct {
		once
		d *ht16k33.Dev
	}
	Input     *input.Dispatch
	StatusLED struct {
		once
		led *statusled.LED
	}
}

func (g *Global) I2CBus() (i2c.BusCloser, error) {
	x := &g.Hardware.I2C
	_ = x.do(func() error {
		if x.Bus != nil { // state-new testing mode
			return nil
		}
		cfg := &g.Config.Hardware.I2C
		switch cfg.Driver {
		case DriverSim:
			x.Sim = ht16k33.NewSim(g.displayAddr())
			x.Bus = x.Sim
			return nil

		case hw_i2c.DriverDev:
			name := cfg.Bus
			if name == "" {
				name = "1"
			}
			x.Bus, x.err = hw_i2c.Open(cfg.Driver, name, 0)

		default:
			speed := hw_i2c.DefaultSpeed
			if cfg.SpeedKhz > 0 {
				speed = physic.Frequency(cfg.SpeedKhz) * physic.KiloHertz
			}
			x.Bus, x.err = hw_i2c.Open(cfg.Driver, cfg.Bus, speed)
		}
		return errors.Annotatef(x.err, "config: hardware.i2c driver=%s bus=%s", cfg.Driver, cfg.Bus)
	})
	return x.Bus, x.err
}

// Sim returns simulated display module, nil unless hardware.i2c.driver=sim.
func (g *Global) Sim() *ht16k33.Sim {
	if _, err := g.I2CBus(); err != nil {
		return nil
	}
	return g.Hardware.I2C.Sim
}

func (g *Global) Display() (*ht16k33.Dev, error) {
	x := &g.Hardware.Display
	_ = x.do(func() error {
		bus, err := g.I2CBus()
		if err != nil {
			return err
		}
		opts := ht16k33.DefaultOpts
		opts.Addr = g.displayAddr()
		if b := g.Config.Hardware.Display.Brightness; b != nil {
			opts.Brightness = uint8(*b)
		}
		x.d, x.err = ht16k33.New(bus, &opts, g.Log.Clone(log2.LInfo))
		return x.err
	})
	return x.d, x.err
}

// StatusLED returns nil,nil when disabled in config.
func (g *Global) StatusLED() (*statusled.LED, error) {
	x := &g.Hardware.StatusLED
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.StatusLed
		if !cfg.Enable {
			g.Log.Infof("status led is disabled")
			return nil
		}
		chip := statusled.ChipPath(cfg.PinChip)
		x.led, x.err = statusled.Open(chip, cfg.Pin)
		return errors.Annotatef(x.err, "config: hardware.status_led pin_chip=%s pin=%s", chip, cfg.Pin)
	})
	return x.led, x.err
}

// Keymap from config, all zero means input.DefaultKeymap.
func (g *Global) Keymap() input.Keymap {
	cfg := &g.Config.Hardware.Keymap
	if cfg.Next == 0 && cfg.Left == 0 && cfg.Right == 0 {
		return input.DefaultKeymap
	}
	km := make(input.Keymap, 3)
	if cfg.Next > 0 {
		km[uint16(cfg.Next)] = types.KeyNext
	}
	if cfg.Left > 0 {
		km[uint16(cfg.Left)] = types.KeyLeft
	}
	if cfg.Right > 0 {
		km[uint16(cfg.Right)] = types.KeyRight
	}
	return km
}

func (g *Global) displayAddr() uint16 {
	if a := g.Config.Hardware.Display.Address; a > 0 {
		return uint16(a)
	}
	return ht16k33.DefaultAddress
}

func (g *Global) initDisplay() error {
	_, err := g.Display()
	return err
}

func (g *Global) initStatusLED() error {
	_, err := g.StatusLED()
	return err
}

func (g *Global) initInput() error {
	g.Hardware.Input = input.NewDispatch(g.Log, g.Alive.StopChan())

	// support more input sources here
	sources := make([]input.Source, 0, 1)

	cfg := &g.Config.Hardware.Input.DevInputEvent
	if !cfg.Enable {
		g.Log.Infof("input=%s disabled", input.DevInputEventTag)
	} else {
		src, err := input.NewDevInputEventSource(cfg.Device, g.Keymap())
		if err != nil {
			return errors.Annotatef(err, "input=%s", input.DevInputEventTag)
		}
		sources = append(sources, src)
	}

	go g.Hardware.Input.Run(sources)
	return nil
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
