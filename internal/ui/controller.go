// Package ui owns app rotation: registry of apps, current app,
// key edge detection and composition of display memory every tick.
package ui

import (
	"fmt"
	"sync"

	"github.com/juju/errors"
	"github.com/wificlock/clockd/hardware/sevenseg"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/internal/app"
	"github.com/wificlock/clockd/internal/types"
	"github.com/wificlock/clockd/log2"
)

// Key bits in scan column 0.
const (
	KeyBitRight uint16 = 1 << 0
	KeyBitNext  uint16 = 1 << 1
	KeyBitLeft  uint16 = 1 << 2
)

const (
	digitCount  = 4
	colonColumn = 4
	dotShift    = 7
)

// Driver is display hardware as seen by controller, *ht16k33.Dev satisfies it.
type Driver interface {
	SetColumn(column int, rowBits uint16)
	ClearAll()
	FlushOutput(force bool) error
	RescanKeys() error
	KeyColumn(column int) uint16
	SetBrightness(level uint8) error
}

type Controller struct {
	// called from Tick goroutine after current app changed, nil means none
	OnAppChange func(app.App)

	dev     Driver
	log     *log2.Log
	apps    []app.App
	current int // -1 = none

	timeValid bool
	connected *bool // nil until first link notification

	qlk   sync.Mutex
	queue []types.Event

	errs []error // collected during one Tick
}

var _ app.Display = &Controller{}

func NewController(dev Driver, log *log2.Log) *Controller {
	return &Controller{
		dev:     dev,
		log:     log,
		current: -1,
	}
}

// Current returns nil when registry is empty.
func (self *Controller) Current() app.App {
	if self.current < 0 {
		return nil
	}
	return self.apps[self.current]
}

func (self *Controller) Apps() []app.App {
	result := make([]app.App, len(self.apps))
	copy(result, self.apps)
	return result
}

// AddApp appends to rotation and runs Init. First app becomes current and is entered.
func (self *Controller) AddApp(a app.App) {
	if a == nil {
		panic("code error ui.AddApp app=nil")
	}
	self.apps = append(self.apps, a)
	self.errs = self.errs[:0]
	a.Init(self)
	if err := helpers.FoldErrors(self.errs); err != nil {
		self.log.Errorf("ui app=%s init: %v", a.Name(), err)
	}
	if self.timeValid {
		if n, ok := a.(app.TimeSetNotifier); ok {
			n.NotifyTimeSet()
		}
	}
	if self.connected != nil {
		if n, ok := a.(app.ConnectivityNotifier); ok {
			n.SetConnected(*self.connected)
		}
	}
	self.log.Debugf("ui add app=%s total=%d", a.Name(), len(self.apps))

	if self.current < 0 {
		self.current = 0
		a.Enter()
		self.appChanged()
	}
}

// RemoveApp deletes app from rotation. Removing current app switches to next one first.
func (self *Controller) RemoveApp(a app.App) error {
	found := -1
	for i, x := range self.apps {
		if x == a {
			found = i
			break
		}
	}
	if found < 0 {
		name := "<nil>"
		if a != nil {
			name = a.Name()
		}
		return errors.NotFoundf("ui app=%s", name)
	}

	changed := false
	if self.current == found {
		self.switchNext()
		if self.current == found {
			self.current = -1
		}
		changed = true
	}
	self.apps = append(self.apps[:found], self.apps[found+1:]...)
	if self.current > found {
		self.current--
	}
	self.log.Debugf("ui remove app=%s total=%d", a.Name(), len(self.apps))
	if changed {
		self.appChanged()
	}
	return nil
}

// Notify is safe to call from any goroutine. Events are processed at start of next Tick.
func (self *Controller) Notify(e types.Event) {
	helpers.WithLock(&self.qlk, func() {
		self.queue = append(self.queue, e)
	})
}

// Tick runs one cycle: notifications, key scan, dispatch, render, flush.
// Bus errors are returned folded, app state is not affected by them.
func (self *Controller) Tick() error {
	self.errs = self.errs[:0]
	self.drain()

	keysOld := self.dev.KeyColumn(0)
	if err := self.dev.RescanKeys(); err != nil {
		self.errs = append(self.errs, err)
	}
	keysNew := self.dev.KeyColumn(0)
	pressed := keysNew &^ keysOld

	if self.current >= 0 {
		if pressed&KeyBitNext != 0 {
			self.press(types.KeyNext)
		}
		if pressed&KeyBitLeft != 0 {
			self.press(types.KeyLeft)
		}
		if pressed&KeyBitRight != 0 {
			self.press(types.KeyRight)
		}
	}

	self.dev.ClearAll()
	if cur := self.Current(); cur != nil {
		cur.Update(self)
	}
	if err := self.dev.FlushOutput(false); err != nil {
		self.errs = append(self.errs, err)
	}
	return helpers.FoldErrors(self.errs)
}

// app.Display implementation, valid only inside AddApp and Tick.

func (self *Controller) SetBrightness(level uint8) {
	if err := self.dev.SetBrightness(level); err != nil {
		self.errs = append(self.errs, err)
	}
}

func (self *Controller) SetChar(digit int, ch rune, dot bool, caseFallback bool) {
	if digit < 0 || digit >= digitCount {
		panic(fmt.Sprintf("code error ui SetChar digit=%d", digit))
	}
	bits := sevenseg.Encode(ch, caseFallback)
	if dot {
		bits |= 1 << dotShift
	}
	self.dev.SetColumn(digit, bits)
}

func (self *Controller) SetColon(on bool) {
	var bits uint16
	if on {
		bits = 1
	}
	self.dev.SetColumn(colonColumn, bits)
}

func (self *Controller) drain() {
	self.qlk.Lock()
	q := self.queue
	self.queue = nil
	self.qlk.Unlock()

	for i := range q {
		e := &q[i]
		self.log.Debugf("ui event %s", e.String())
		switch e.Kind {
		case types.EventTimeSet:
			self.timeValid = true
			for _, a := range self.apps {
				if n, ok := a.(app.TimeSetNotifier); ok {
					n.NotifyTimeSet()
				}
			}
		case types.EventConnected, types.EventDisconnected:
			c := e.Kind == types.EventConnected
			self.connected = &c
			for _, a := range self.apps {
				if n, ok := a.(app.ConnectivityNotifier); ok {
					n.SetConnected(c)
				}
			}
		case types.EventInput:
			if !e.Input.Up && self.current >= 0 {
				self.press(e.Input.Key)
			}
		default:
			self.log.Errorf("ui unknown event %s", e.String())
		}
	}
}

func (self *Controller) press(key types.InputKey) {
	switch key {
	case types.KeyNext:
		prev := self.current
		self.switchNext()
		if self.current != prev {
			self.appChanged()
		}
	case types.KeyLeft:
		self.apps[self.current].HandleKeyLeft()
	case types.KeyRight:
		self.apps[self.current].HandleKeyRight()
	default:
		self.log.Debugf("ui ignore key=%s", key.String())
	}
}

// switchNext rotates circularly, Enter fires only when current actually changed.
func (self *Controller) switchNext() {
	if self.current < 0 {
		return
	}
	prev := self.current
	self.current = (self.current + 1) % len(self.apps)
	if self.current != prev {
		self.apps[self.current].Enter()
	}
}

func (self *Controller) appChanged() {
	cur := self.Current()
	if cur != nil {
		self.log.Infof("ui app=%s", cur.Name())
	} else {
		self.log.Infof("ui app=none")
	}
	if self.OnAppChange != nil {
		self.OnAppChange(cur)
	}
}
