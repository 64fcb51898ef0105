// Package app contains behaviors sharing seven-segment display and keys.
// Apps never see segment bits or bus, only Display capability
// which is valid for the duration of one call.
package app

import "time"

type Display interface {
	// level 0..15
	SetBrightness(level uint8)
	// digit 0..3
	SetChar(digit int, ch rune, dot bool, caseFallback bool)
	SetColon(on bool)
}

type App interface {
	Name() string // for logs and telemetry
	Init(Display)
	Enter()
	HandleKeyLeft()
	HandleKeyRight()
	Update(Display)
}

// Optional interfaces, checked by controller when dispatching notifications.
type TimeSetNotifier interface {
	NotifyTimeSet()
}
type ConnectivityNotifier interface {
	SetConnected(bool)
}

// Base provides no-op hooks. Embed and override what you need.
type Base struct{}

func (Base) Init(Display)    {}
func (Base) Enter()          {}
func (Base) HandleKeyLeft()  {}
func (Base) HandleKeyRight() {}

type NowFunc func() time.Time
