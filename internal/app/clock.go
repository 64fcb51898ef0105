package app

import (
	"fmt"
	"time"
)

type ClockMode uint8

const (
	ClockNotSet ClockMode = iota
	ClockTime
	ClockDate
	ClockSeconds
)

func (m ClockMode) String() string {
	switch m {
	case ClockNotSet:
		return "not-set"
	case ClockTime:
		return "time"
	case ClockDate:
		return "date"
	case ClockSeconds:
		return "seconds"
	}
	return fmt.Sprintf("ClockMode(%d)", uint8(m))
}

type ClockApp struct {
	Base
	Now NowFunc

	mode       ClockMode
	connected  bool
	blinkColon bool
}

var _ TimeSetNotifier = &ClockApp{}
var _ ConnectivityNotifier = &ClockApp{}

func NewClock() *ClockApp {
	return &ClockApp{
		Now:        time.Now,
		mode:       ClockNotSet,
		blinkColon: true,
	}
}

func (a *ClockApp) Name() string     { return "clock" }
func (a *ClockApp) Mode() ClockMode  { return a.mode }
func (a *ClockApp) BlinkColon() bool { return a.blinkColon }

func (a *ClockApp) NotifyTimeSet() {
	if a.mode == ClockNotSet {
		a.mode = ClockTime
	}
}

// SetConnected drives trailing dot in time modes.
func (a *ClockApp) SetConnected(c bool) { a.connected = c }

func (a *ClockApp) HandleKeyLeft() {
	switch a.mode {
	case ClockNotSet, ClockTime:
		a.blinkColon = !a.blinkColon
	}
}

func (a *ClockApp) HandleKeyRight() {
	switch a.mode {
	case ClockTime:
		a.mode = ClockDate
	case ClockDate:
		a.mode = ClockSeconds
	case ClockSeconds:
		a.mode = ClockTime
	}
}

func (a *ClockApp) Update(d Display) {
	now := a.Now()
	firstHalf := now.Nanosecond() < int(500*time.Millisecond)

	text := "    "
	var dots [4]bool
	colon := false
	switch a.mode {
	case ClockTime:
		text = fmt.Sprintf("%2d%02d", now.Hour(), now.Minute())
		fallthrough
	case ClockNotSet:
		colon = !a.blinkColon || firstHalf
		dots[3] = a.connected
	case ClockDate:
		text = fmt.Sprintf("%02d%02d", now.Day(), int(now.Month()))
		dots[1] = true
		dots[3] = true
	case ClockSeconds:
		text = fmt.Sprintf("  %02d", now.Second())
		colon = firstHalf
	}

	for i, ch := range []rune(text)[:4] {
		d.SetChar(i, ch, dots[i], false)
	}
	d.SetColon(colon)
}
