package app

import (
	"time"
)

// ScrollerApp shows four character window over text, moved by keys or timer.
type ScrollerApp struct {
	Base
	Now NowFunc

	name       string
	text       []rune
	delay      time.Duration
	cursor     int
	lastMove   time.Time
	autoScroll bool
}

// NewScroller with delay=0 never scrolls by itself.
func NewScroller(name, text string, delay time.Duration) *ScrollerApp {
	if name == "" {
		name = "scroller"
	}
	return &ScrollerApp{
		Now:   time.Now,
		name:  name,
		text:  []rune(text),
		delay: delay,
	}
}

func (a *ScrollerApp) Name() string     { return a.name }
func (a *ScrollerApp) Cursor() int      { return a.cursor }
func (a *ScrollerApp) AutoScroll() bool { return a.autoScroll }

func (a *ScrollerApp) Enter() {
	a.cursor = 0
	a.lastMove = a.Now()
	a.autoScroll = a.delay > 0
}

func (a *ScrollerApp) HandleKeyLeft() {
	if len(a.text) == 0 {
		return
	}
	a.autoScroll = false
	a.cursor = (a.cursor + len(a.text) - 1) % len(a.text)
}

func (a *ScrollerApp) HandleKeyRight() {
	if len(a.text) == 0 {
		return
	}
	a.autoScroll = false
	a.cursor = (a.cursor + 1) % len(a.text)
}

func (a *ScrollerApp) Update(d Display) {
	n := len(a.text)
	if n == 0 {
		return
	}
	if a.autoScroll {
		// whole periods only, remainder carries to next render
		if elapsed := a.Now().Sub(a.lastMove); elapsed >= a.delay {
			steps := int(elapsed / a.delay)
			a.cursor = (a.cursor + steps) % n
			a.lastMove = a.lastMove.Add(time.Duration(steps) * a.delay)
		}
	}
	for i := 0; i < 4; i++ {
		d.SetChar(i, a.text[(a.cursor+i)%n], false, true)
	}
}
