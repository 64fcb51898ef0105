package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct {
	brightness []uint8
	chars      [4]rune
	dots       [4]bool
	fallback   [4]bool
	colon      bool
}

func newFakeDisplay() *fakeDisplay {
	d := &fakeDisplay{}
	d.reset()
	return d
}

func (d *fakeDisplay) reset() {
	d.chars = [4]rune{' ', ' ', ' ', ' '}
	d.dots = [4]bool{}
	d.fallback = [4]bool{}
	d.colon = false
}

func (d *fakeDisplay) SetBrightness(level uint8) { d.brightness = append(d.brightness, level) }
func (d *fakeDisplay) SetColon(on bool)          { d.colon = on }
func (d *fakeDisplay) SetChar(digit int, ch rune, dot bool, caseFallback bool) {
	d.chars[digit] = ch
	d.dots[digit] = dot
	d.fallback[digit] = caseFallback
}

func (d *fakeDisplay) text() string { return string(d.chars[:]) }

type fakeClock struct{ t time.Time }

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) now() time.Time      { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) set(t time.Time)     { c.t = t }

func render(a App, d *fakeDisplay) *fakeDisplay {
	d.reset()
	a.Update(d)
	return d
}

func TestBrightnessClamp(t *testing.T) {
	t.Parallel()
	a := NewBrightness(0)
	d := newFakeDisplay()
	a.Init(d)
	require.Equal(t, []uint8{15}, d.brightness)

	for i := 0; i < 10; i++ {
		a.HandleKeyLeft()
	}
	assert.Equal(t, 1, a.Level())
	render(a, d)
	assert.Equal(t, []uint8{15, 0}, d.brightness)

	// no change, no brightness push
	render(a, d)
	assert.Equal(t, []uint8{15, 0}, d.brightness)

	for i := 0; i < 10; i++ {
		a.HandleKeyRight()
	}
	assert.Equal(t, 4, a.Level())
}

func TestBrightnessOutput(t *testing.T) {
	t.Parallel()
	expect := map[int]uint8{1: 0, 2: 3, 3: 8, 4: 15}
	for level, out := range expect {
		a := NewBrightness(level)
		assert.Equal(t, out, a.Output(), "level=%d", level)
	}
	assert.Equal(t, 1, NewBrightness(-3).Level())
	assert.Equal(t, 4, NewBrightness(9).Level())
}

func TestBrightnessRender(t *testing.T) {
	t.Parallel()
	a := NewBrightness(2)
	d := newFakeDisplay()
	a.Init(d)
	render(a, d)
	assert.Equal(t, "BR 2", d.text())
	assert.True(t, d.colon)
	assert.True(t, d.fallback[0])
	assert.True(t, d.fallback[1])
	assert.Equal(t, []uint8{3}, d.brightness)
}

func TestClockNotSet(t *testing.T) {
	t.Parallel()
	c := newFakeClock(time.Date(2020, 3, 7, 9, 5, 42, 100*int(time.Millisecond), time.Local))
	a := NewClock()
	a.Now = c.now
	d := newFakeDisplay()

	render(a, d)
	assert.Equal(t, ClockNotSet, a.Mode())
	assert.Equal(t, "    ", d.text())
	assert.True(t, d.colon)

	// right is no-op before time is known
	a.HandleKeyRight()
	assert.Equal(t, ClockNotSet, a.Mode())

	a.NotifyTimeSet()
	assert.Equal(t, ClockTime, a.Mode())
	render(a, d)
	assert.Equal(t, " 905", d.text())
}

func TestClockModes(t *testing.T) {
	t.Parallel()
	c := newFakeClock(time.Date(2020, 3, 7, 14, 5, 42, 0, time.Local))
	a := NewClock()
	a.Now = c.now
	a.NotifyTimeSet()
	d := newFakeDisplay()

	render(a, d)
	assert.Equal(t, "1405", d.text())
	assert.Equal(t, [4]bool{}, d.dots)

	a.HandleKeyRight()
	assert.Equal(t, ClockDate, a.Mode())
	render(a, d)
	assert.Equal(t, "0703", d.text())
	assert.Equal(t, [4]bool{false, true, false, true}, d.dots)
	assert.False(t, d.colon)

	// left in date mode leaves colon blink alone
	a.HandleKeyLeft()
	assert.True(t, a.BlinkColon())

	a.HandleKeyRight()
	assert.Equal(t, ClockSeconds, a.Mode())
	render(a, d)
	assert.Equal(t, "  42", d.text())
	assert.True(t, d.colon)
	c.add(600 * time.Millisecond)
	render(a, d)
	assert.False(t, d.colon)

	a.HandleKeyRight()
	assert.Equal(t, ClockTime, a.Mode())
}

func TestClockColonBlink(t *testing.T) {
	t.Parallel()
	c := newFakeClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local))
	a := NewClock()
	a.Now = c.now
	a.NotifyTimeSet()
	d := newFakeDisplay()

	render(a, d)
	assert.True(t, d.colon)
	c.add(499 * time.Millisecond)
	render(a, d)
	assert.True(t, d.colon)
	c.add(1 * time.Millisecond)
	render(a, d)
	assert.False(t, d.colon)

	// blink off: colon steady on
	a.HandleKeyLeft()
	assert.False(t, a.BlinkColon())
	render(a, d)
	assert.True(t, d.colon)
	assert.Equal(t, " 000", d.text())
}

func TestClockConnectedDot(t *testing.T) {
	t.Parallel()
	c := newFakeClock(time.Date(2020, 1, 1, 12, 30, 0, 0, time.Local))
	a := NewClock()
	a.Now = c.now
	d := newFakeDisplay()

	a.SetConnected(true)
	render(a, d)
	assert.True(t, d.dots[3])
	a.NotifyTimeSet()
	render(a, d)
	assert.Equal(t, "1230", d.text())
	assert.True(t, d.dots[3])
	a.SetConnected(false)
	render(a, d)
	assert.False(t, d.dots[3])
}

func TestScrollerAuto(t *testing.T) {
	t.Parallel()
	c := newFakeClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	a := NewScroller("", "AB", 500*time.Millisecond)
	a.Now = c.now
	d := newFakeDisplay()
	a.Enter()
	require.True(t, a.AutoScroll())

	render(a, d)
	assert.Equal(t, "ABAB", d.text())
	assert.Equal(t, [4]bool{true, true, true, true}, d.fallback)

	c.add(499 * time.Millisecond)
	render(a, d)
	assert.Equal(t, 0, a.Cursor())

	c.add(1 * time.Millisecond)
	render(a, d)
	assert.Equal(t, 1, a.Cursor())
	assert.Equal(t, "BABA", d.text())

	// one second at once is two whole periods
	c.add(1 * time.Second)
	render(a, d)
	assert.Equal(t, 1, a.Cursor())

	// remainder carries over
	c.add(1250 * time.Millisecond)
	render(a, d)
	assert.Equal(t, 1, a.Cursor())
	c.add(250 * time.Millisecond)
	render(a, d)
	assert.Equal(t, 0, a.Cursor())
}

func TestScrollerElapsedWindow(t *testing.T) {
	t.Parallel()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	const text = "hello"
	for _, ms := range []int{0, 300, 500, 999, 1000, 1700, 4200} {
		c := newFakeClock(start)
		a := NewScroller("banner", text, 500*time.Millisecond)
		a.Now = c.now
		a.Enter()
		c.set(start.Add(time.Duration(ms) * time.Millisecond))
		render(a, newFakeDisplay())
		assert.Equal(t, (ms/500)%len(text), a.Cursor(), "elapsed=%dms", ms)
	}
}

func TestScrollerManual(t *testing.T) {
	t.Parallel()
	c := newFakeClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	a := NewScroller("banner", "HELLo", 100*time.Millisecond)
	a.Now = c.now
	d := newFakeDisplay()
	a.Enter()

	a.HandleKeyLeft()
	assert.False(t, a.AutoScroll())
	assert.Equal(t, 4, a.Cursor())
	render(a, d)
	assert.Equal(t, "oHEL", d.text())

	c.add(time.Hour)
	render(a, d)
	assert.Equal(t, 4, a.Cursor())

	a.HandleKeyRight()
	a.HandleKeyRight()
	assert.Equal(t, 1, a.Cursor())

	// re-enter restores auto-scroll
	a.Enter()
	assert.True(t, a.AutoScroll())
	assert.Equal(t, 0, a.Cursor())
	assert.Equal(t, "banner", a.Name())
}

func TestScrollerNoDelay(t *testing.T) {
	t.Parallel()
	c := newFakeClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	a := NewScroller("", "abcdef", 0)
	a.Now = c.now
	a.Enter()
	assert.False(t, a.AutoScroll())
	c.add(time.Hour)
	d := render(a, newFakeDisplay())
	assert.Equal(t, "abcd", d.text())
	assert.Equal(t, "scroller", a.Name())
}

func TestScrollerEmpty(t *testing.T) {
	t.Parallel()
	a := NewScroller("", "", time.Second)
	a.Enter()
	a.HandleKeyLeft()
	a.HandleKeyRight()
	d := render(a, newFakeDisplay())
	assert.Equal(t, "    ", d.text())
	assert.Equal(t, 0, a.Cursor())
}
