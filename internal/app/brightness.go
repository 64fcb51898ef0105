package app

const (
	BrightnessMin     = 1
	BrightnessMax     = 4
	BrightnessDefault = BrightnessMax
)

type BrightnessApp struct {
	Base
	level   int
	changed bool
}

// NewBrightness clamps level into BrightnessMin..Max, zero means default.
func NewBrightness(level int) *BrightnessApp {
	if level == 0 {
		level = BrightnessDefault
	}
	return &BrightnessApp{level: clampLevel(level), changed: true}
}

func (a *BrightnessApp) Name() string { return "brightness" }
func (a *BrightnessApp) Level() int   { return a.level }

// Output is display brightness for current level.
// 0, 3, 8 and 15 give somewhat uniform perceived steps.
func (a *BrightnessApp) Output() uint8 { return uint8(a.level*a.level - 1) }

func (a *BrightnessApp) Init(d Display) {
	d.SetBrightness(a.Output())
	a.changed = false
}

func (a *BrightnessApp) HandleKeyLeft()  { a.set(a.level - 1) }
func (a *BrightnessApp) HandleKeyRight() { a.set(a.level + 1) }

func (a *BrightnessApp) Update(d Display) {
	if a.changed {
		d.SetBrightness(a.Output())
		a.changed = false
	}
	d.SetChar(0, 'B', false, true)
	d.SetChar(1, 'R', false, true)
	d.SetChar(2, ' ', false, false)
	d.SetChar(3, rune('0'+a.level), false, false)
	d.SetColon(true)
}

func (a *BrightnessApp) set(level int) {
	a.level = clampLevel(level)
	a.changed = true
}

func clampLevel(l int) int {
	if l < BrightnessMin {
		return BrightnessMin
	}
	if l > BrightnessMax {
		return BrightnessMax
	}
	return l
}
