package state

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wificlock/clockd/hardware/input"
	"github.com/wificlock/clockd/internal/types"
	"github.com/wificlock/clockd/log2"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		input     string
		check     func(testing.TB, *Config)
		expectErr string
	}
	cases := []Case{
		{"empty", "", func(t testing.TB, c *Config) {
			assert.Equal(t, "", c.Hardware.I2C.Driver)
			assert.Len(t, c.UI.Apps, 0)
			assert.False(t, c.Tele.Enabled)
		}, ""},

		{"hardware", `
hardware {
	i2c { driver = "i2cdev" bus = "0" speed_khz = 400 }
	display { address = 113 brightness = 7 }
	keymap { next = 2 }
	status_led { enable = true pin = "17" }
}`,
			func(t testing.TB, c *Config) {
				hw := &c.Hardware
				assert.Equal(t, "i2cdev", hw.I2C.Driver)
				assert.Equal(t, "0", hw.I2C.Bus)
				assert.Equal(t, 400, hw.I2C.SpeedKhz)
				assert.Equal(t, 0x71, hw.Display.Address)
				require.NotNil(t, hw.Display.Brightness)
				assert.Equal(t, 7, *hw.Display.Brightness)
				assert.Equal(t, 2, hw.Keymap.Next)
				assert.True(t, hw.StatusLed.Enable)
				assert.Equal(t, "17", hw.StatusLed.Pin)
			},
			"",
		},

		{"ui", `
ui {
	tick_ms = 50
	apps = ["scroller:banner", "clock"]
	brightness { level = 2 }
	scroller "banner" { text = "hello" delay_ms = 300 }
	scroller "bye" { text = "bye" }
}
time { assume_valid = true poll_sec = 9 }
tele { enable = true broker = "tcp://127.0.0.1:1883" client_id = "c1" keepalive_sec = 30 }`,
			func(t testing.TB, c *Config) {
				assert.Equal(t, 50, c.UI.TickMs)
				assert.Equal(t, []string{"scroller:banner", "clock"}, c.UI.Apps)
				assert.Equal(t, 2, c.UI.Brightness.Level)
				require.Len(t, c.UI.Scrollers, 2)
				assert.Equal(t, "banner", c.UI.Scrollers[0].Name)
				assert.Equal(t, "hello", c.UI.Scrollers[0].Text)
				assert.Equal(t, 300, c.UI.Scrollers[0].DelayMs)
				assert.Equal(t, "bye", c.UI.Scrollers[1].Name)
				assert.True(t, c.Time.AssumeValid)
				assert.Equal(t, 9, c.Time.PollSec)
				assert.True(t, c.Tele.Enabled)
				assert.Equal(t, "c1", c.Tele.ClientId)
				assert.Equal(t, 30, c.Tele.KeepaliveSec)
			},
			"",
		},

		{"invalid-brightness", `hardware { display { brightness = 16 } }`, nil,
			"hardware.display.brightness=16"},
		{"invalid-led", `hardware { status_led { enable = true } }`, nil,
			"hardware.status_led.pin empty"},
		{"syntax", `ui {`, nil, "config unmarshal source=test-inline"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			log := log2.NewTest(t, log2.LDebug)
			fs := NewMockFullReader(map[string]string{"test-inline": c.input})
			config, err := ReadConfig(log, fs, "test-inline")
			if c.expectErr == "" {
				require.NoError(t, err)
				c.check(t, config)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.expectErr)
			}
		})
	}
}

func TestReadConfigInclude(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{
		"main":  `include "local" {} include "secret" { optional = true } ui { tick_ms = 10 }`,
		"local": `ui { tick_ms = 20 } hardware { i2c { driver = "sim" } }`,
	})
	c, err := ReadConfig(log, fs, "main")
	require.NoError(t, err)
	assert.Equal(t, 20, c.UI.TickMs)
	assert.Equal(t, DriverSim, c.Hardware.I2C.Driver)

	fs.Map["main"] = `include "missing" {}`
	_, err = ReadConfig(log, fs, "main")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err), errors.ErrorStack(err))

	fs.Map["main"] = `include "loop" {}`
	fs.Map["loop"] = `include "main" {}`
	_, err = ReadConfig(log, fs, "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include loop")
}

func TestKeymap(t *testing.T) {
	t.Parallel()
	g := &Global{Config: &Config{}}
	assert.Equal(t, input.DefaultKeymap, g.Keymap())

	g.Config.Hardware.Keymap.Next = 59
	g.Config.Hardware.Keymap.Right = 60
	assert.Equal(t, input.Keymap{59: types.KeyNext, 60: types.KeyRight}, g.Keymap())
}

func TestDisplaySim(t *testing.T) {
	t.Parallel()
	fs := NewMockFullReader(map[string]string{"c": `hardware { i2c { driver = "sim" } display { brightness = 5 } }`})
	log := log2.NewTest(t, log2.LDebug)
	g := &Global{Config: MustReadConfig(log, fs, "c"), Log: log}
	d, err := g.Display()
	require.NoError(t, err)
	require.NotNil(t, d)
	sim := g.Sim()
	require.NotNil(t, sim)
	assert.True(t, sim.On())
	assert.Equal(t, "sim/0x70", sim.String())
	assert.Equal(t, "HT16K33{sim/0x70 addr=0x70}", d.String())
	assert.Equal(t, uint8(5), sim.Brightness())

	// lazy init returns same device
	d2, _ := g.Display()
	assert.Equal(t, d, d2)

	led, err := g.StatusLED()
	assert.NoError(t, err)
	assert.Nil(t, led)
}

func TestDisplayBrightness(t *testing.T) {
	t.Parallel()
	cases := []struct {
		conf   string
		expect uint8
	}{
		{`hardware { i2c { driver = "sim" } }`, 15},
		{`hardware { i2c { driver = "sim" } display { brightness = 0 } }`, 0},
		{`hardware { i2c { driver = "sim" } display { brightness = 9 } }`, 9},
	}
	for _, c := range cases {
		log := log2.NewTest(t, log2.LDebug)
		fs := NewMockFullReader(map[string]string{"c": c.conf})
		g := &Global{Config: MustReadConfig(log, fs, "c"), Log: log}
		_, err := g.Display()
		require.NoError(t, err, c.conf)
		assert.Equal(t, c.expect, g.Sim().Brightness(), c.conf)
	}
}

func TestStatusLEDDefaultChip(t *testing.T) {
	t.Parallel()
	fs := NewMockFullReader(map[string]string{"c": `hardware { status_led { enable = true pin = "17" } }`})
	log := log2.NewTest(t, log2.LDebug)
	g := &Global{Config: MustReadConfig(log, fs, "c"), Log: log}
	led, err := g.StatusLED()
	if err != nil {
		// no gpio on test host, error must name the device path
		assert.Contains(t, err.Error(), "pin_chip=/dev/gpiochip0")
		return
	}
	require.NoError(t, led.Close())
}
