package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/wificlock/clockd/helpers"
	ui_config "github.com/wificlock/clockd/internal/ui/config"
	"github.com/wificlock/clockd/log2"
	tele_config "github.com/wificlock/clockd/tele/config"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Hardware struct {
		I2C struct {
			Driver   string `hcl:"driver"`
			Bus      string `hcl:"bus"`
			SpeedKhz int    `hcl:"speed_khz"`
		} `hcl:"i2c"`
		Display struct {
			Address    int `hcl:"address"`
			Brightness *int `hcl:"brightness"` // nil = max
		} `hcl:"display"`
		Keymap struct {
			Next  int `hcl:"next"`
			Left  int `hcl:"left"`
			Right int `hcl:"right"`
		} `hcl:"keymap"`
		Input struct {
			DevInputEvent struct {
				Enable bool   `hcl:"enable"`
				Device string `hcl:"device"`
			} `hcl:"dev_input_event"`
		} `hcl:"input"`
		StatusLed struct {
			Enable  bool   `hcl:"enable"`
			PinChip string `hcl:"pin_chip"`
			Pin     string `hcl:"pin"`
		} `hcl:"status_led"`
	} `hcl:"hardware"`

	Time struct {
		AssumeValid bool `hcl:"assume_valid"`
		PollSec     int  `hcl:"poll_sec"`
	} `hcl:"time"`

	Tele tele_config.Config `hcl:"tele"`
	UI   ui_config.Config   `hcl:"ui"`

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			*errs = append(*errs, errors.NotFoundf("config required name=%s path=%s", source.Name, norm))
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	if err = hcl.Unmarshal(bs, c); err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config unmarshal source=%s", source.Name))
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		if _, ok := c.includeSeen[fs.Normalize(include.Name)]; ok {
			*errs = append(*errs, errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name))
			continue
		}
		c.read(log, fs, include, errs)
	}
}

// Validate checks values that hcl types can't express.
func (c *Config) Validate() error {
	errs := make([]error, 0, 4)
	if a := c.Hardware.Display.Address; a < 0 || a > 0x7f {
		errs = append(errs, errors.NotValidf("config: hardware.display.address=%d", a))
	}
	if b := c.Hardware.Display.Brightness; b != nil && (*b < 0 || *b > 15) {
		errs = append(errs, errors.NotValidf("config: hardware.display.brightness=%d (0..15)", *b))
	}
	if c.UI.TickMs < 0 {
		errs = append(errs, errors.NotValidf("config: ui.tick_ms=%d", c.UI.TickMs))
	}
	if c.Hardware.StatusLed.Enable && c.Hardware.StatusLed.Pin == "" {
		errs = append(errs, errors.NotValidf("config: hardware.status_led.pin empty"))
	}
	if c.Hardware.Input.DevInputEvent.Enable && c.Hardware.Input.DevInputEvent.Device == "" {
		errs = append(errs, errors.NotValidf("config: hardware.input.dev_input_event.device empty"))
	}
	return helpers.FoldErrors(errs)
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	if len(errs) == 0 {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
