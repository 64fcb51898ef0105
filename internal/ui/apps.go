package ui

import (
	"strings"

	"github.com/juju/errors"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/internal/app"
	ui_config "github.com/wificlock/clockd/internal/ui/config"
)

// NewApps builds rotation from config names: clock, brightness, scroller:<name>.
// Empty list means ui_config.DefaultApps.
func NewApps(c *ui_config.Config) ([]app.App, error) {
	names := c.Apps
	if len(names) == 0 {
		names = ui_config.DefaultApps
	}
	apps := make([]app.App, 0, len(names))
	errs := make([]error, 0)
	for _, name := range names {
		kind, arg := name, ""
		if i := strings.IndexByte(name, ':'); i >= 0 {
			kind, arg = name[:i], name[i+1:]
		}
		switch kind {
		case "clock":
			apps = append(apps, app.NewClock())
		case "brightness":
			apps = append(apps, app.NewBrightness(c.Brightness.Level))
		case "scroller":
			sc, err := findScroller(c, arg)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			// delay_ms=0 static text
			delay := helpers.IntMillisecondDefault(sc.DelayMs, 0)
			apps = append(apps, app.NewScroller("scroller:"+sc.Name, sc.Text, delay))
		default:
			errs = append(errs, errors.NotValidf("ui.apps name=%s", name))
		}
	}
	return apps, helpers.FoldErrors(errs)
}

func findScroller(c *ui_config.Config, name string) (*ui_config.ScrollerConfig, error) {
	for i := range c.Scrollers {
		sc := &c.Scrollers[i]
		if name == "" || sc.Name == name {
			return sc, nil
		}
	}
	return nil, errors.NotFoundf("ui.scroller name=%s", name)
}
