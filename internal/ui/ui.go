package ui

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/internal/state"
)

// Init builds app rotation from g.Config.UI and display from g.Hardware.
func Init(ctx context.Context) (*Controller, error) {
	g := state.GetGlobal(ctx)
	dev, err := g.Display()
	if err != nil {
		return nil, errors.Annotate(err, "ui init")
	}
	apps, err := NewApps(&g.Config.UI)
	if err != nil {
		return nil, errors.Annotate(err, "ui init")
	}

	c := NewController(dev, g.Log)
	c.OnAppChange = g.AppChanged
	for _, a := range apps {
		c.AddApp(a)
	}
	return c, nil
}

// Loop runs Tick until g.Alive is stopped.
// Repeated bus errors slow the loop down to avoid flooding logs.
func (self *Controller) Loop(ctx context.Context) {
	g := state.GetGlobal(ctx)
	if !g.Alive.Add(1) {
		return
	}
	defer g.Alive.Done()

	interval := helpers.IntMillisecondDefault(g.Config.UI.TickMs, 0)
	backoff := helpers.Backoff{Min: 100 * time.Millisecond, Max: 10 * time.Second, K: 2}
	stopch := g.Alive.StopChan()
	for g.Alive.IsRunning() {
		err := self.Tick()
		if err != nil {
			g.Error(errors.Annotate(err, "ui tick"))
		}
		delay := backoff.DelayAfter(err == nil)
		if delay < interval {
			delay = interval
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-stopch:
			}
		}
	}
	g.Log.Debugf("ui loop end")
}
