// Package run is the clock daemon: display loop wired to keys,
// time sync and link monitor.
package run

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/wificlock/clockd/cmd/clockd/subcmd"
	"github.com/wificlock/clockd/hardware/ht16k33"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/internal/state"
	"github.com/wificlock/clockd/internal/timesync"
	"github.com/wificlock/clockd/internal/types"
	"github.com/wificlock/clockd/internal/ui"
)

var Mod = subcmd.Mod{Name: "run", Usage: "display daemon (default)", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	defer g.Close()
	subcmd.StopOnSignal(g)

	if _, err := Start(ctx); err != nil {
		return errors.Annotate(err, "run")
	}
	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Infof("clockd init complete, running")

	g.Alive.Wait()
	return nil
}

// Start builds ui controller, subscribes it to notification sources and runs its loop.
func Start(ctx context.Context) (*ui.Controller, error) {
	g := state.GetGlobal(ctx)
	ctrl, err := ui.Init(ctx)
	if err != nil {
		return nil, err
	}

	g.Hardware.Input.SubscribeFunc("ui", func(e types.InputEvent) {
		ctrl.Notify(types.Event{Kind: types.EventInput, Input: e})
	}, g.Alive.StopChan())

	led, _ := g.StatusLED() // error reported by g.Init
	g.SubscribeLink(func(connected bool) {
		kind := types.EventDisconnected
		if connected {
			kind = types.EventConnected
		}
		ctrl.Notify(types.Event{Kind: kind})
		if led != nil {
			g.Error(led.Set(connected), "status led")
		}
	})

	if dev, err := g.Display(); err == nil {
		g.Tele.SetStatFunc(func() string { return FormatStat(dev.Stat()) })
	}

	w := timesync.NewWatcher(g.Log, g.Config.Time.AssumeValid, helpers.IntSecondDefault(g.Config.Time.PollSec, timesync.DefaultPoll))
	if g.Alive.Add(1) {
		go func() {
			defer g.Alive.Done()
			err := w.Run(g.Alive, func() { ctrl.Notify(types.Event{Kind: types.EventTimeSet}) })
			g.Error(err)
		}()
	}

	go ctrl.Loop(ctx)
	return ctrl, nil
}

func FormatStat(s ht16k33.Stat) string {
	last := "never"
	if !s.LastFlush.IsZero() {
		last = s.LastFlush.Format("15:04:05")
	}
	return fmt.Sprintf("flush=%d flush_skip=%d rescan=%d bus_error=%d last_flush=%s",
		s.Flush, s.FlushSkip, s.Rescan, s.BusError, last)
}
