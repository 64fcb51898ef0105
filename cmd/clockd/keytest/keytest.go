// Package keytest prints raw key scan columns, for wiring check.
package keytest

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/wificlock/clockd/cmd/clockd/subcmd"
	"github.com/wificlock/clockd/hardware/ht16k33"
	"github.com/wificlock/clockd/internal/state"
)

var Mod = subcmd.Mod{Name: "keytest", Usage: "print raw key scans until interrupted", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	config.Tele.Enabled = false
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	defer g.Close()
	subcmd.StopOnSignal(g)

	dev, err := g.Display()
	if err != nil {
		return errors.Annotate(err, "keytest")
	}
	return Scan(g, dev, func(line string) { fmt.Println(line) })
}

// Scan reports every change of key memory until g.Alive is stopped.
func Scan(g *state.Global, dev *ht16k33.Dev, print func(string)) error {
	var last [ht16k33.KeyColumns]uint16
	first := true
	for g.Alive.IsRunning() {
		if err := dev.RescanKeys(); err != nil {
			g.Log.Error(errors.Annotate(err, "keytest rescan"))
			select {
			case <-time.After(time.Second):
			case <-g.Alive.StopChan():
			}
			continue
		}
		var cur [ht16k33.KeyColumns]uint16
		for i := range cur {
			cur[i] = dev.KeyColumn(i)
		}
		if first || cur != last {
			print(fmt.Sprintf("keys %016b %016b %016b", cur[0], cur[1], cur[2]))
			last, first = cur, false
		}
	}
	return nil
}
