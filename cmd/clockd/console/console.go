// Package console drives simulated display module from interactive prompt.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/wificlock/clockd/cmd/clockd/run"
	"github.com/wificlock/clockd/cmd/clockd/subcmd"
	"github.com/wificlock/clockd/hardware/ht16k33"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/helpers/cli"
	"github.com/wificlock/clockd/internal/state"
	"github.com/wificlock/clockd/internal/types"
	"github.com/wificlock/clockd/internal/ui"
)

const modName = "cli"

var Mod = subcmd.Mod{Name: modName, Usage: "interactive console on simulated display", Main: Main}

const usage = `commands:
- next|n left|l right|r   press and release key on simulated module
- show                    print display text, brightness
- stat                    driver counters
- fail N                  next N bus transactions fail
- tx XX...                raw write to module, hex
- timeset                 report wall clock valid
- link on|off             simulate connectivity change
- help
`

// keys are held at least this long so the loop sees both edges
const keyHold = 100 * time.Millisecond

func Main(ctx context.Context, config *state.Config) error {
	config.Hardware.I2C.Driver = state.DriverSim
	config.Hardware.Input.DevInputEvent.Enable = false
	config.Hardware.StatusLed.Enable = false
	config.Tele.Enabled = false
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	defer g.Close()

	ctrl, err := run.Start(ctx)
	if err != nil {
		return errors.Annotate(err, modName)
	}
	fmt.Print(usage)
	err = cli.MainLoop("clockd", g.Stop, newExecutor(ctx, ctrl), newCompleter())
	g.StopWait(5 * time.Second)
	return err
}

func newCompleter() func(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "next", Description: "key next app"},
		{Text: "left", Description: "key left"},
		{Text: "right", Description: "key right"},
		{Text: "show", Description: "display text"},
		{Text: "stat", Description: "driver counters"},
		{Text: "fail", Description: "fail N bus transactions"},
		{Text: "tx", Description: "raw hex write"},
		{Text: "timeset", Description: "time valid"},
		{Text: "link", Description: "link on|off"},
		{Text: "help"},
	}
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}

func newExecutor(ctx context.Context, ctrl *ui.Controller) func(string) {
	g := state.GetGlobal(ctx)
	return func(line string) {
		if err := execLine(g, ctrl, line); err != nil {
			g.Log.Errorf(errors.ErrorStack(err))
		}
	}
}

func execLine(g *state.Global, ctrl *ui.Controller, line string) error {
	sim := g.Sim()
	if sim == nil {
		return errors.Errorf("code error cli without simulated display")
	}
	name, args := cli.Fields(line)
	switch name {
	case "":
		return nil

	case "help", "?":
		fmt.Print(usage)

	case "show":
		fmt.Printf("[%s] brightness=%d on=%t\n", sim.Text(), sim.Brightness(), sim.On())

	case "stat":
		dev, err := g.Display()
		if err != nil {
			return err
		}
		fmt.Println(run.FormatStat(dev.Stat()))

	case "fail":
		if len(args) != 1 {
			return errors.NotValidf("usage: fail N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Annotate(err, "fail N")
		}
		sim.Fail(n)

	case "tx":
		b, err := helpers.ParseHex(strings.Join(args, ""))
		if err != nil {
			return errors.Annotate(err, "tx")
		}
		if err = sim.Tx(ht16k33.DefaultAddress, b, nil); err != nil {
			return errors.Annotatef(err, "tx %x", b)
		}
		fmt.Printf("tx %x ok\n", b)

	case "timeset":
		ctrl.Notify(types.Event{Kind: types.EventTimeSet})

	case "link":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return errors.NotValidf("usage: link on|off")
		}
		kind := types.EventDisconnected
		if args[0] == "on" {
			kind = types.EventConnected
		}
		ctrl.Notify(types.Event{Kind: kind})

	default:
		key, ok := types.ParseInputKey(name)
		if !ok {
			return errors.NotFoundf("command=%s (try help)", name)
		}
		press(sim, key)
		fmt.Printf("[%s]\n", sim.Text())
	}
	return nil
}

func press(sim *ht16k33.Sim, key types.InputKey) {
	var bit uint16
	switch key {
	case types.KeyNext:
		bit = ui.KeyBitNext
	case types.KeyLeft:
		bit = ui.KeyBitLeft
	case types.KeyRight:
		bit = ui.KeyBitRight
	}
	sim.SetKeys(0, bit)
	time.Sleep(keyHold)
	sim.SetKeys(0, 0)
	time.Sleep(keyHold)
}
