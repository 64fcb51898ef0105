package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/wificlock/clockd/cmd/clockd/console"
	"github.com/wificlock/clockd/cmd/clockd/keytest"
	"github.com/wificlock/clockd/cmd/clockd/run"
	"github.com/wificlock/clockd/cmd/clockd/subcmd"
	"github.com/wificlock/clockd/internal/state"
	state_new "github.com/wificlock/clockd/internal/state/new"
	"github.com/wificlock/clockd/internal/tele"
	"github.com/wificlock/clockd/log2"
)

var log = log2.NewStderr(log2.LDebug)

// set by -ldflags "-X main.BuildVersion=..."
var BuildVersion string = "unknown"

var modules = []subcmd.Mod{
	run.Mod,
	console.Mod,
	keytest.Mod,
	{Name: "version", Usage: "print build version", Main: versionMain, NoConfig: true},
}

func main() {
	flagset := flag.NewFlagSet("clockd", flag.ContinueOnError)
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "usage: clockd [flags] [command]\n")
		subcmd.WriteUsage(flagset.Output(), modules)
		fmt.Fprintf(flagset.Output(), "flags:\n")
		flagset.PrintDefaults()
	}
	configPath := flagset.String("config", "clockd.hcl", "path to HCL config")
	logDebug := flagset.Bool("debug", false, "debug logging")
	if err := flagset.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if subcmd.SdNotify("start") {
		// we're under systemd, assume systemd journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else if isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetFlags(log2.LInteractiveFlags)
	} else {
		log.SetFlags(log2.LStdFlags)
	}
	if !*logDebug {
		log.SetLevel(log2.LInfo)
	}

	mod, err := subcmd.Parse(flagset.Arg(0), run.Mod.Name, modules)
	if err != nil {
		flagset.Usage()
		log.Fatal(err)
	}
	log.Debugf("clockd command=%s", mod.Name)

	var config *state.Config
	if !mod.NoConfig {
		config = state.MustReadConfig(log, state.NewOsFullReader(), *configPath)
	}
	ctx, g := state_new.NewContext(log, tele.New())
	g.BuildVersion = BuildVersion
	if err := mod.Main(ctx, config); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
}

func versionMain(ctx context.Context, config *state.Config) error {
	fmt.Printf("clockd %s\n", BuildVersion)
	return nil
}
