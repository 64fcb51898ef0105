// Package subcmd holds clockd commands: run, cli, keytest, version.
package subcmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/wificlock/clockd/internal/state"
)

type Mod struct {
	Name  string
	Usage string
	// nil config for modules that don't need one
	Main func(context.Context, *state.Config) error

	NoConfig bool
}

// Parse finds module by name, empty name selects def.
func Parse(command, def string, modules []Mod) (*Mod, error) {
	if command == "" {
		command = def
	}
	for i := range modules {
		m := &modules[i]
		if m.Name == "" || m.Main == nil {
			panic(fmt.Sprintf("code error subcmd module=%#v", m))
		}
		if m.Name == command {
			return m, nil
		}
	}
	return nil, errors.NotFoundf("command=%s", command)
}

func WriteUsage(w io.Writer, modules []Mod) {
	fmt.Fprintf(w, "commands:\n")
	for _, m := range modules {
		fmt.Fprintf(w, "  %-8s %s\n", m.Name, m.Usage)
	}
}

// SdNotify returns false when not running under systemd.
func SdNotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}

// StopOnSignal stops g.Alive on SIGINT or SIGTERM.
func StopOnSignal(g *state.Global) {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigch:
			g.Log.Infof("signal=%v stopping", sig)
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			g.Stop()
		case <-g.Alive.StopChan():
		}
		signal.Stop(sigch)
	}()
}
