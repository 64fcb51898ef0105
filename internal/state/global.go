package state

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/internal/app"
	"github.com/wificlock/clockd/log2"
	tele_api "github.com/wificlock/clockd/tele"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Hardware     hardware // hardware.go
	Log          *log2.Log
	Tele         tele_api.Teler

	linkMu   sync.Mutex
	linkSubs []tele_api.LinkFunc

	_copy_guard sync.Mutex //nolint:unused
}

const ContextKey = "run/state-global"

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	g.Log.Infof("build version=%s", g.BuildVersion)

	// Since tele is remote error reporting mechanism, it must be inited before anything else
	g.Config.Tele.BuildVersion = g.BuildVersion
	teleLog := g.Log.Clone(log2.LInfo)
	if g.Config.Tele.LogDebug {
		teleLog.SetLevel(log2.LDebug)
	}
	// Tele.Init gets g.Log clone before SetErrorFunc, so Tele.Log.Error doesn't recurse on itself
	if err := g.Tele.Init(ctx, teleLog, g.Config.Tele, g.linkChanged); err != nil {
		// only invalid config gets here, network errors are retried by transport
		g.Tele = tele_api.Noop{}
		return errors.Annotate(err, "tele init")
	}
	g.Log.SetErrorFunc(g.Tele.Error)

	if g.BuildVersion == "unknown" {
		g.Log.Errorf("build version is not set, please use -ldflags")
	} else if strings.HasSuffix(g.BuildVersion, "-dirty") {
		g.Log.Infof("running development build with uncommited changes")
	}

	const initTasks = 3
	wg := sync.WaitGroup{}
	wg.Add(initTasks)
	errch := make(chan error, initTasks)
	go helpers.WrapErrChan(&wg, errch, g.initDisplay)
	go helpers.WrapErrChan(&wg, errch, g.initInput)
	go helpers.WrapErrChan(&wg, errch, g.initStatusLED)
	wg.Wait()
	close(errch)

	return helpers.FoldErrChan(errch)
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Fatal(err)
	}
}

// SubscribeLink registers connectivity observer and immediately reports current state.
func (g *Global) SubscribeLink(f tele_api.LinkFunc) {
	helpers.WithLock(&g.linkMu, func() {
		g.linkSubs = append(g.linkSubs, f)
	})
	f(g.Tele.Connected())
}

func (g *Global) linkChanged(connected bool) {
	g.linkMu.Lock()
	subs := g.linkSubs
	g.linkMu.Unlock()
	g.Log.Infof("tele link connected=%t", connected)
	for _, f := range subs {
		f(connected)
	}
}

// AppChanged reports current app to telemetry, nil app is reported as "none".
func (g *Global) AppChanged(a app.App) {
	name := "none"
	if a != nil {
		name = a.Name()
	}
	g.Tele.AppChanged(name)
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		// log2 error func forwards to g.Tele
		g.Log.Error(err)
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close releases hardware after Alive finished.
func (g *Global) Close() {
	g.Tele.Close()
	if d := g.Hardware.Display.d; d != nil {
		if err := d.Halt(); err != nil {
			g.Log.Error(errors.Annotate(err, "display halt"))
		}
	}
	if led := g.Hardware.StatusLED.led; led != nil {
		_ = led.Close()
	}
	if bus := g.Hardware.I2C.Bus; bus != nil {
		_ = bus.Close()
	}
}
