// Package tele is MQTT link monitor: broker connection state drives
// connectivity notifications, current app and errors are published for remote monitoring.
package tele

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/atomic_clock"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/log2"
	tele_api "github.com/wificlock/clockd/tele"
	tele_config "github.com/wificlock/clockd/tele/config"
)

const (
	topicSuffixApp   = "app"
	topicSuffixError = "error"
	topicSuffixStat  = "stat"

	defaultStatInterval = 5 * time.Minute
)

// Tele contract:
// - Init() fails only with invalid config, network issues ignored
// - public API calls never block on network
// - link state changes reach LinkFunc, first one after connect or lost
type tele struct { //nolint:maligned
	config     tele_config.Config
	log        *log2.Log
	transport  Transporter
	onLink     tele_api.LinkFunc
	alive      *alive.Alive
	connected  uint32 // atomic bool
	linkChange atomic_clock.Clock
	lastApp    atomic.Value // string
	statFunc   atomic.Value // tele_api.StatFunc
}

func New() tele_api.Teler {
	return &tele{}
}
func NewWithTransporter(trans Transporter) tele_api.Teler {
	return &tele{transport: trans}
}

func (self *tele) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onLink tele_api.LinkFunc) error {
	self.config = teleConfig
	self.log = log
	self.onLink = onLink
	self.alive = alive.NewAlive()
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	if !self.config.Enabled {
		self.transport = nil
		return nil
	}

	// test code sets .transport
	if self.transport == nil { // production path
		self.transport = &transportMqtt{}
	}
	if err := self.transport.Init(ctx, log, teleConfig, self.link); err != nil {
		self.transport = nil
		return errors.Annotate(err, "tele transport")
	}

	go self.statLoop(helpers.IntSecondDefault(self.config.StatIntervalSec, defaultStatInterval))
	return nil
}

func (self *tele) Close() {
	if self.transport == nil {
		return
	}
	self.alive.Stop()
	self.transport.Close()
}

func (self *tele) Connected() bool { return atomic.LoadUint32(&self.connected) == 1 }

// SinceLinkChange is zero before first connect attempt result.
func (self *tele) SinceLinkChange() time.Duration {
	if self.linkChange.IsZero() {
		return 0
	}
	return atomic_clock.Since(&self.linkChange)
}

func (self *tele) AppChanged(name string) {
	self.lastApp.Store(name)
	if self.transport == nil {
		return
	}
	self.transport.Publish(topicSuffixApp, true, []byte(name))
}

func (self *tele) Error(err error) {
	if self.transport == nil || err == nil {
		return
	}
	self.log.Debugf("tele.Error: %v", err)
	self.transport.Publish(topicSuffixError, false, []byte(err.Error()))
}

func (self *tele) SetStatFunc(f tele_api.StatFunc) { self.statFunc.Store(f) }

func (self *tele) link(connected bool) {
	var v uint32
	if connected {
		v = 1
	}
	atomic.StoreUint32(&self.connected, v)
	self.linkChange.SetNow()
	if connected {
		// retained app state may be stale after reconnect
		if name, ok := self.lastApp.Load().(string); ok {
			self.transport.Publish(topicSuffixApp, true, []byte(name))
		}
	}
	if self.onLink != nil {
		self.onLink(connected)
	}
}

func (self *tele) statLoop(interval time.Duration) {
	stopch := self.alive.StopChan()
	for {
		select {
		case <-time.After(interval):
		case <-stopch:
			return
		}
		self.publishStat()
	}
}

func (self *tele) publishStat() {
	f, ok := self.statFunc.Load().(tele_api.StatFunc)
	if !ok || f == nil {
		return
	}
	payload := fmt.Sprintf("%s link_age=%s", f(), self.SinceLinkChange().Truncate(time.Second))
	self.transport.Publish(topicSuffixStat, false, []byte(payload))
}
