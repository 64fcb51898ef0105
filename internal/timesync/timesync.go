// Package timesync reports once that wall clock became trustworthy.
// Actual synchronisation is done by system NTP client, we only watch kernel status.
package timesync

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/wificlock/clockd/log2"
)

const DefaultPoll = 5 * time.Second

type Watcher struct {
	AssumeValid bool
	Poll        time.Duration
	Log         *log2.Log

	check func() (bool, error)
}

func NewWatcher(log *log2.Log, assumeValid bool, poll time.Duration) *Watcher {
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Watcher{
		AssumeValid: assumeValid,
		Poll:        poll,
		Log:         log,
		check:       kernelSynced,
	}
}

// Run blocks until clock is synced (then calls notify once) or a is stopped.
// Unsupported platform without AssumeValid returns error immediately.
func (self *Watcher) Run(a *alive.Alive, notify func()) error {
	if self.AssumeValid {
		self.Log.Infof("timesync assume valid")
		notify()
		return nil
	}

	stopch := a.StopChan()
	for {
		ok, err := self.check()
		if err != nil {
			if errors.IsNotSupported(err) {
				return errors.Annotate(err, "timesync (try time.assume_valid=true)")
			}
			self.Log.Error(errors.Annotate(err, "timesync"))
		} else if ok {
			self.Log.Infof("timesync kernel clock synchronised")
			notify()
			return nil
		}

		select {
		case <-time.After(self.Poll):
		case <-stopch:
			return nil
		}
	}
}
