// +build linux

package timesync

import (
	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

const (
	staUnsync = 0x0040 // STA_UNSYNC
	timeError = 5      // TIME_ERROR
)

// kernelSynced asks adjtimex(2) in read-only mode.
func kernelSynced() (bool, error) {
	var tx unix.Timex
	state, err := unix.Adjtimex(&tx)
	if err != nil {
		return false, errors.Annotate(err, "adjtimex")
	}
	return state != timeError && tx.Status&staUnsync == 0, nil
}
