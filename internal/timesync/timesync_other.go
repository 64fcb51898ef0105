// +build !linux

package timesync

import "github.com/juju/errors"

func kernelSynced() (bool, error) {
	return false, errors.NotSupportedf("adjtimex")
}
