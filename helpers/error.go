package helpers

import (
	"strings"
	"sync"

	"github.com/juju/errors"
)

// FoldErrors returns nil for no errors, the error itself when there is one,
// otherwise single error joining all messages line by line.
func FoldErrors(errs []error) error {
	var first error
	ss := make([]string, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			if first == nil {
				first = e
			}
			ss = append(ss, e.Error())
		}
	}
	switch len(ss) {
	case 0:
		return nil
	case 1:
		return first
	}
	return errors.New(strings.Join(ss, "\n"))
}

// WrapErrChan runs f and sends its non-nil error to errch, for parallel init.
func WrapErrChan(wg *sync.WaitGroup, errch chan<- error, f func() error) {
	defer wg.Done()
	if err := f(); err != nil {
		errch <- err
	}
}

// FoldErrChan reads closed errch to the end.
func FoldErrChan(errch <-chan error) error {
	errs := make([]error, 0, len(errch))
	for e := range errch {
		errs = append(errs, e)
	}
	return FoldErrors(errs)
}
