package tele

import (
	"context"

	"github.com/wificlock/clockd/log2"
	tele_config "github.com/wificlock/clockd/tele/config"
)

// LinkFunc receives broker connection state changes, called from network goroutine.
type LinkFunc func(connected bool)

// StatFunc renders current counters for periodic publish.
type StatFunc func() string

// Teler is link monitor and remote reporting, clock side.
type Teler interface {
	Init(context.Context, *log2.Log, tele_config.Config, LinkFunc) error
	Close()
	Connected() bool
	AppChanged(name string)
	Error(error)
	SetStatFunc(StatFunc)
}

// NewStub is silent Teler for tests and tools.
func NewStub() Teler { return Noop{} }
