package tele

import (
	"context"

	"github.com/wificlock/clockd/log2"
	tele_config "github.com/wificlock/clockd/tele/config"
)

// Noop replaces tele after failed Init.
type Noop struct{}

var _ Teler = Noop{} // compile-time interface test

func (Noop) Init(context.Context, *log2.Log, tele_config.Config, LinkFunc) error { return nil }

func (Noop) Close() {}

func (Noop) Connected() bool { return false }

func (Noop) AppChanged(string) {}

func (Noop) Error(error) {}

func (Noop) SetStatFunc(StatFunc) {}
