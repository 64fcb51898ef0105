package tele

import (
	"context"

	"github.com/wificlock/clockd/log2"
	tele_config "github.com/wificlock/clockd/tele/config"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - application may start without network available, transport reconnects in background
// - onLink is called on every connect and connection loss
// - Publish does not block on network
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onLink func(bool)) error
	Publish(topicSuffix string, retained bool, payload []byte) bool
	Close()
}
