package tele

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wificlock/clockd/log2"
	tele_api "github.com/wificlock/clockd/tele"
	tele_config "github.com/wificlock/clockd/tele/config"
)

type message struct {
	topic    string
	retained bool
	payload  string
}

type mockTransport struct {
	mu      sync.Mutex
	onLink  func(bool)
	msgs    []message
	initErr error
	closed  bool
}

func (self *mockTransport) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onLink func(bool)) error {
	self.onLink = onLink
	return self.initErr
}

func (self *mockTransport) Publish(topicSuffix string, retained bool, payload []byte) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.msgs = append(self.msgs, message{topicSuffix, retained, string(payload)})
	return true
}

func (self *mockTransport) Close() { self.closed = true }

func (self *mockTransport) messages() []message {
	self.mu.Lock()
	defer self.mu.Unlock()
	return append([]message(nil), self.msgs...)
}

func newTestTele(t testing.TB, enabled bool) (tele_api.Teler, *mockTransport, *[]bool) {
	trans := &mockTransport{}
	tl := NewWithTransporter(trans)
	links := new([]bool)
	cfg := tele_config.Config{Enabled: enabled, Broker: "tcp://test", ClientId: "clock1"}
	require.NoError(t, tl.Init(context.Background(), log2.NewTest(t, log2.LDebug), cfg, func(c bool) { *links = append(*links, c) }))
	return tl, trans, links
}

func TestLink(t *testing.T) {
	t.Parallel()
	tl, trans, links := newTestTele(t, true)
	assert.False(t, tl.Connected())

	trans.onLink(true)
	assert.True(t, tl.Connected())
	trans.onLink(false)
	assert.False(t, tl.Connected())
	assert.Equal(t, []bool{true, false}, *links)
	assert.True(t, tl.(*tele).SinceLinkChange() >= 0)

	tl.Close()
	assert.True(t, trans.closed)
}

func TestAppChangedRepublishOnConnect(t *testing.T) {
	t.Parallel()
	tl, trans, _ := newTestTele(t, true)
	tl.AppChanged("clock")
	tl.AppChanged("brightness")
	trans.onLink(true)
	assert.Equal(t, []message{
		{"app", true, "clock"},
		{"app", true, "brightness"},
		{"app", true, "brightness"},
	}, trans.messages())
}

func TestErrorAndStat(t *testing.T) {
	t.Parallel()
	tl, trans, _ := newTestTele(t, true)
	tl.Error(nil)
	tl.Error(errors.New("bus nack"))
	tl.SetStatFunc(func() string { return "flush=3" })
	tl.(*tele).publishStat()

	msgs := trans.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, message{"error", false, "bus nack"}, msgs[0])
	assert.Equal(t, "stat", msgs[1].topic)
	assert.True(t, strings.HasPrefix(msgs[1].payload, "flush=3 link_age="), msgs[1].payload)
}

func TestDisabled(t *testing.T) {
	t.Parallel()
	tl, trans, _ := newTestTele(t, false)
	tl.AppChanged("clock")
	tl.Error(errors.New("x"))
	tl.Close()
	assert.Nil(t, trans.onLink)
	assert.Len(t, trans.messages(), 0)
	assert.False(t, trans.closed)
}

func TestInitError(t *testing.T) {
	t.Parallel()
	trans := &mockTransport{initErr: errors.NotValidf("tele.broker empty")}
	tl := NewWithTransporter(trans)
	err := tl.Init(context.Background(), log2.NewTest(t, log2.LDebug), tele_config.Config{Enabled: true}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotValid(err))
	// must not panic after failed init
	tl.AppChanged("clock")
	tl.Close()
}
