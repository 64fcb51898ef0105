package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	state_new "github.com/wificlock/clockd/internal/state/new"
	"github.com/wificlock/clockd/internal/types"
)

func TestLoop(t *testing.T) {
	t.Parallel()
	ctx, g := state_new.NewTestContext(t, "test", `
ui {
	tick_ms = 5
	apps = ["scroller:hi", "brightness"]
	brightness { level = 3 }
	scroller "hi" { text = "HI" }
}`)
	c, err := Init(ctx)
	require.NoError(t, err)
	sim := g.Sim()
	require.NotNil(t, sim)
	assert.Equal(t, uint8(8), sim.Brightness())

	done := make(chan struct{})
	go func() {
		c.Loop(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return sim.Text() == "Hi Hi" }, 2*time.Second, 10*time.Millisecond)

	c.Notify(types.InputEventKey("test", types.KeyNext))
	require.Eventually(t, func() bool { return sim.Text() == "br: 3" }, 2*time.Second, 10*time.Millisecond)

	assert.True(t, g.StopWait(2*time.Second))
	<-done
}

func TestInitBadApps(t *testing.T) {
	t.Parallel()
	ctx, _ := state_new.NewTestContext(t, "test", `ui { apps = ["radio"] }`)
	_, err := Init(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui init")
}
