package input

import (
	"io"
	"os"

	"github.com/temoto/inputevent-go"
	"github.com/wificlock/clockd/internal/types"
)

const DevInputEventTag = "dev-input-event"

const evKey uint16 = 0x01 // EV_KEY

// Keymap translates evdev key codes, see linux/input-event-codes.h.
type Keymap map[uint16]types.InputKey

// KEY_ENTER, KEY_LEFT, KEY_RIGHT
var DefaultKeymap = Keymap{
	28:  types.KeyNext,
	105: types.KeyLeft,
	106: types.KeyRight,
}

type DevInputEventSource struct {
	f      io.ReadCloser
	keymap Keymap
}

// compile-time interface compliance test
var _ Source = new(DevInputEventSource)

func (self *DevInputEventSource) String() string { return DevInputEventTag }

func NewDevInputEventSource(device string, keymap Keymap) (*DevInputEventSource, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, err
	}
	return newDevInputEventSource(f, keymap), nil
}

func newDevInputEventSource(f io.ReadCloser, keymap Keymap) *DevInputEventSource {
	if keymap == nil {
		keymap = DefaultKeymap
	}
	return &DevInputEventSource{f: f, keymap: keymap}
}

// Read skips non-key events, autorepeat and unmapped codes.
func (self *DevInputEventSource) Read() (types.InputEvent, error) {
	for {
		ie, err := inputevent.ReadOne(self.f)
		if err != nil {
			return types.InputEvent{}, err
		}
		if ie.Type != evKey || ie.Value == int32(inputevent.KeyStateHold) {
			continue
		}
		key, ok := self.keymap[ie.Code]
		if !ok {
			continue
		}
		ev := types.InputEvent{
			Source: DevInputEventTag,
			Key:    key,
			Up:     ie.Value == int32(inputevent.KeyStateUp),
		}
		return ev, nil
	}
}

func (self *DevInputEventSource) Close() error { return self.f.Close() }
