package types

import (
	"fmt"
)

type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventInput
	EventTimeSet
	EventConnected
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventInput:
		return "Input"
	case EventTimeSet:
		return "TimeSet"
	case EventConnected:
		return "Connected"
	case EventDisconnected:
		return "Disconnected"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is notification from outside of tick loop: time became valid,
// link state change or virtual key press from other input source.
type Event struct {
	Input InputEvent
	Kind  EventKind
}

func (e *Event) String() string {
	inner := ""
	if e.Kind == EventInput {
		inner = fmt.Sprintf(" source=%s key=%v up=%t", e.Input.Source, e.Input.Key, e.Input.Up)
	}
	return fmt.Sprintf("Event(%s%s)", e.Kind.String(), inner)
}

type InputKey uint16

const (
	KeyNone InputKey = iota
	KeyNext
	KeyLeft
	KeyRight
)

func (k InputKey) String() string {
	switch k {
	case KeyNext:
		return "next"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	}
	return fmt.Sprintf("key(%d)", uint16(k))
}

func ParseInputKey(s string) (InputKey, bool) {
	switch s {
	case "next", "n":
		return KeyNext, true
	case "left", "l":
		return KeyLeft, true
	case "right", "r":
		return KeyRight, true
	}
	return KeyNone, false
}

type InputEvent struct {
	Source string
	Key    InputKey
	Up     bool
}

func (e *InputEvent) IsZero() bool { return e.Key == KeyNone }

func InputEventKey(source string, key InputKey) Event {
	return Event{Kind: EventInput, Input: InputEvent{Source: source, Key: key}}
}
