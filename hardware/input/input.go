// Package input delivers key events from sources other than display key scan,
// e.g. Linux evdev buttons, to subscribers.
package input

import (
	"sync"

	"github.com/juju/errors"
	"github.com/wificlock/clockd/internal/types"
	"github.com/wificlock/clockd/log2"
)

type Source interface {
	Read() (types.InputEvent, error)
	String() string
}

type EventFunc func(types.InputEvent)

type subscriber struct {
	name string
	fun  EventFunc
	ch   chan types.InputEvent
	stop <-chan struct{} // nil = until dispatch stops
}

func (s *subscriber) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Dispatch fans out events from all sources to named subscribers.
// Subscriber callbacks run on Run goroutine and must not block.
type Dispatch struct {
	Log *log2.Log

	events chan types.InputEvent
	stop   <-chan struct{}

	mu   sync.Mutex
	subs map[string]*subscriber
}

func NewDispatch(log *log2.Log, stop <-chan struct{}) *Dispatch {
	return &Dispatch{
		Log:    log,
		events: make(chan types.InputEvent),
		stop:   stop,
		subs:   make(map[string]*subscriber, 2),
	}
}

// SubscribeChan returned channel is closed when substop is closed
// and next event arrives, or when dispatch stops.
func (self *Dispatch) SubscribeChan(name string, substop <-chan struct{}) <-chan types.InputEvent {
	ch := make(chan types.InputEvent)
	self.add(&subscriber{name: name, ch: ch, stop: substop})
	return ch
}

func (self *Dispatch) SubscribeFunc(name string, fun EventFunc, substop <-chan struct{}) {
	if fun == nil {
		panic("code error input SubscribeFunc fun=nil name=" + name)
	}
	self.add(&subscriber{name: name, fun: fun, stop: substop})
}

// Name may be reused only after previous subscriber stopped.
func (self *Dispatch) add(s *subscriber) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if old, ok := self.subs[s.name]; ok {
		if !old.stopped() {
			panic("code error input duplicate subscribe name=" + s.name)
		}
		self.remove(old)
	}
	self.subs[s.name] = s
}

// caller holds mu
func (self *Dispatch) remove(s *subscriber) {
	if s.ch != nil {
		close(s.ch)
	}
	delete(self.subs, s.name)
}

// Run blocks until stop, reading every source in separate goroutine.
func (self *Dispatch) Run(sources []Source) {
	for _, source := range sources {
		go self.readSource(source)
	}

	for {
		select {
		case e := <-self.events:
			if n := self.deliver(e); n == 0 {
				self.Log.Debugf("input no subscribers event=%#v", e)
			}

		case <-self.stop:
			self.mu.Lock()
			for _, s := range self.subs {
				self.remove(s)
			}
			self.mu.Unlock()
			return
		}
	}
}

// Emit returns false after dispatch stopped.
func (self *Dispatch) Emit(e types.InputEvent) bool {
	select {
	case self.events <- e:
		return true
	case <-self.stop:
		return false
	}
}

func (self *Dispatch) deliver(e types.InputEvent) int {
	self.mu.Lock()
	defer self.mu.Unlock()
	n := 0
	for _, s := range self.subs {
		if s.stopped() {
			self.remove(s)
			continue
		}
		n++
		if s.fun != nil {
			s.fun(e)
			continue
		}
		select {
		case s.ch <- e:
		case <-s.stop:
			self.remove(s)
		case <-self.stop:
		}
	}
	return n
}

// readSource stops on first error, display keys keep working without this source.
func (self *Dispatch) readSource(source Source) {
	tag := source.String()
	for {
		e, err := source.Read()
		if err != nil {
			self.Log.Error(errors.Annotatef(err, "input source=%s", tag))
			return
		}
		self.Log.Debugf("input source=%s key=%s up=%t", tag, e.Key.String(), e.Up)
		if !self.Emit(e) {
			return
		}
	}
}
