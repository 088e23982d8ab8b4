package event

import (
	"reflect"
	"sync"
)

// topic holds the buffers and subscribers for one event type.
type topic struct {
	front    []any
	back     []any
	handlers []func(any)
}

// Bus is a double-buffered event bus. Events emitted in tick N are delivered
// in tick N+1: the session calls SwapBuffers then DispatchAll once per tick,
// before any system runs. Topics are dispatched in the order their type was
// first seen, so delivery is reproducible.
type Bus struct {
	mu     sync.Mutex // guards topic creation from Subscribe
	byType map[reflect.Type]*topic
	topics []*topic
}

func NewBus() *Bus {
	return &Bus{byType: make(map[reflect.Type]*topic)}
}

func topicOf[T any](b *Bus) *topic {
	t := reflect.TypeOf((*T)(nil)).Elem()
	tp, ok := b.byType[t]
	if !ok {
		tp = &topic{}
		b.byType[t] = tp
		b.topics = append(b.topics, tp)
	}
	return tp
}

// Emit queues ev for the next tick.
func Emit[T any](b *Bus, ev T) {
	tp := topicOf[T](b)
	tp.back = append(tp.back, ev)
}

// Subscribe registers fn for every future event of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tp := topicOf[T](b)
	tp.handlers = append(tp.handlers, func(v any) { fn(v.(T)) })
}

// SwapBuffers makes last tick's emissions deliverable and empties the back
// buffer, reusing its storage.
func (b *Bus) SwapBuffers() {
	for _, tp := range b.topics {
		tp.front, tp.back = tp.back, tp.front[:0]
	}
}

// DispatchAll delivers the front buffer. Handlers may emit; those events wait
// for the next swap.
func (b *Bus) DispatchAll() {
	for _, tp := range b.topics {
		for _, ev := range tp.front {
			for _, h := range tp.handlers {
				h(ev)
			}
		}
	}
}

// Pending reports how many events wait for the next swap.
func (b *Bus) Pending() int {
	n := 0
	for _, tp := range b.topics {
		n += len(tp.back)
	}
	return n
}

// Reset drops every buffered event. Subscribers stay registered.
func (b *Bus) Reset() {
	for _, tp := range b.topics {
		clear(tp.front)
		clear(tp.back)
		tp.front, tp.back = tp.front[:0], tp.back[:0]
	}
}
