package core

import (
	"sync"

	"github.com/spaghettifunk/extrudo/engine/containers"
)

// System event codes. Applications should use codes beyond 255.
type EventCode uint16

const (
	// The wrapping transform changed (move, rotate, scale or restore).
	/* Context usage:
	 * Data = *TransformEvent
	 */
	EVENT_CODE_TRANSFORM_CHANGED EventCode = 0x01

	// The anchor point changed.
	/* Context usage:
	 * Data = *AnchorEvent
	 */
	EVENT_CODE_ANCHOR_CHANGED EventCode = 0x02

	// Ambient camera-orbit control was enabled or disabled by a drag session.
	/* Context usage:
	 * Data = *OrbitEvent
	 */
	EVENT_CODE_ORBIT_CONTROL_CHANGED EventCode = 0x03

	// Geometry finished loading and was attached.
	/* Context usage:
	 * Data = *GeometryEvent
	 */
	EVENT_CODE_GEOMETRY_LOADED EventCode = 0x04

	// Geometry loading failed or was cancelled.
	/* Context usage:
	 * Data = *GeometryEvent
	 */
	EVENT_CODE_GEOMETRY_LOAD_FAILED EventCode = 0x05

	// A view state was written to the store.
	EVENT_CODE_VIEW_STATE_SAVED EventCode = 0x06

	// A view state (or the defaults) was applied.
	EVENT_CODE_VIEW_STATE_RESTORED EventCode = 0x07

	MAX_EVENT_CODE EventCode = 0xFF
)

// Pending events beyond this are dropped with a warning.
const MAX_QUEUED_EVENTS = 256

type EventContext struct {
	Type EventCode
	Data interface{}
}

type TransformEvent struct {
	PositionX, PositionY, PositionZ float64
	RotationZ                       float64
	Scale                           float64
}

type AnchorEvent struct {
	X, Y                   float64
	WorldX, WorldY, WorldZ float64
}

type OrbitEvent struct {
	Enabled bool
}

type GeometryEvent struct {
	LoadID Identifier
	URL    string
	Err    error
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	id       uint32
	callback FnOnEvent
}

// EventBus dispatches engine notifications to listeners. Fire delivers
// immediately; Post defers delivery to the next Flush.
type EventBus struct {
	mu         sync.Mutex
	registered map[EventCode][]registeredEvent
	queue      *containers.RingQueue[EventContext]
	nextID     uint32
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]registeredEvent),
		queue:      containers.NewRingQueue[EventContext](MAX_QUEUED_EVENTS),
	}
}

// Register listens for events with the given code and returns a handle
// usable with Unregister.
func (b *EventBus) Register(code EventCode, onEvent FnOnEvent) uint32 {
	if b == nil || onEvent == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.registered[code] = append(b.registered[code], registeredEvent{id: b.nextID, callback: onEvent})
	return b.nextID
}

// Unregister removes a listener. Returns false if it was not found.
func (b *EventBus) Unregister(code EventCode, id uint32) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.registered[code]
	for i := range events {
		if events[i].id == id {
			b.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Fire delivers the event to listeners in registration order until one
// reports it handled.
func (b *EventBus) Fire(context EventContext) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	events := make([]registeredEvent, len(b.registered[context.Type]))
	copy(events, b.registered[context.Type])
	b.mu.Unlock()

	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}

// Post queues the event for the next Flush.
func (b *EventBus) Post(context EventContext) {
	if b == nil {
		return
	}
	b.mu.Lock()
	err := b.queue.Enqueue(context)
	b.mu.Unlock()
	if err != nil {
		LogWarn("event queue full, dropping event code 0x%02x", context.Type)
	}
}

// Flush fires every queued event and returns how many were delivered.
func (b *EventBus) Flush() int {
	if b == nil {
		return 0
	}
	delivered := 0
	for {
		b.mu.Lock()
		context, err := b.queue.Dequeue()
		b.mu.Unlock()
		if err != nil {
			return delivered
		}
		b.Fire(context)
		delivered++
	}
}
