// Package events is the synchronous in-process notification layer shared by
// the entity store and the component registry. Delivery happens inside the
// mutating call; coalescing and batching are the subscribers' concern.
package events

import (
	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore/types"
)

type Kind string

const (
	EntityCreated   Kind = "entity-created"
	EntityDeleted   Kind = "entity-deleted"
	EntityUpdated   Kind = "entity-updated"
	EntitiesCleared Kind = "entities-cleared"

	ComponentAdded   Kind = "component-added"
	ComponentUpdated Kind = "component-updated"
	ComponentRemoved Kind = "component-removed"
)

type Event struct {
	Kind      Kind           `json:"kind"`
	Entity    types.EntityID `json:"entity,omitempty"`
	Component string         `json:"component,omitempty"`
}

type SubscriberID uint64

type Listener func(Event)

type subscription struct {
	id   SubscriberID
	kind Kind // empty matches every kind
	fn   Listener
}

// Bus delivers events to listeners in registration order, synchronously,
// inside the call that emitted them. Listeners may re-enter the store and
// the bus itself; Emit iterates a copy of the subscription list so
// re-entrant subscribes and unsubscribes cannot corrupt an in-progress
// dispatch.
type Bus struct {
	nextID SubscriberID
	subs   []subscription
	log    zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		log: logger.With().Str("system", "events").Logger(),
	}
}

// Subscribe registers fn for one event kind and returns an id usable with
// Unsubscribe.
func (b *Bus) Subscribe(kind Kind, fn Listener) SubscriberID {
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, kind: kind, fn: fn})
	return b.nextID
}

// SubscribeAll registers fn for every event kind.
func (b *Bus) SubscribeAll(fn Listener) SubscriberID {
	return b.Subscribe("", fn)
}

func (b *Bus) Unsubscribe(id SubscriberID) {
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) SubscriptionCount() int {
	return len(b.subs)
}

func (b *Bus) Emit(ev Event) {
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	for _, sub := range subs {
		if sub.kind != "" && sub.kind != ev.Kind {
			continue
		}
		b.dispatch(sub, ev)
	}
}

// dispatch isolates a panicking listener so the remaining listeners still
// receive the event.
func (b *Bus) dispatch(sub subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("kind", string(ev.Kind)).
				Uint64("subscriber", uint64(sub.id)).
				Msg("event listener panicked")
		}
	}()
	sub.fn(ev)
}
