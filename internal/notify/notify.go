// Package notify is a small in-process, priority-ordered observer bus:
// the engine publishes one notification after every successfully
// applied event, and observers (logging, metrics, external webhooks)
// subscribe without the engine knowing they exist. Delivery here is
// synchronous, in-process, and best-effort — no distributed or durable
// delivery, which this module has no use for (see DESIGN.md).
package notify

import (
	"context"
	"sort"
	"sync"

	"github.com/n3phtys/rustixbl/internal/ledgerevents"
)

// Notification is published once per accepted event, after Apply has
// run and Version has advanced.
type Notification struct {
	Version uint64
	Event   ledgerevents.Event
}

// Observer receives notifications. Observe must not mutate the event or
// retain the Notification past the call.
type Observer interface {
	Observe(ctx context.Context, n Notification)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, n Notification)

func (f ObserverFunc) Observe(ctx context.Context, n Notification) { f(ctx, n) }

type registration struct {
	priority int
	obs      Observer
}

// Bus fans a Notification out to every registered Observer, highest
// priority first, ties broken by registration order. A panicking
// observer is recovered and does not block the rest of the fan-out or
// propagate back to the engine (§7: never surfaced as a rejection); the
// recovered value goes to the onPanic callback if one was given to New,
// and is otherwise dropped.
type Bus struct {
	mu            sync.Mutex
	registrations []registration
	onPanic       func(recovered any)
}

// New returns an empty Bus. onPanic, if non-nil, is called with the
// recovered value whenever an observer panics.
func New(onPanic func(recovered any)) *Bus {
	return &Bus{onPanic: onPanic}
}

// Subscribe registers obs at priority (higher runs first).
func (b *Bus) Subscribe(priority int, obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registrations = append(b.registrations, registration{priority: priority, obs: obs})
	sort.SliceStable(b.registrations, func(i, j int) bool {
		return b.registrations[i].priority > b.registrations[j].priority
	})
}

// Publish delivers n to every observer in priority order, synchronously.
func (b *Bus) Publish(ctx context.Context, n Notification) {
	b.mu.Lock()
	regs := make([]registration, len(b.registrations))
	copy(regs, b.registrations)
	b.mu.Unlock()

	for _, r := range regs {
		b.deliverOne(ctx, r.obs, n)
	}
}

func (b *Bus) deliverOne(ctx context.Context, obs Observer, n Notification) {
	defer func() {
		if r := recover(); r != nil && b.onPanic != nil {
			b.onPanic(r)
		}
	}()
	obs.Observe(ctx, n)
}
