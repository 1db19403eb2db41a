package events

import "sync"

// Filter selects events. Subscribe and the history queries accept any number
// of filters; an event must pass all of them.
type Filter func(Event) bool

// ForSession selects events produced by one preview session.
func ForSession(id string) Filter {
	return func(e Event) bool { return e.Session() == id }
}

// Named selects events with one of the given names.
func Named(names ...string) Filter {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(e Event) bool { return set[e.Name] }
}

func matchAll(filters []Filter) Filter {
	return func(e Event) bool {
		for _, f := range filters {
			if f != nil && !f(e) {
				return false
			}
		}
		return true
	}
}

// Subscriber receives events from the bus. Slow subscribers miss events
// rather than stall Emit.
type Subscriber chan Event

const subscriberBuffer = 64

type bus struct {
	mu   sync.RWMutex
	subs map[Subscriber]Filter
}

var subscribers = &bus{subs: make(map[Subscriber]Filter)}

// Subscribe registers a subscriber for events passing filters.
func Subscribe(filters ...Filter) Subscriber {
	ch := make(Subscriber, subscriberBuffer)
	subscribers.mu.Lock()
	subscribers.subs[ch] = matchAll(filters)
	subscribers.mu.Unlock()
	return ch
}

// Unsubscribe removes sub and closes it. Unknown or already closed
// subscribers are ignored.
func Unsubscribe(sub Subscriber) {
	subscribers.mu.Lock()
	defer subscribers.mu.Unlock()
	if _, ok := subscribers.subs[sub]; ok {
		delete(subscribers.subs, sub)
		close(sub)
	}
}

// CloseAllSubscribers closes every subscriber so streaming handlers return
// on shutdown.
func CloseAllSubscribers() {
	subscribers.mu.Lock()
	defer subscribers.mu.Unlock()
	for sub := range subscribers.subs {
		close(sub)
	}
	subscribers.subs = make(map[Subscriber]Filter)
}

// SubscriberCount returns the number of live subscribers.
func SubscriberCount() int {
	subscribers.mu.RLock()
	defer subscribers.mu.RUnlock()
	return len(subscribers.subs)
}

func (b *bus) publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub, match := range b.subs {
		if !match(e) {
			continue
		}
		select {
		case sub <- e:
		default:
		}
	}
}
