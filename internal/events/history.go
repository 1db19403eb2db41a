package events

import "sync"

// history keeps the most recent events in a fixed window and numbers every
// event it is given, starting at 1.
type history struct {
	mu    sync.RWMutex
	slots []Event
	last  uint64 // sequence of the newest event, also the running total
	floor uint64 // events at or below this sequence were cleared
}

func newHistory(capacity int) *history {
	return &history{slots: make([]Event, capacity)}
}

func (h *history) slot(seq uint64) *Event {
	return &h.slots[(seq-1)%uint64(len(h.slots))]
}

// add stamps e with the next sequence number and stores it.
func (h *history) add(e Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last++
	e.Seq = h.last
	*h.slot(h.last) = e
	return e
}

// since returns the retained events newer than seq that match, oldest first.
func (h *history) since(seq uint64, match Filter) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	first := h.floor + 1
	if window := uint64(len(h.slots)); h.last > window && h.last-window+1 > first {
		first = h.last - window + 1
	}
	if seq+1 > first {
		first = seq + 1
	}

	out := []Event{}
	for s := first; s <= h.last; s++ {
		if e := *h.slot(s); match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (h *history) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.floor = h.last
}

func (h *history) total() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}
