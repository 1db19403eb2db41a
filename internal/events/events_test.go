package events

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscriber) Event {
	t.Helper()
	select {
	case e := <-sub:
		return e
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	initial := SubscriberCount()

	sub1 := Subscribe()
	sub2 := Subscribe(ForSession("s-1"))
	if SubscriberCount() != initial+2 {
		t.Errorf("expected %d subscribers, got %d", initial+2, SubscriberCount())
	}

	Unsubscribe(sub1)
	Unsubscribe(sub1)
	if _, ok := <-sub1; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
	Unsubscribe(sub2)
	if SubscriberCount() != initial {
		t.Errorf("expected %d subscribers, got %d", initial, SubscriberCount())
	}
}

func TestSubscribeFilters(t *testing.T) {
	all := Subscribe()
	mine := Subscribe(ForSession("s-1"))
	clicks := Subscribe(ForSession("s-1"), Named("action.alert"))
	defer Unsubscribe(all)
	defer Unsubscribe(mine)
	defer Unsubscribe(clicks)

	Emit("info", "session.started", "", map[string]interface{}{"session_id": "s-2"})
	Emit("info", "page.navigated", "", map[string]interface{}{"session_id": "s-1", "page_id": "home"})
	Emit("info", "action.alert", "hi", map[string]interface{}{"session_id": "s-1"})

	if e := receive(t, all); e.Name != "session.started" {
		t.Errorf("unfiltered subscriber: expected session.started first, got %s", e.Name)
	}
	if e := receive(t, mine); e.Name != "page.navigated" || e.Fields["page_id"] != "home" {
		t.Errorf("session subscriber: unexpected %+v", e)
	}
	if e := receive(t, clicks); e.Name != "action.alert" {
		t.Errorf("named subscriber: expected action.alert, got %s", e.Name)
	}
	select {
	case e := <-clicks:
		t.Errorf("named subscriber got extra event %s", e.Name)
	default:
	}
}

func TestRecentEvents(t *testing.T) {
	Clear()
	for i := 0; i < 10; i++ {
		session := "a"
		if i%2 == 1 {
			session = "b"
		}
		Emit("info", "action.alert", "", map[string]interface{}{"i": i, "session_id": session})
	}

	last := RecentEvents(5)
	if len(last) != 5 || last[0].Fields["i"] != 5 {
		t.Fatalf("expected the last 5 events starting at i=5, got %d events", len(last))
	}
	if len(RecentEvents(0)) != 10 || len(RecentEvents(100)) != 10 {
		t.Error("n <= 0 or n beyond the buffer should return every event")
	}

	odd := RecentEvents(2, ForSession("b"))
	if len(odd) != 2 || odd[0].Fields["i"] != 7 || odd[1].Fields["i"] != 9 {
		t.Errorf("unexpected filtered events: %+v", odd)
	}
}

func TestEventsSince(t *testing.T) {
	Clear()
	first, _ := Emit("info", "project.loaded", "", nil)
	if first == nil {
		t.Fatal("expected encoded event")
	}
	seq := RecentEvents(1)[0].Seq
	Emit("info", "project.exported", "", nil)
	Emit("info", "project.invalid", "", nil)

	got := EventsSince(seq)
	if len(got) != 2 || got[0].Name != "project.exported" || got[1].Seq != seq+2 {
		t.Errorf("unexpected events since %d: %+v", seq, got)
	}
	if len(EventsSince(seq + 2)) != 0 {
		t.Error("expected nothing newer than the latest event")
	}
}

func TestEmitRejectsUnknownEvents(t *testing.T) {
	before := TotalCount()
	if _, err := Emit("info", "widget.spun", "", nil); err == nil {
		t.Error("expected unknown event to be rejected")
	}
	if TotalCount() != before {
		t.Error("rejected event must not be recorded")
	}
}

func TestClearKeepsSequence(t *testing.T) {
	Emit("info", "action.navigate", "", map[string]interface{}{"page_id": "about"})
	total := TotalCount()
	Clear()
	if n := len(RecentEvents(0)); n != 0 {
		t.Errorf("expected no events after Clear, got %d", n)
	}
	if TotalCount() != total {
		t.Errorf("expected total %d to survive Clear, got %d", total, TotalCount())
	}
	Emit("info", "action.navigate", "", nil)
	if got := RecentEvents(0); len(got) != 1 || got[0].Seq != total+1 {
		t.Errorf("expected one event with seq %d, got %+v", total+1, got)
	}
}

func TestHistoryWindow(t *testing.T) {
	h := newHistory(3)
	for i := 0; i < 5; i++ {
		h.add(Event{Name: "page.navigated", Fields: map[string]interface{}{"i": i}})
	}
	got := h.since(0, matchAll(nil))
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Fields["i"] != 2 || got[2].Fields["i"] != 4 || got[2].Seq != 5 {
		t.Errorf("expected oldest-first 2..4 ending at seq 5, got %+v", got)
	}
	if h.total() != 5 {
		t.Errorf("expected total 5, got %d", h.total())
	}
}

func TestCloseAllSubscribers(t *testing.T) {
	CloseAllSubscribers()
	sub1 := Subscribe()
	sub2 := Subscribe()

	CloseAllSubscribers()
	_, ok1 := <-sub1
	_, ok2 := <-sub2
	if ok1 || ok2 {
		t.Error("expected all channels to be closed")
	}
	if SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", SubscriberCount())
	}
}
