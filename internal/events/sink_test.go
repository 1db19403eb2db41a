package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Raiwe17/ProektSite/internal/storage/postgres"
)

// stalledAppender blocks every insert until release is closed.
type stalledAppender struct {
	release chan struct{}

	mu  sync.Mutex
	got []postgres.Record
}

func (a *stalledAppender) Append(ctx context.Context, r postgres.Record) error {
	select {
	case <-a.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	a.mu.Lock()
	a.got = append(a.got, r)
	a.mu.Unlock()
	return nil
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, postgres.Record) error {
	return errors.New("connection refused")
}

func TestEmitDoesNotWaitForStalledDatabase(t *testing.T) {
	a := &stalledAppender{release: make(chan struct{})}
	sink.start(a)
	defer sink.start(nil)

	start := time.Now()
	for _, page := range []string{"home", "about", "contact"} {
		if _, err := Emit("info", "action.navigate", "", map[string]interface{}{"page_id": page, "session_id": "s1"}); err != nil {
			t.Fatal(err)
		}
	}
	if took := time.Since(start); took > 100*time.Millisecond {
		t.Fatalf("emit blocked on the database for %v", took)
	}

	close(a.release)
	sink.start(nil)

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.got) != 3 {
		t.Fatalf("expected 3 persisted events, got %d", len(a.got))
	}
	if a.got[0].Fields["page_id"] != "home" || a.got[2].Fields["page_id"] != "contact" {
		t.Errorf("expected events in emit order, got %+v", a.got)
	}
	if a.got[0].SessionID != "s1" || a.got[1].Seq != a.got[0].Seq+1 {
		t.Errorf("unexpected records %+v", a.got)
	}
}

func TestSinkReportsOutageOnce(t *testing.T) {
	sub := Subscribe(Named("system.error"))
	defer Unsubscribe(sub)

	sink.start(failingAppender{})
	Emit("info", "action.navigate", "", nil)
	Emit("info", "action.navigate", "", nil)
	sink.start(nil)

	e := receive(t, sub)
	if e.Fields["error"] != "connection refused" {
		t.Errorf("unexpected report %+v", e)
	}
	select {
	case extra := <-sub:
		t.Errorf("expected a single report, got another %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}
