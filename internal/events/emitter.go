package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Raiwe17/ProektSite/internal/storage/postgres"
)

// Number of events kept in memory for /events and the console.
const historySize = 256

var recent = newHistory(historySize)

// Event is one entry on the bus. Seq increases by one per emitted event.
type Event struct {
	Seq       uint64                 `json:"seq"`
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Session returns the session_id field, or "" for events outside a session.
func (e Event) Session() string {
	id, _ := e.Fields["session_id"].(string)
	return id
}

// Emit records, persists and publishes an event. Names outside the registry
// are rejected before anything is recorded.
func Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e := recent.add(Event{
		Timestamp: now.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	})
	sink.append(now, e)
	subscribers.publish(e)

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", name, err)
	}
	return b, nil
}

// RecentEvents returns up to n retained events passing filters, oldest
// first. n <= 0 returns all of them.
func RecentEvents(n int, filters ...Filter) []Event {
	out := recent.since(0, matchAll(filters))
	if n > 0 && n < len(out) {
		out = out[len(out)-n:]
	}
	return out
}

// EventsSince returns retained events with a sequence above seq.
func EventsSince(seq uint64, filters ...Filter) []Event {
	return recent.since(seq, matchAll(filters))
}

// TotalCount returns the number of events emitted since startup.
func TotalCount() uint64 {
	return recent.total()
}

// Clear drops retained events. Sequence numbers and the total carry on.
func Clear() {
	recent.clear()
}

// appender is the write side of the event log.
type appender interface {
	Append(ctx context.Context, r postgres.Record) error
}

// Bound on one insert and on the queue in front of the database.
const (
	appendTimeout = 5 * time.Second
	queueSize     = 1024
)

// eventLog is the optional Postgres sink. Emit only enqueues; a worker
// goroutine performs the inserts, so a slow or stalled database never holds
// up the caller. An outage, including a full queue, is reported once as a
// system.error that bypasses Emit, so the report cannot itself fail to
// persist; the next successful append re-arms the report.
type eventLog struct {
	mu       sync.RWMutex
	client   *postgres.Client
	queue    chan postgres.Record
	done     chan struct{}
	reported bool
}

var sink = &eventLog{}

// SetPostgresClient routes emitted events to client. nil stops persisting.
// Events already queued for the previous client are written before it
// returns.
func SetPostgresClient(client *postgres.Client) {
	var a appender
	if client != nil {
		a = client
	}
	sink.start(a)

	sink.mu.Lock()
	sink.client = client
	sink.mu.Unlock()
}

// GetPostgresClient returns the current client, or nil.
func GetPostgresClient() *postgres.Client {
	sink.mu.RLock()
	defer sink.mu.RUnlock()
	return sink.client
}

// start drains the running worker, if any, and starts one writing to a.
// A nil a leaves the sink stopped.
func (l *eventLog) start(a appender) {
	l.mu.Lock()
	queue, done := l.queue, l.done
	l.queue, l.done = nil, nil
	l.reported = false
	l.mu.Unlock()

	if queue != nil {
		close(queue)
		<-done
	}
	if a == nil {
		return
	}

	queue = make(chan postgres.Record, queueSize)
	done = make(chan struct{})
	go l.run(a, queue, done)

	l.mu.Lock()
	l.queue, l.done = queue, done
	l.mu.Unlock()
}

func (l *eventLog) run(a appender, queue <-chan postgres.Record, done chan<- struct{}) {
	defer close(done)
	for r := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		err := a.Append(ctx, r)
		cancel()
		l.result(err)
	}
}

func (l *eventLog) append(ts time.Time, e Event) {
	r := postgres.Record{
		Seq:       e.Seq,
		Time:      ts,
		Level:     e.Level,
		Event:     e.Name,
		Message:   e.Message,
		Fields:    e.Fields,
		SessionID: e.Session(),
	}

	l.mu.RLock()
	queued := true
	if l.queue != nil {
		select {
		case l.queue <- r:
		default:
			queued = false
		}
	}
	l.mu.RUnlock()
	if !queued {
		l.result(errQueueFull)
	}
}

var errQueueFull = errors.New("event log queue full")

func (l *eventLog) result(err error) {
	l.mu.Lock()
	first := err != nil && !l.reported
	l.reported = err != nil
	l.mu.Unlock()
	if !first {
		return
	}

	report := recent.add(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     "error",
		Name:      "system.error",
		Message:   "postgres append failed",
		Fields:    map[string]interface{}{"error": err.Error()},
	})
	subscribers.publish(report)
}
