// Package postgres stores the site event log.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS site_events (
	event_id   BIGSERIAL PRIMARY KEY,
	seq        BIGINT NOT NULL,
	ts         TIMESTAMPTZ NOT NULL,
	level      TEXT NOT NULL,
	event      TEXT NOT NULL,
	msg        TEXT,
	fields     JSONB,
	site_id    TEXT NOT NULL,
	session_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_site_events_site_ts ON site_events(site_id, ts DESC);
CREATE INDEX IF NOT EXISTS idx_site_events_session ON site_events(site_id, session_id, ts DESC);
`

const insertEvent = `
INSERT INTO site_events (seq, ts, level, event, msg, fields, site_id, session_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectEvents = `
SELECT event_id, seq, ts, level, event, msg, fields, site_id, session_id
FROM site_events
%s
ORDER BY ts DESC
LIMIT %d`

// Record is one event to append.
type Record struct {
	Seq       uint64
	Time      time.Time
	Level     string
	Event     string
	Message   string
	Fields    map[string]interface{}
	SessionID string
}

// EventRow is a stored event as returned by the query methods.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Seq       uint64                 `json:"seq"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	SiteID    string                 `json:"site_id"`
	SessionID string                 `json:"session_id,omitempty"`
}

// Options describes how to reach the database. Empty fields fall back to the
// standard PG* environment variables and then to local defaults.
type Options struct {
	Host     string
	Port     int
	User     string
	Database string
	Password string
	SSLMode  string
}

// DSN renders the connection string for lib/pq.
func (o Options) DSN() string {
	port := pick("", "PGPORT", "5432")
	if o.Port != 0 {
		port = fmt.Sprint(o.Port)
	}

	parts := []string{
		"host=" + pick(o.Host, "PGHOST", "127.0.0.1"),
		"port=" + port,
		"user=" + pick(o.User, "PGUSER", "proektsite"),
		"dbname=" + pick(o.Database, "PGDATABASE", "proektsite"),
		"sslmode=" + pick(o.SSLMode, "PGSSLMODE", "disable"),
	}
	if pw := pick(o.Password, "PGPASSWORD", ""); pw != "" {
		parts = append(parts, "password="+pw)
	}
	return strings.Join(parts, " ")
}

func pick(v, env, def string) string {
	if v != "" {
		return v
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return def
}

// Client appends and queries the events of one site. It remembers whether
// the last append succeeded so callers can report outages and recovery.
type Client struct {
	db     *sql.DB
	insert *sql.Stmt
	siteID string

	mu      sync.Mutex
	lastErr error
}

// New connects, creates the events table when missing and prepares the
// insert statement. It gives up after 10 seconds.
func New(siteID string, opts Options) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create site_events: %w", err)
	}
	insert, err := db.PrepareContext(ctx, insertEvent)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return &Client{db: db, insert: insert, siteID: siteID}, nil
}

// Append stores r under the client's site.
func (c *Client) Append(ctx context.Context, r Record) error {
	var fields []byte
	if r.Fields != nil {
		b, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("encode fields: %w", err)
		}
		fields = b
	}

	_, err := c.insert.ExecContext(ctx, int64(r.Seq), r.Time, r.Level, r.Event,
		nullable(r.Message), fields, c.siteID, nullable(r.SessionID))
	c.record(err)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (c *Client) record(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// Healthy reports whether the most recent append succeeded. A client that
// has not appended yet is healthy.
func (c *Client) Healthy() bool {
	return c.Err() == nil
}

// Err returns the error of the most recent append, or nil.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Query returns the site's latest events, newest first.
func (c *Client) Query(ctx context.Context, limit int) ([]EventRow, error) {
	return c.query(ctx, `WHERE site_id = $1`, limit, c.siteID)
}

// QuerySession returns the latest events of one preview session, newest
// first.
func (c *Client) QuerySession(ctx context.Context, sessionID string, limit int) ([]EventRow, error) {
	return c.query(ctx, `WHERE site_id = $1 AND session_id = $2`, limit, c.siteID, sessionID)
}

func (c *Client) query(ctx context.Context, where string, limit int, args ...interface{}) ([]EventRow, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(selectEvents, where, clampLimit(limit)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []EventRow{}
	for rows.Next() {
		var (
			e              EventRow
			seq            int64
			msg, sessionID sql.NullString
			fields         []byte
		)
		if err := rows.Scan(&e.EventID, &seq, &e.Timestamp, &e.Level, &e.Event, &msg, &fields, &e.SiteID, &sessionID); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		e.Message = msg.String
		e.SessionID = sessionID.String
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &e.Fields); err != nil {
				return nil, fmt.Errorf("decode fields of event %d: %w", e.EventID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 200
	case limit > 10000:
		return 10000
	default:
		return limit
	}
}

// Close releases the statement and the connection pool.
func (c *Client) Close() error {
	if c.insert != nil {
		c.insert.Close()
	}
	return c.db.Close()
}
