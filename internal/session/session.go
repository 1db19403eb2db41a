// Package session persists preview sessions so a reconnecting browser
// resumes where it left off.
package session

import (
	"context"
	"errors"

	"github.com/Raiwe17/ProektSite/internal/runtime"
)

// ErrSessionNotFound is returned by Load for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Store saves runtime snapshots by session id.
type Store interface {
	Save(ctx context.Context, id string, state runtime.State) error
	Load(ctx context.Context, id string) (runtime.State, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

func cloneState(s runtime.State) runtime.State {
	out := runtime.State{ActivePage: s.ActivePage}
	if s.Clicks != nil {
		out.Clicks = make(map[string]bool, len(s.Clicks))
		for k, v := range s.Clicks {
			out.Clicks[k] = v
		}
	}
	if s.Triggers != nil {
		out.Triggers = make(map[string]map[string]bool, len(s.Triggers))
		for el, nodes := range s.Triggers {
			inner := make(map[string]bool, len(nodes))
			for k, v := range nodes {
				inner[k] = v
			}
			out.Triggers[el] = inner
		}
	}
	return out
}
