// FILE: internal/entity/session_entity.go
package entity

import (
	"sync"
	"time"
)

// Session is the unit of state for one user's in-progress form. It owns
// exactly one FieldSchema, one FormState, one CompletionTracker and the
// opaque original PDF bytes held for later fill-back.
//
// All mutation goes through the session lock: the agent's tool-call stream,
// manual edits and the expiry sweep each take it before touching state, so the
// completed recomputation and tracker transitions are atomic with the field
// write that triggered them.
type Session struct {
	Id       string
	Schema   *FieldSchema
	State    *FormState
	Tracker  *CompletionTracker
	Document []byte

	mu    sync.Mutex
	alive bool
}

func NewSession(id string, schema *FieldSchema, document []byte, maxValueLength int) *Session {
	return &Session{
		Id:       id,
		Schema:   schema,
		State:    NewFormState(schema, maxValueLength),
		Tracker:  NewCompletionTracker(),
		Document: document,
		alive:    true,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Alive reports liveness. Callers must hold the session lock; an in-flight
// operation that finds alive == false fails with ErrSessionNotFound instead
// of partially succeeding.
func (s *Session) Alive() bool {
	return s.alive
}

// Kill marks the session destroyed. Caller must hold the lock.
func (s *Session) Kill() {
	s.alive = false
	s.Tracker.Close()
}

// IdleSince reports how long the session has gone without qualifying activity.
func (s *Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.State.LastActivityAt)
}
