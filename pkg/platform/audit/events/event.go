// Package events is the outward stream of audit activity.
//
// Each persisted audit entry produces one immutable Event. Publishers never
// report failure to the caller: the identity graph is correct whether or not
// anything consumes the stream.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	audit "rosterid/pkg/platform/audit"
)

// Event is the wire form of one audit entry.
type Event struct {
	ID          string          `json:"id"`
	EntityType  string          `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	Action      string          `json:"action"`
	Reason      string          `json:"reason,omitempty"`
	PerformedBy string          `json:"performed_by"`
	GroupID     string          `json:"group_id,omitempty"`
	RollbackOf  string          `json:"rollback_of,omitempty"`
	AfterState  json.RawMessage `json:"after_state,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// FromEntry copies entry into an Event.
func FromEntry(entry audit.Entry) Event {
	e := Event{
		ID:          entry.ID.String(),
		EntityType:  string(entry.EntityType),
		EntityID:    entry.EntityID,
		Action:      string(entry.Action),
		Reason:      entry.Reason,
		PerformedBy: entry.PerformedBy,
		GroupID:     entry.GroupID,
		Timestamp:   entry.Timestamp,
	}
	if entry.RollbackOf != nil {
		e.RollbackOf = entry.RollbackOf.String()
	}
	if len(entry.AfterState) > 0 {
		e.AfterState = append(json.RawMessage(nil), entry.AfterState...)
	}
	return e
}

// Key partitions events so one entity's history stays ordered.
func (e Event) Key() string {
	return e.EntityType + ":" + e.EntityID
}

// Publisher is the output port the audit logger writes to.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Sink delivers a batch of events to an external system.
type Sink interface {
	Write(ctx context.Context, batch []Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Memory collects events in order. Useful for tests and local runs.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(_ context.Context, event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Write lets Memory serve as a Sink.
func (m *Memory) Write(_ context.Context, batch []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, batch...)
	return nil
}

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
