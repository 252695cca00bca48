package migrate

import (
	"sync"
	"time"
)

// EventType represents the type of migration event.
type EventType string

const (
	// Migration lifecycle events
	EventMigrationStarted   EventType = "migration_started"
	EventMigrationCompleted EventType = "migration_completed"
	EventMigrationFailed    EventType = "migration_failed"

	// Pass lifecycle events
	EventPassStarted   EventType = "pass_started"
	EventPassCompleted EventType = "pass_completed"

	// Edit events
	EventCallRewritten  EventType = "call_rewritten"
	EventBlockReordered EventType = "block_reordered"
	EventBlockReplaced  EventType = "block_replaced"
	EventFinding        EventType = "finding"

	// File events
	EventBackupCreated EventType = "backup_created"
	EventFileWritten   EventType = "file_written"
)

// Event represents an observable migration event with typed data.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// EventEmitter manages event listeners and dispatches events.
type EventEmitter struct {
	mu        sync.RWMutex
	listeners []func(Event)
}

// NewEventEmitter creates a new EventEmitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		listeners: make([]func(Event), 0),
	}
}

// On registers a listener function to receive events.
// Listeners are called synchronously in registration order.
func (e *EventEmitter) On(listener func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listener)
}

// Emit dispatches an event to all registered listeners. A nil emitter drops
// the event.
func (e *EventEmitter) Emit(event Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	listeners := make([]func(Event), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *EventEmitter) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

// MigrationStartedEvent creates a migration_started event.
func MigrationStartedEvent(path, source, runID string) Event {
	return Event{
		Type:      EventMigrationStarted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":   path,
			"source": source,
			"run_id": runID,
		},
	}
}

// MigrationCompletedEvent creates a migration_completed event.
func MigrationCompletedEvent(path string, duration time.Duration, changed, written bool) Event {
	return Event{
		Type:      EventMigrationCompleted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":        path,
			"duration_ms": duration.Milliseconds(),
			"changed":     changed,
			"written":     written,
		},
	}
}

// MigrationFailedEvent creates a migration_failed event.
func MigrationFailedEvent(err string, duration time.Duration) Event {
	return Event{
		Type:      EventMigrationFailed,
		Timestamp: time.Now(),
		Data: map[string]any{
			"error":       err,
			"duration_ms": duration.Milliseconds(),
		},
	}
}

// PassStartedEvent creates a pass_started event.
func PassStartedEvent(name string, index int) Event {
	return Event{
		Type:      EventPassStarted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"name":  name,
			"index": index,
		},
	}
}

// PassCompletedEvent creates a pass_completed event.
func PassCompletedEvent(name string, index, edits int, duration time.Duration) Event {
	return Event{
		Type:      EventPassCompleted,
		Timestamp: time.Now(),
		Data: map[string]any{
			"name":        name,
			"index":       index,
			"edits":       edits,
			"duration_ms": duration.Milliseconds(),
		},
	}
}

// CallRewrittenEvent creates a call_rewritten event.
func CallRewrittenEvent(line int, from, to string) Event {
	return Event{
		Type:      EventCallRewritten,
		Timestamp: time.Now(),
		Data: map[string]any{
			"line": line,
			"from": from,
			"to":   to,
		},
	}
}

// BlockReorderedEvent creates a block_reordered event.
func BlockReorderedEvent(selector string, line int, order []string) Event {
	return Event{
		Type:      EventBlockReordered,
		Timestamp: time.Now(),
		Data: map[string]any{
			"selector": selector,
			"line":     line,
			"order":    order,
		},
	}
}

// BlockReplacedEvent creates a block_replaced event.
func BlockReplacedEvent(name string, startLine, endLine int) Event {
	return Event{
		Type:      EventBlockReplaced,
		Timestamp: time.Now(),
		Data: map[string]any{
			"name":       name,
			"start_line": startLine,
			"end_line":   endLine,
		},
	}
}

// FindingEvent creates a finding event.
func FindingEvent(f Finding) Event {
	return Event{
		Type:      EventFinding,
		Timestamp: time.Now(),
		Data: map[string]any{
			"pass":     f.Pass,
			"rule":     f.Rule,
			"severity": f.Severity.String(),
			"message":  f.Message,
			"line":     f.Pos.Line,
		},
	}
}

// BackupCreatedEvent creates a backup_created event.
func BackupCreatedEvent(path string) Event {
	return Event{
		Type:      EventBackupCreated,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path": path,
		},
	}
}

// FileWrittenEvent creates a file_written event.
func FileWrittenEvent(path string, bytes int) Event {
	return Event{
		Type:      EventFileWritten,
		Timestamp: time.Now(),
		Data: map[string]any{
			"path":  path,
			"bytes": bytes,
		},
	}
}
